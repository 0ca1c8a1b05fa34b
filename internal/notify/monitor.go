package notify

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Monitor posts free-text job status lines to the internal monitoring
// endpoint, authenticated by a static token. Best-effort: a missing URL or
// token silently disables it.
type Monitor struct {
	url    string
	token  string
	client *http.Client
	log    *zap.SugaredLogger
}

func NewMonitor(url, token string, log *zap.SugaredLogger) *Monitor {
	return &Monitor{
		url:    url,
		token:  token,
		client: &http.Client{Timeout: 30 * time.Second},
		log:    log,
	}
}

func (m *Monitor) PostCronNotification(message string) bool {
	if m.url == "" || m.token == "" {
		m.log.Debugw("monitoring endpoint not configured, skipping cron notification")
		return false
	}
	body, err := json.Marshal(map[string]string{"message": message})
	if err != nil {
		return false
	}
	req, err := http.NewRequest(http.MethodPost, m.url, bytes.NewReader(body))
	if err != nil {
		return false
	}
	req.Header.Set("X-Auth-Token", m.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		m.log.Warnw("cron notification error", "err", err)
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		m.log.Warnw("cron notification failed", "status", resp.StatusCode, "body", string(detail))
		return false
	}
	return true
}
