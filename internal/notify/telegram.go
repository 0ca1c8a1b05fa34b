package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const telegramAPIBase = "https://api.telegram.org"

// MaxMessageLen is the messaging platform's text message size cap; longer
// payloads go out as document attachments instead.
const MaxMessageLen = 4096

// TelegramSink sends messages and documents through the Telegram bot API.
// An empty token disables it (every send reports false).
type TelegramSink struct {
	token   string
	baseURL string
	client  *http.Client
	log     *zap.SugaredLogger
}

func NewTelegramSink(token string, log *zap.SugaredLogger) *TelegramSink {
	return &TelegramSink{
		token:   token,
		baseURL: telegramAPIBase,
		client:  &http.Client{Timeout: 15 * time.Second},
		log:     log,
	}
}

func (t *TelegramSink) Send(destination int64, payload string) bool {
	if t.token == "" {
		return false
	}
	body, err := json.Marshal(map[string]any{
		"chat_id":    destination,
		"text":       payload,
		"parse_mode": "HTML",
	})
	if err != nil {
		return false
	}
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token)
	resp, err := t.client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.log.Warnw("telegram send failed", "chat_id", destination, "err", err)
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		t.log.Warnw("telegram send rejected", "chat_id", destination, "status", resp.StatusCode, "body", string(detail))
		return false
	}
	return true
}

func (t *TelegramSink) SendDocument(destination int64, caption, filename string, content []byte) bool {
	if t.token == "" {
		return false
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	_ = form.WriteField("chat_id", fmt.Sprintf("%d", destination))
	_ = form.WriteField("caption", caption)
	part, err := form.CreateFormFile("document", filename)
	if err != nil {
		return false
	}
	if _, err := part.Write(content); err != nil {
		return false
	}
	if err := form.Close(); err != nil {
		return false
	}

	url := fmt.Sprintf("%s/bot%s/sendDocument", t.baseURL, t.token)
	resp, err := t.client.Post(url, form.FormDataContentType(), &buf)
	if err != nil {
		t.log.Warnw("telegram document send failed", "chat_id", destination, "err", err)
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.log.Warnw("telegram document send rejected", "chat_id", destination, "status", resp.StatusCode)
		return false
	}
	return true
}
