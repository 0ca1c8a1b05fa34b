package jobs

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/marketdesk/support-chat/internal/notify"
	"github.com/marketdesk/support-chat/internal/repositories"
)

const (
	positionLimitsURL = "https://www.nseclearing.in/risk-management/equity-derivatives/position-limits"
	secbanCSVURL      = "https://nsearchives.nseindia.com/content/fo/fo_secban.csv"
	csvReferer        = "https://www.nseclearing.in/"

	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

var (
	csvLinkRe = regexp.MustCompile(`href="(https://nsearchives\.nseindia\.com/content/fo/fo_secban\.csv)"`)
	banRowRe  = regexp.MustCompile(`\d+\s+[A-Z0-9]+`)
)

// SecbanJob scrapes the exchange's securities-in-ban feed once a day and
// pushes the ban list to every super-admin destination. All external
// failures degrade to "nothing sent"; the job itself never errors.
type SecbanJob struct {
	prefs   repositories.NotificationPrefRepository
	sink    notify.Sink
	monitor *notify.Monitor
	client  *http.Client
	cache   *gocache.Cache
	log     *zap.SugaredLogger

	pageURL string
	csvURL  string
}

func NewSecbanJob(prefs repositories.NotificationPrefRepository, sink notify.Sink, monitor *notify.Monitor, log *zap.SugaredLogger) *SecbanJob {
	return &SecbanJob{
		prefs:   prefs,
		sink:    sink,
		monitor: monitor,
		client:  &http.Client{Timeout: 15 * time.Second},
		cache:   newPrefsCache(),
		log:     log,
		pageURL: positionLimitsURL,
		csvURL:  secbanCSVURL,
	}
}

// Run performs one scrape-and-notify cycle and reports whether at least one
// notification went out.
func (j *SecbanJob) Run(ctx context.Context) bool {
	page := j.fetchPage(ctx)
	csvURL := extractCSVURL(page)
	if csvURL == "" {
		csvURL = j.csvURL
	}
	content := j.downloadCSV(ctx, csvURL)
	if !csvHasData(content) {
		j.log.Infow("secban CSV empty or no data, skipping notification")
		j.monitor.PostCronNotification("job done 0 scripts ban notification sent")
		return false
	}

	count := countScriptLines(content)
	sent := j.sendToSuperAdmins(ctx, content)
	if sent > 0 {
		j.log.Infow("secban notification sent", "destinations", sent)
	}
	j.monitor.PostCronNotification(fmt.Sprintf("job done %d scripts ban notification sent", count))
	return sent > 0
}

func (j *SecbanJob) fetchPage(ctx context.Context) string {
	body, err := j.get(ctx, j.pageURL, "")
	if err != nil {
		j.log.Warnw("secban page fetch failed", "err", err)
		return ""
	}
	return body
}

func (j *SecbanJob) downloadCSV(ctx context.Context, url string) string {
	body, err := j.get(ctx, url, csvReferer)
	if err != nil {
		j.log.Warnw("secban CSV download failed", "err", err)
		return ""
	}
	return body
}

func (j *SecbanJob) get(ctx context.Context, url, referer string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	if referer != "" {
		req.Header.Set("Referer", referer)
	}

	resp, err := j.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// extractCSVURL pulls the ban-list CSV link out of the position-limits page.
func extractCSVURL(htmlText string) string {
	m := csvLinkRe.FindStringSubmatch(htmlText)
	if m == nil {
		return ""
	}
	return m[1]
}

// csvHasData reports whether the ban CSV contains any actual ban rows. A
// body holding only the "Securities in Ban" header is "no data", not an
// error.
func csvHasData(content string) bool {
	if strings.TrimSpace(content) == "" {
		return false
	}
	if !strings.Contains(content, "Securities in Ban") && !strings.Contains(content, "Security in Ban") {
		return false
	}
	for _, line := range strings.Split(strings.TrimSpace(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.Contains(line, "Securities in Ban") || strings.Contains(line, "Security in Ban") {
			continue
		}
		if banRowRe.MatchString(line) {
			return true
		}
	}
	return false
}

// countScriptLines counts the ban rows (a serial number followed by a
// ticker-like token), skipping header lines.
func countScriptLines(content string) int {
	if strings.TrimSpace(content) == "" {
		return 0
	}
	count := 0
	for _, line := range strings.Split(strings.TrimSpace(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.Contains(line, "Securities in Ban") || strings.Contains(line, "Security in Ban") {
			continue
		}
		if banRowRe.MatchString(line) {
			count++
		}
	}
	return count
}

func (j *SecbanJob) sendToSuperAdmins(ctx context.Context, csvContent string) int {
	destinations := chatDestinations(ctx, j.prefs, j.cache, superAdminRole)
	if len(destinations) == 0 {
		j.log.Infow("no super-admin destinations for secban notification")
		return 0
	}

	const caption = "Securities in Ban (F&O) – next trade date"
	sent := 0
	for _, dest := range destinations {
		var ok bool
		if len(csvContent) <= notify.MaxMessageLen {
			payload := fmt.Sprintf("<b>Securities in Ban (F&amp;O) – next trade date</b>\n\n<pre>%s</pre>", html.EscapeString(csvContent))
			ok = j.sink.Send(dest, payload)
		} else {
			ok = j.sink.SendDocument(dest, caption, "fo_secban.csv", []byte(csvContent))
		}
		if ok {
			sent++
		}
	}
	return sent
}
