package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"captionburn/internal/config"
)

const userAgent = "captionburn/0.1.0"

// Service defines the notification surface exposed to the burn processor.
type Service interface {
	NotifyJobSucceeded(ctx context.Context, job JobSummary) error
	NotifyJobFailed(ctx context.Context, job JobSummary, err error) error
	NotifyDaemonStarted(ctx context.Context, bind string) error
	TestNotification(ctx context.Context) error
}

// JobSummary carries the job details included in notifications.
type JobSummary struct {
	ID        string
	VideoName string
	OutputURL string
	Words     int
	Elapsed   time.Duration
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:  topic,
		client:    &http.Client{Timeout: timeout},
		onSuccess: cfg.Notifications.OnSuccess,
		onFailure: cfg.Notifications.OnFailure,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
	click    string
}

type ntfyService struct {
	endpoint  string
	client    *http.Client
	onSuccess bool
	onFailure bool
}

func (n *ntfyService) NotifyJobSucceeded(ctx context.Context, job JobSummary) error {
	if !n.onSuccess {
		return nil
	}
	message := fmt.Sprintf("✅ Captions burned: %s", displayName(job))
	if job.Words > 0 {
		message = fmt.Sprintf("%s (%d words", message, job.Words)
		if job.Elapsed > 0 {
			message = fmt.Sprintf("%s in %s", message, job.Elapsed.Round(time.Second))
		}
		message += ")"
	}
	if job.OutputURL != "" {
		message = fmt.Sprintf("%s\n%s", message, job.OutputURL)
	}
	return n.send(ctx, payload{
		title:   "captionburn - Complete",
		message: message,
		tags:    []string{"captionburn", "job", "completed"},
		click:   job.OutputURL,
	})
}

func (n *ntfyService) NotifyJobFailed(ctx context.Context, job JobSummary, err error) error {
	if !n.onFailure {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("❌ Burn failed: ")
	builder.WriteString(displayName(job))
	builder.WriteString("\n")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown error")
	}
	return n.send(ctx, payload{
		title:    "captionburn - Error",
		message:  builder.String(),
		tags:     []string{"captionburn", "error", "alert"},
		priority: "high",
	})
}

func (n *ntfyService) NotifyDaemonStarted(ctx context.Context, bind string) error {
	return n.send(ctx, payload{
		title:    "captionburn - Started",
		message:  fmt.Sprintf("Daemon listening on %s", strings.TrimSpace(bind)),
		tags:     []string{"captionburn", "daemon"},
		priority: "low",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "captionburn - Test",
		message:  "🧪 Notification system test",
		tags:     []string{"captionburn", "test"},
		priority: "low",
	})
}

func displayName(job JobSummary) string {
	if name := strings.TrimSpace(job.VideoName); name != "" {
		return name
	}
	return job.ID
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}
	if data.click != "" {
		req.Header.Set("Click", data.click)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyJobSucceeded(context.Context, JobSummary) error     { return nil }
func (noopService) NotifyJobFailed(context.Context, JobSummary, error) error { return nil }
func (noopService) NotifyDaemonStarted(context.Context, string) error        { return nil }
func (noopService) TestNotification(context.Context) error                   { return nil }
