package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"subweave/internal/config"
)

const userAgent = "subweave/0.1.0"

// Service defines the notification surface exposed to pipeline components.
type Service interface {
	NotifyJobCompleted(ctx context.Context, videoPath string, outputs []string, duration time.Duration) error
	NotifyJobFailed(ctx context.Context, videoPath, stage string, err error) error
	NotifyASRFatal(ctx context.Context, videoPath string, failures int) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by an ntfy-style webhook
// when one is configured. Without a webhook URL a noop implementation is
// returned, so callers never branch on configuration.
func NewService(cfg *config.Config) Service {
	endpoint := strings.TrimSpace(cfg.Notifications.WebhookURL)
	if endpoint == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &webhookService{
		endpoint: endpoint,
		events:   cfg.Notifications,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type webhookService struct {
	endpoint string
	events   config.Notifications
	client   *http.Client
}

func (n *webhookService) NotifyJobCompleted(ctx context.Context, videoPath string, outputs []string, duration time.Duration) error {
	if !n.events.JobCompleted {
		return nil
	}
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	message := fmt.Sprintf("Subtitles ready: %s (%s)", filepath.Base(videoPath), duration)
	if len(outputs) > 0 {
		names := make([]string, 0, len(outputs))
		for _, out := range outputs {
			names = append(names, filepath.Base(out))
		}
		message = fmt.Sprintf("%s\nFiles: %s", message, strings.Join(names, ", "))
	}
	data := payload{
		title:   "Subweave - Job Complete",
		message: message,
		tags:    []string{"subweave", "job", "completed"},
	}
	return n.send(ctx, data)
}

func (n *webhookService) NotifyJobFailed(ctx context.Context, videoPath, stage string, err error) error {
	if !n.events.JobFailed {
		return nil
	}
	detail := "unknown"
	if err != nil {
		detail = strings.TrimSpace(err.Error())
	}
	data := payload{
		title:    "Subweave - Job Failed",
		message:  fmt.Sprintf("Failed at %s: %s\n%s", stage, filepath.Base(videoPath), detail),
		tags:     []string{"subweave", "job", "failed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *webhookService) NotifyASRFatal(ctx context.Context, videoPath string, failures int) error {
	if !n.events.ASRFatal {
		return nil
	}
	data := payload{
		title: "Subweave - Recognition Gave Up",
		message: fmt.Sprintf("Recognition failed %d times: %s\nManual intervention required",
			failures, filepath.Base(videoPath)),
		tags:     []string{"subweave", "asr", "fatal"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *webhookService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Subweave - Test",
		message:  "Notification system test",
		tags:     []string{"subweave", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *webhookService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
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

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyJobCompleted(context.Context, string, []string, time.Duration) error {
	return nil
}
func (noopService) NotifyJobFailed(context.Context, string, string, error) error { return nil }
func (noopService) NotifyASRFatal(context.Context, string, int) error            { return nil }
func (noopService) TestNotification(context.Context) error                       { return nil }
