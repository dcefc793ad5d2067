package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"subweave/internal/config"
	"subweave/internal/notifications"
)

func TestNewServiceReturnsNoopWhenWebhookMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.WebhookURL = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyJobCompleted(context.Background(), "/in/movie.mkv", nil, time.Minute); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestWebhookServiceFormatsPayloads(t *testing.T) {
	var captured struct {
		title    string
		tags     string
		priority string
		body     string
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		captured.title = r.Header.Get("Title")
		captured.tags = r.Header.Get("Tags")
		captured.priority = r.Header.Get("Priority")
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		captured.body = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.WebhookURL = server.URL
	cfg.Notifications.RequestTimeoutSeconds = 5
	cfg.Notifications.JobCompleted = true
	cfg.Notifications.JobFailed = true
	cfg.Notifications.ASRFatal = true
	svc := notifications.NewService(&cfg)

	err := svc.NotifyJobCompleted(context.Background(), "/in/movie.mkv",
		[]string{"/out/movie.srt", "/out/movie.zh.srt"}, 90*time.Second)
	if err != nil {
		t.Fatalf("job completed: %v", err)
	}
	if captured.title != "Subweave - Job Complete" {
		t.Errorf("title = %q", captured.title)
	}
	if captured.body != "Subtitles ready: movie.mkv (1m30s)\nFiles: movie.srt, movie.zh.srt" {
		t.Errorf("body = %q", captured.body)
	}
	if captured.tags != "subweave,job,completed" {
		t.Errorf("tags = %q", captured.tags)
	}

	if err := svc.NotifyJobFailed(context.Background(), "/in/movie.mkv", "asr_call", errors.New("poll timeout")); err != nil {
		t.Fatalf("job failed: %v", err)
	}
	if captured.title != "Subweave - Job Failed" || captured.priority != "high" {
		t.Errorf("failure notification: title=%q priority=%q", captured.title, captured.priority)
	}
	if captured.body != "Failed at asr_call: movie.mkv\npoll timeout" {
		t.Errorf("body = %q", captured.body)
	}

	if err := svc.NotifyASRFatal(context.Background(), "/in/movie.mkv", 3); err != nil {
		t.Fatalf("asr fatal: %v", err)
	}
	if captured.tags != "subweave,asr,fatal" {
		t.Errorf("tags = %q", captured.tags)
	}
}

func TestWebhookServiceHonoursEventToggles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected call for disabled event: %s", r.URL.String())
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.WebhookURL = server.URL
	cfg.Notifications.JobCompleted = false
	cfg.Notifications.JobFailed = false
	cfg.Notifications.ASRFatal = false
	svc := notifications.NewService(&cfg)

	if err := svc.NotifyJobCompleted(context.Background(), "/in/a.mkv", nil, 0); err != nil {
		t.Fatal(err)
	}
	if err := svc.NotifyJobFailed(context.Background(), "/in/a.mkv", "probe", errors.New("x")); err != nil {
		t.Fatal(err)
	}
	if err := svc.NotifyASRFatal(context.Background(), "/in/a.mkv", 1); err != nil {
		t.Fatal(err)
	}
}

func TestWebhookServiceReportsHTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.WebhookURL = server.URL
	cfg.Notifications.JobCompleted = true
	svc := notifications.NewService(&cfg)

	if err := svc.NotifyJobCompleted(context.Background(), "/in/a.mkv", nil, 0); err == nil {
		t.Fatal("expected error for 502 response")
	}
}
