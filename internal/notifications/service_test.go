package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"captionburn/internal/config"
	"captionburn/internal/notifications"
)

type captured struct {
	title, tags, priority, click, body string
}

func newNtfyServer(t *testing.T, status int) (*httptest.Server, *[]captured) {
	t.Helper()
	var (
		mu  sync.Mutex
		got []captured
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		defer mu.Unlock()
		got = append(got, captured{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			click:    r.Header.Get("Click"),
			body:     string(body),
		})
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyJobFailed(context.Background(), notifications.JobSummary{ID: "x"}, errors.New("boom")); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	srv, got := newNtfyServer(t, http.StatusOK)
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = srv.URL
	svc := notifications.NewService(&cfg)
	ctx := context.Background()

	job := notifications.JobSummary{
		ID:        "job-1",
		VideoName: "clip.mp4",
		OutputURL: "http://localhost:5000/outputs/1-output.mp4",
		Words:     12,
		Elapsed:   3 * time.Second,
	}
	if err := svc.NotifyJobSucceeded(ctx, job); err != nil {
		t.Fatalf("NotifyJobSucceeded: %v", err)
	}
	if err := svc.NotifyJobFailed(ctx, notifications.JobSummary{ID: "job-2"}, errors.New("ffmpeg exited 1")); err != nil {
		t.Fatalf("NotifyJobFailed: %v", err)
	}

	if len(*got) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(*got))
	}
	success := (*got)[0]
	if success.title != "captionburn - Complete" || success.tags != "captionburn,job,completed" {
		t.Fatalf("unexpected success headers: %#v", success)
	}
	if success.body != "✅ Captions burned: clip.mp4 (12 words in 3s)\nhttp://localhost:5000/outputs/1-output.mp4" {
		t.Fatalf("unexpected success body: %q", success.body)
	}
	if success.click != job.OutputURL {
		t.Fatalf("click = %q", success.click)
	}
	failure := (*got)[1]
	if failure.priority != "high" || !strings.Contains(failure.body, "job-2") || !strings.Contains(failure.body, "ffmpeg exited 1") {
		t.Fatalf("unexpected failure payload: %#v", failure)
	}
}

func TestNtfyServiceHonoursToggles(t *testing.T) {
	srv, got := newNtfyServer(t, http.StatusOK)
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = srv.URL
	cfg.Notifications.OnSuccess = false
	svc := notifications.NewService(&cfg)

	if err := svc.NotifyJobSucceeded(context.Background(), notifications.JobSummary{ID: "a"}); err != nil {
		t.Fatalf("NotifyJobSucceeded: %v", err)
	}
	if len(*got) != 0 {
		t.Fatalf("expected no request when on_success is disabled, got %d", len(*got))
	}
	if err := svc.TestNotification(context.Background()); err != nil {
		t.Fatalf("TestNotification: %v", err)
	}
	if len(*got) != 1 || (*got)[0].priority != "low" {
		t.Fatalf("unexpected test notification: %#v", *got)
	}
}

func TestNtfyServiceReportsHTTPErrors(t *testing.T) {
	srv, _ := newNtfyServer(t, http.StatusForbidden)
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = srv.URL
	svc := notifications.NewService(&cfg)

	err := svc.NotifyDaemonStarted(context.Background(), "127.0.0.1:5000")
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected 403 error, got %v", err)
	}
}
