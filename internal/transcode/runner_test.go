package transcode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"captionburn/internal/logging"
	"captionburn/internal/services"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) observe(evt Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

func (r *recorder) kinds() []EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventKind, 0, len(r.events))
	for _, evt := range r.events {
		out = append(out, evt.Kind)
	}
	return out
}

func newRequest(t *testing.T) Request {
	t.Helper()
	dir := t.TempDir()
	video := filepath.Join(dir, "in.mp4")
	subs := filepath.Join(dir, "job.ass")
	for _, path := range []string{video, subs} {
		if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	return Request{VideoPath: video, SubtitlePath: subs, OutputPath: filepath.Join(dir, "out.mp4")}
}

func TestArgsReferenceSubtitlePath(t *testing.T) {
	runner := NewRunner("", 0, logging.NewNop())
	req := Request{VideoPath: "/in/v.mp4", SubtitlePath: "/uploads/abc.ass", OutputPath: "/out/o.mp4"}
	got := runner.Args(req)
	want := []string{"-y", "-i", "/in/v.mp4", "-vf", "ass=/uploads/abc.ass", "-nostdin", "/out/o.mp4"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("args = %q, want %q", got, want)
	}

	req.FontsDir = "/fonts"
	got = runner.Args(req)
	if got[4] != "ass=/uploads/abc.ass:fontsdir=/fonts" {
		t.Fatalf("filter = %q", got[4])
	}
}

func TestEscapeFilterValue(t *testing.T) {
	tests := map[string]string{
		"/tmp/plain.ass":   "/tmp/plain.ass",
		"/tmp/a:b.ass":     `/tmp/a\\:b.ass`,
		"/tmp/it's.ass":    `/tmp/it\\\'s.ass`,
		"/tmp/a,b[1].ass":  `/tmp/a\,b\[1\].ass`,
		`C:\subs\x.ass`:    `C\\:\\\\subs\\\\x.ass`,
		"/tmp/semi;co.ass": `/tmp/semi\;co.ass`,
	}
	for in, want := range tests {
		if got := escapeFilterValue(in); got != want {
			t.Errorf("escapeFilterValue(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRunSucceedsAndOrdersEvents(t *testing.T) {
	req := newRequest(t)
	runner := NewRunner("ffmpeg", 0, logging.NewNop())
	var gotName string
	var gotArgs []string
	runner.WithCommandRunner(func(_ context.Context, name string, args []string, stderr io.Writer) error {
		gotName, gotArgs = name, args
		fmt.Fprint(stderr, "Input #0, mov\nframe=  10 fps=0.0\rframe=  20 fps=0.0\n")
		return os.WriteFile(args[len(args)-1], []byte("video"), 0o644)
	})

	rec := &recorder{}
	task, err := runner.Start(context.Background(), req, rec.observe)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	result, err := task.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if task.State() != StateSucceeded {
		t.Fatalf("state = %s, want succeeded", task.State())
	}
	if result.OutputPath != req.OutputPath {
		t.Fatalf("output path = %q", result.OutputPath)
	}
	if gotName != "ffmpeg" || gotArgs[len(gotArgs)-2] != "-nostdin" {
		t.Fatalf("unexpected command %s %q", gotName, gotArgs)
	}
	want := []EventKind{EventStart, EventStderr, EventStderr, EventStderr, EventEnd}
	if got := rec.kinds(); !reflect.DeepEqual(got, want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	if !strings.Contains(rec.events[0].Line, "ass="+req.SubtitlePath) {
		t.Fatalf("start line = %q", rec.events[0].Line)
	}
	if len(result.StderrTail) != 3 || result.StderrTail[2] != "frame=  20 fps=0.0" {
		t.Fatalf("stderr tail = %q", result.StderrTail)
	}
}

func TestRunFailureEmitsSingleErrorEvent(t *testing.T) {
	req := newRequest(t)
	runner := NewRunner("ffmpeg", 0, logging.NewNop())
	runner.WithCommandRunner(func(_ context.Context, _ string, _ []string, stderr io.Writer) error {
		fmt.Fprintln(stderr, "Unable to open font")
		return errors.New("exit status 1")
	})

	rec := &recorder{}
	_, err := runner.Run(context.Background(), req, rec.observe)
	if err == nil {
		t.Fatal("expected failure")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Unable to open font") {
		t.Fatalf("error should carry last diagnostic: %v", err)
	}
	want := []EventKind{EventStart, EventStderr, EventError}
	if got := rec.kinds(); !reflect.DeepEqual(got, want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
}

func TestRunFailsWhenOutputMissing(t *testing.T) {
	req := newRequest(t)
	runner := NewRunner("ffmpeg", 0, logging.NewNop())
	runner.WithCommandRunner(func(context.Context, string, []string, io.Writer) error { return nil })

	_, err := runner.Run(context.Background(), req)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestRunTimeout(t *testing.T) {
	req := newRequest(t)
	runner := NewRunner("ffmpeg", 20*time.Millisecond, logging.NewNop())
	runner.WithCommandRunner(func(ctx context.Context, _ string, _ []string, _ io.Writer) error {
		<-ctx.Done()
		return ctx.Err()
	})

	_, err := runner.Run(context.Background(), req)
	if err == nil || !strings.Contains(err.Error(), "timed out") {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestStartRejectsInvalidRequests(t *testing.T) {
	runner := NewRunner("ffmpeg", 0, logging.NewNop())
	called := false
	runner.WithCommandRunner(func(context.Context, string, []string, io.Writer) error {
		called = true
		return nil
	})

	if _, err := runner.Start(context.Background(), Request{}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	req := newRequest(t)
	req.SubtitlePath = filepath.Join(t.TempDir(), "missing.ass")
	if _, err := runner.Start(context.Background(), req); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
	if called {
		t.Fatal("command should not run for invalid requests")
	}
}

func TestWaitHonoursContext(t *testing.T) {
	req := newRequest(t)
	release := make(chan struct{})
	runner := NewRunner("ffmpeg", 0, logging.NewNop())
	runner.WithCommandRunner(func(_ context.Context, _ string, args []string, _ io.Writer) error {
		<-release
		return os.WriteFile(args[len(args)-1], nil, 0o644)
	})

	task, err := runner.Start(context.Background(), req)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if task.State() != StateRunning {
		t.Fatalf("state = %s, want running", task.State())
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := task.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	close(release)
	<-task.Done()
	if task.State() != StateSucceeded {
		t.Fatalf("state = %s, want succeeded", task.State())
	}
}

func TestLineTailKeepsMostRecent(t *testing.T) {
	tail := newLineTail(3)
	if tail.last() != "" {
		t.Fatal("empty tail should have no last line")
	}
	for i := 1; i <= 5; i++ {
		tail.add(fmt.Sprintf("l%d", i))
	}
	if got := tail.lines(); !reflect.DeepEqual(got, []string{"l3", "l4", "l5"}) {
		t.Fatalf("lines = %v", got)
	}
	if tail.last() != "l5" {
		t.Fatalf("last = %q", tail.last())
	}
}
