package transcode

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"captionburn/internal/logging"
	"captionburn/internal/services"
)

const stderrTailLines = 20

// Request describes one burn-in: the source video, the ASS track to overlay,
// and where to write the result.
type Request struct {
	VideoPath    string
	SubtitlePath string
	OutputPath   string
	FontsDir     string
}

// Result reports a finished transcode.
type Result struct {
	OutputPath string
	Duration   time.Duration
	StderrTail []string
}

// CommandRunner executes an external command, streaming its stderr to the
// provided writer, and returns once the process exits.
type CommandRunner func(ctx context.Context, name string, args []string, stderr io.Writer) error

// Runner launches ffmpeg processes. There is no concurrency limit: every
// Start spawns its own process.
type Runner struct {
	binary  string
	timeout time.Duration
	logger  *slog.Logger
	run     CommandRunner
}

// NewRunner constructs a runner for the given ffmpeg binary. A zero timeout
// lets the process run to completion.
func NewRunner(binary string, timeout time.Duration, logger *slog.Logger) *Runner {
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	return &Runner{
		binary:  binary,
		timeout: timeout,
		logger:  logging.NewComponentLogger(logger, "transcode"),
		run:     defaultCommandRunner,
	}
}

// WithCommandRunner allows injecting a custom command runner for tests.
func (r *Runner) WithCommandRunner(run CommandRunner) {
	if r != nil && run != nil {
		r.run = run
	}
}

// Args returns the ffmpeg arguments for req.
func (r *Runner) Args(req Request) []string {
	return []string{
		"-y",
		"-i", req.VideoPath,
		"-vf", subtitleFilter(req.SubtitlePath, req.FontsDir),
		"-nostdin",
		req.OutputPath,
	}
}

// Start validates req and launches the transcode in the background. The
// returned task is already Running; use Wait or Done to observe completion.
func (r *Runner) Start(ctx context.Context, req Request, observers ...Observer) (*Task, error) {
	if r == nil {
		return nil, errors.New("transcode runner not initialized")
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	task := newTask(observers)
	args := r.Args(req)
	if err := task.transition(StateRunning); err != nil {
		return nil, err
	}
	task.emit(Event{Kind: EventStart, Line: r.binary + " " + strings.Join(args, " ")})

	runCtx := ctx
	cancel := context.CancelFunc(func() {})
	if r.timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, r.timeout)
	}

	go func() {
		defer cancel()
		r.execute(runCtx, task, req, args)
	}()
	return task, nil
}

// Run starts a transcode and blocks until it finishes.
func (r *Runner) Run(ctx context.Context, req Request, observers ...Observer) (Result, error) {
	task, err := r.Start(ctx, req, observers...)
	if err != nil {
		return Result{}, err
	}
	return task.Wait(ctx)
}

func (r *Runner) execute(ctx context.Context, task *Task, req Request, args []string) {
	started := time.Now()
	pr, pw := io.Pipe()
	tail := newLineTail(stderrTailLines)

	var scanWG sync.WaitGroup
	scanWG.Add(1)
	go func() {
		defer scanWG.Done()
		scanner := bufio.NewScanner(pr)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		scanner.Split(scanLinesOrCR)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			tail.add(line)
			task.emit(Event{Kind: EventStderr, Line: line})
		}
		_, _ = io.Copy(io.Discard, pr)
	}()

	runErr := r.run(ctx, r.binary, args, pw)
	_ = pw.Close()
	scanWG.Wait()

	result := Result{OutputPath: req.OutputPath, Duration: time.Since(started), StderrTail: tail.lines()}
	if runErr == nil {
		if _, statErr := os.Stat(req.OutputPath); statErr != nil {
			runErr = fmt.Errorf("output not produced: %w", statErr)
		}
	}
	if runErr != nil {
		detail := "exited with error"
		if last := tail.last(); last != "" {
			detail = last
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			detail = fmt.Sprintf("timed out after %s", r.timeout)
		}
		err := services.Wrap(services.ErrExternalTool, "transcode", r.binary, detail, runErr)
		r.logger.Debug("ffmpeg failed",
			logging.String("output", req.OutputPath),
			logging.Duration("elapsed", result.Duration),
			logging.Error(err),
		)
		task.finish(StateFailed, result, err)
		return
	}
	task.finish(StateSucceeded, result, nil)
}

func validateRequest(req Request) error {
	switch {
	case strings.TrimSpace(req.VideoPath) == "":
		return services.Wrap(services.ErrValidation, "transcode", "prepare", "video path is required", nil)
	case strings.TrimSpace(req.SubtitlePath) == "":
		return services.Wrap(services.ErrValidation, "transcode", "prepare", "subtitle path is required", nil)
	case strings.TrimSpace(req.OutputPath) == "":
		return services.Wrap(services.ErrValidation, "transcode", "prepare", "output path is required", nil)
	}
	if _, err := os.Stat(req.SubtitlePath); err != nil {
		return services.Wrap(services.ErrNotFound, "transcode", "prepare", "subtitle track missing", err)
	}
	if _, err := os.Stat(req.VideoPath); err != nil {
		return services.Wrap(services.ErrNotFound, "transcode", "prepare", "source video missing", err)
	}
	return nil
}

// defaultCommandRunner executes ffmpeg with stdin detached.
func defaultCommandRunner(ctx context.Context, name string, args []string, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = nil
	cmd.Stdout = io.Discard
	cmd.Stderr = stderr
	return cmd.Run()
}

// scanLinesOrCR splits on \n or \r; ffmpeg rewrites its progress line with
// carriage returns.
func scanLinesOrCR(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	for i, b := range data {
		if b == '\n' || b == '\r' {
			return i + 1, data[:i], nil
		}
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

type lineTail struct {
	max  int
	buf  []string
	next int
	full bool
}

func newLineTail(max int) *lineTail {
	return &lineTail{max: max, buf: make([]string, max)}
}

func (t *lineTail) add(line string) {
	t.buf[t.next] = line
	t.next = (t.next + 1) % t.max
	if t.next == 0 {
		t.full = true
	}
}

func (t *lineTail) lines() []string {
	if !t.full {
		return append([]string(nil), t.buf[:t.next]...)
	}
	out := make([]string, 0, t.max)
	out = append(out, t.buf[t.next:]...)
	return append(out, t.buf[:t.next]...)
}

func (t *lineTail) last() string {
	if !t.full && t.next == 0 {
		return ""
	}
	return t.buf[(t.next-1+t.max)%t.max]
}
