package burn

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"captionburn/internal/config"
	"captionburn/internal/fileutil"
	"captionburn/internal/jobs"
	"captionburn/internal/logging"
	"captionburn/internal/notifications"
	"captionburn/internal/observe"
	"captionburn/internal/services"
	"captionburn/internal/subtitles"
	"captionburn/internal/transcode"
)

// JobStore records job history. *jobs.Store satisfies it.
type JobStore interface {
	Create(ctx context.Context, job jobs.NewJob) (*jobs.Job, error)
	MarkRunning(ctx context.Context, id string) error
	MarkSucceeded(ctx context.Context, id, outputPath, outputURL string) error
	MarkFailed(ctx context.Context, id, kind, message string) error
}

// Job is one request to overlay captions onto a video.
type Job struct {
	// ID is generated when empty.
	ID        string
	VideoPath string
	// VideoName is the client-facing file name, used in history and notifications.
	VideoName string
	Spans     []subtitles.Span
	// ActiveColor falls back to style.default_active_color when empty.
	ActiveColor string
	// OutputPath overrides the generated name inside the outputs directory.
	OutputPath string
	// BaseURL, when set, is used to build Outcome.URL.
	BaseURL string
	// RemoveVideo deletes VideoPath once the job finishes.
	RemoveVideo bool
	RequestID   string
}

// Outcome describes a finished job.
type Outcome struct {
	JobID        string
	OutputPath   string
	OutputName   string
	URL          string
	SubtitlePath string
	Events       int
	Duration     time.Duration
	StderrTail   []string
}

// Processor runs the compile, write, transcode, and record sequence for a job.
type Processor struct {
	cfg      *config.Config
	store    JobStore
	runner   *transcode.Runner
	notifier notifications.Service
	metrics  *observe.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// Option customizes a Processor.
type Option func(*Processor)

// WithStore records job history in store.
func WithStore(store JobStore) Option {
	return func(p *Processor) { p.store = store }
}

// WithNotifier sends job outcomes through svc.
func WithNotifier(svc notifications.Service) Option {
	return func(p *Processor) { p.notifier = svc }
}

// WithMetrics records job metrics.
func WithMetrics(m *observe.Metrics) Option {
	return func(p *Processor) { p.metrics = m }
}

// WithRunner replaces the transcode runner.
func WithRunner(r *transcode.Runner) Option {
	return func(p *Processor) { p.runner = r }
}

// WithClock overrides the time source used for output names.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

// NewProcessor builds a processor for cfg. Without options it keeps no
// history, sends no notifications, and records no metrics.
func NewProcessor(cfg *config.Config, logger *slog.Logger, opts ...Option) *Processor {
	logger = logging.NewComponentLogger(logger, "burn")
	p := &Processor{
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.runner == nil {
		timeout := time.Duration(cfg.Transcode.TimeoutSeconds) * time.Second
		p.runner = transcode.NewRunner(cfg.FFmpegBinary(), timeout, logger)
	}
	if p.notifier == nil {
		p.notifier = notifications.NewService(&config.Config{})
	}
	return p
}

// Style returns the subtitle style for a job's highlight colour.
func (p *Processor) Style(activeColor string) subtitles.Style {
	if strings.TrimSpace(activeColor) == "" {
		activeColor = p.cfg.Style.DefaultActiveColor
	}
	style := subtitles.DefaultStyle(p.cfg.Style.FontFamily, activeColor)
	if p.cfg.Style.FontSize > 0 {
		style.FontSize = p.cfg.Style.FontSize
	}
	return style
}

// Process validates the captions, compiles the ASS track, burns it into the
// video, and records the result. The transcode is not cancelled when ctx is;
// once ffmpeg starts it runs to completion.
func (p *Processor) Process(ctx context.Context, job Job) (Outcome, error) {
	started := time.Now()
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	ctx = services.WithJobID(ctx, job.ID)
	if job.RequestID != "" {
		ctx = services.WithRequestID(ctx, job.RequestID)
	}
	ctx, span := observe.StartSpan(ctx, "burn.process")
	defer span.End()
	span.SetAttributes(attribute.String("job.id", job.ID), attribute.Int("captions.spans", len(job.Spans)))

	logger := logging.WithContext(ctx, p.logger)
	outcome := Outcome{JobID: job.ID}
	if job.RemoveVideo {
		defer p.removeFile(logger, job.VideoPath, "source video")
	}

	fail := func(err error) (Outcome, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, services.Kind(err))
		p.metrics.JobFinished(ctx, string(jobs.StatusFailed), services.Kind(err), time.Since(started))
		logging.WarnWithContext(logger, "burn job failed", "job_failed",
			logging.String(logging.FieldImpact, "no output produced"),
			logging.Error(err),
		)
		return outcome, err
	}

	track, err := subtitles.NewTrack(job.Spans, p.Style(job.ActiveColor))
	if err != nil {
		return fail(err)
	}
	outcome.Events = len(track.Events)
	if strings.TrimSpace(job.VideoPath) == "" {
		return fail(services.Wrap(services.ErrValidation, "burn", "prepare", "video file is required", nil))
	}

	fontPath := p.cfg.FontPath()
	if _, err := os.Stat(fontPath); err != nil {
		return fail(services.Wrap(services.ErrNotFound, "burn", "resolve font",
			fmt.Sprintf("font file %s is missing", fontPath), err))
	}

	outcome.SubtitlePath = filepath.Join(p.cfg.Paths.UploadsDir, job.ID+".ass")
	if err := fileutil.WriteFileAtomic(outcome.SubtitlePath, []byte(track.String()), 0o644); err != nil {
		return fail(services.Wrap(services.ErrConfiguration, "burn", "write subtitles", outcome.SubtitlePath, err))
	}
	if !p.cfg.Transcode.KeepSubtitleFile {
		defer p.removeFile(logger, outcome.SubtitlePath, "subtitle track")
	}
	p.metrics.WordsCompiled(ctx, outcome.Events)

	outcome.OutputPath = job.OutputPath
	if outcome.OutputPath == "" {
		outcome.OutputName = OutputName(p.now(), job.ID)
		outcome.OutputPath = filepath.Join(p.cfg.Paths.OutputsDir, outcome.OutputName)
	} else {
		outcome.OutputName = filepath.Base(outcome.OutputPath)
	}
	if base := strings.TrimRight(job.BaseURL, "/"); base != "" {
		outcome.URL = base + "/outputs/" + outcome.OutputName
	}

	if err := p.recordStart(ctx, job, outcome); err != nil {
		return fail(err)
	}
	logger.Info("burn job started",
		logging.String(logging.FieldEventType, "job_started"),
		logging.String("video", job.VideoName),
		logging.Int("spans", len(job.Spans)),
		logging.Int("events", outcome.Events),
		logging.String("subtitle_path", outcome.SubtitlePath),
		logging.String("output_path", outcome.OutputPath),
	)

	req := transcode.Request{
		VideoPath:    job.VideoPath,
		SubtitlePath: outcome.SubtitlePath,
		OutputPath:   outcome.OutputPath,
		FontsDir:     p.cfg.Paths.FontsDir,
	}
	p.metrics.JobStarted(ctx)
	result, runErr := p.runner.Run(context.WithoutCancel(ctx), req, p.observer(logger))
	outcome.Duration = result.Duration
	outcome.StderrTail = result.StderrTail

	summary := notifications.JobSummary{
		ID:        job.ID,
		VideoName: job.VideoName,
		OutputURL: outcome.URL,
		Words:     outcome.Events,
		Elapsed:   time.Since(started),
	}
	notifyCtx := context.WithoutCancel(ctx)

	if runErr != nil {
		p.metrics.TranscodeFinished(ctx, string(jobs.StatusFailed), result.Duration)
		p.recordFailure(notifyCtx, logger, job.ID, runErr)
		if err := p.notifier.NotifyJobFailed(notifyCtx, summary, runErr); err != nil {
			logger.Warn("failure notification not sent", logging.Error(err))
		}
		return fail(runErr)
	}

	p.metrics.TranscodeFinished(ctx, string(jobs.StatusSucceeded), result.Duration)
	if p.store != nil {
		if err := p.store.MarkSucceeded(notifyCtx, job.ID, outcome.OutputPath, outcome.URL); err != nil {
			logger.Warn("job history not updated", logging.Error(err))
		}
	}
	if err := p.notifier.NotifyJobSucceeded(notifyCtx, summary); err != nil {
		logger.Warn("success notification not sent", logging.Error(err))
	}
	p.metrics.JobFinished(ctx, string(jobs.StatusSucceeded), "", time.Since(started))
	logger.Info("burn job completed",
		logging.String(logging.FieldEventType, "job_completed"),
		logging.String("output_path", outcome.OutputPath),
		logging.Duration("transcode_duration", outcome.Duration),
	)
	return outcome, nil
}

func (p *Processor) recordStart(ctx context.Context, job Job, outcome Outcome) error {
	if p.store == nil {
		return nil
	}
	if _, err := p.store.Create(ctx, jobs.NewJob{
		ID:           job.ID,
		VideoName:    job.VideoName,
		VideoPath:    job.VideoPath,
		SubtitlePath: outcome.SubtitlePath,
		OutputPath:   outcome.OutputPath,
		ActiveColor:  p.Style(job.ActiveColor).ActiveColor,
		SpanCount:    len(job.Spans),
		EventCount:   outcome.Events,
		RequestID:    job.RequestID,
	}); err != nil {
		return services.Wrap(services.ErrTransient, "burn", "record job", "", err)
	}
	if err := p.store.MarkRunning(ctx, job.ID); err != nil {
		return services.Wrap(services.ErrTransient, "burn", "record job", "", err)
	}
	return nil
}

func (p *Processor) recordFailure(ctx context.Context, logger *slog.Logger, id string, cause error) {
	if p.store == nil {
		return
	}
	if err := p.store.MarkFailed(ctx, id, services.Kind(cause), cause.Error()); err != nil {
		logger.Warn("job history not updated", logging.Error(err))
	}
}

func (p *Processor) observer(logger *slog.Logger) transcode.Observer {
	return func(evt transcode.Event) {
		switch evt.Kind {
		case transcode.EventStart:
			logger.Debug("ffmpeg started", logging.String("command", evt.Line))
		case transcode.EventStderr:
			logger.Debug("ffmpeg", logging.String("line", evt.Line))
		case transcode.EventEnd:
			logger.Debug("ffmpeg finished")
		case transcode.EventError:
			logger.Debug("ffmpeg failed", logging.Error(evt.Err))
		}
	}
}

func (p *Processor) removeFile(logger *slog.Logger, path, label string) {
	if err := fileutil.RemoveIfExists(path); err != nil {
		logger.Warn("cleanup failed", logging.String("file", label), logging.FilePath(path), logging.Error(err))
	}
}

// OutputName returns the file name for a job's output: the creation time in
// Unix milliseconds plus a short job-id suffix, so concurrent jobs started in
// the same millisecond do not collide.
func OutputName(now time.Time, jobID string) string {
	return fmt.Sprintf("%d-%s-output.mp4", now.UnixMilli(), shortID(jobID))
}

func shortID(id string) string {
	var b strings.Builder
	for _, r := range id {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() == 8 {
				break
			}
		}
	}
	if b.Len() == 0 {
		return "job"
	}
	return b.String()
}
