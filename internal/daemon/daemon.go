package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"captionburn/internal/api"
	"captionburn/internal/burn"
	"captionburn/internal/config"
	"captionburn/internal/jobs"
	"captionburn/internal/logging"
	"captionburn/internal/notifications"
	"captionburn/internal/observe"
	"captionburn/internal/preflight"
)

// LockFileName is the single-instance lock created inside the log directory.
const LockFileName = "captionburnd.lock"

const shutdownTimeout = 10 * time.Second

// Daemon serves the HTTP API and enforces single-instance execution.
type Daemon struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     *jobs.Store
	processor *burn.Processor
	provider  *observe.Provider
	notifier  notifications.Service

	lockPath string
	lock     *flock.Flock

	running   atomic.Bool
	mu        sync.Mutex
	startedAt time.Time
	api       *apiServer
}

// Option customizes a Daemon.
type Option func(*Daemon)

// WithProvider exposes provider's registry on /metrics and records HTTP metrics.
func WithProvider(p *observe.Provider) Option {
	return func(d *Daemon) { d.provider = p }
}

// WithNotifier overrides the notification service used for daemon events.
func WithNotifier(svc notifications.Service) Option {
	return func(d *Daemon) { d.notifier = svc }
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *jobs.Store, processor *burn.Processor, logger *slog.Logger, opts ...Option) (*Daemon, error) {
	if cfg == nil || store == nil || processor == nil {
		return nil, errors.New("daemon requires config, store, and processor")
	}
	lockPath := filepath.Join(cfg.Paths.LogDir, LockFileName)
	d := &Daemon{
		cfg:       cfg,
		logger:    logging.NewComponentLogger(logger, "daemon"),
		store:     store,
		processor: processor,
		lockPath:  lockPath,
		lock:      flock.New(lockPath),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.notifier == nil {
		d.notifier = notifications.NewService(cfg)
	}
	d.api = newAPIServer(cfg, d, logger)
	return d, nil
}

// Start acquires the daemon lock, marks jobs orphaned by a previous run as
// failed, and prunes expired job history.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another captionburn daemon instance is already running")
	}

	if n, err := d.store.FailInterrupted(ctx); err != nil {
		logging.WarnWithContext(d.logger, "could not reconcile interrupted jobs", "job_reconcile_failed",
			logging.String(logging.FieldImpact, "stale jobs may show as running"),
			logging.Error(err),
		)
	} else if n > 0 {
		d.logger.Info("marked interrupted jobs as failed", logging.Int64("count", n))
	}

	if days := d.cfg.Jobs.RetentionDays; days > 0 {
		cutoff := time.Now().AddDate(0, 0, -days)
		if n, err := d.store.Prune(ctx, cutoff); err != nil {
			d.logger.Warn("job history prune failed", logging.Error(err))
		} else if n > 0 {
			d.logger.Info("pruned job history", logging.Int64("count", n), logging.Int("retention_days", days))
		}
	}

	for _, failed := range preflight.Failed(preflight.RunAll(ctx, d.cfg)) {
		logging.WarnWithContext(d.logger, "preflight check failed", "preflight_failed",
			logging.String("check", failed.Name),
			logging.String("detail", failed.Detail),
			logging.String(logging.FieldErrorHint, "run `captionburn status` for details"),
			logging.String(logging.FieldImpact, "burn requests may fail"),
		)
	}

	d.mu.Lock()
	d.startedAt = time.Now()
	d.mu.Unlock()
	d.running.Store(true)
	d.logger.Info("captionburn daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("captionburn daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Run starts the daemon and serves HTTP on the configured bind address until
// ctx is cancelled. In-flight requests get a grace period to finish.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.Start(ctx); err != nil {
		return err
	}
	defer d.Stop()

	listener, err := net.Listen("tcp", d.cfg.Paths.APIBind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	return d.Serve(ctx, listener)
}

// Serve runs the HTTP server on listener until ctx is cancelled.
func (d *Daemon) Serve(ctx context.Context, listener net.Listener) error {
	server := d.api.httpServer()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		d.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		if err := d.notifier.NotifyDaemonStarted(gctx, listener.Addr().String()); err != nil {
			d.logger.Warn("startup notification not sent", logging.Error(err))
		}
		return nil
	})
	return g.Wait()
}

// Handler returns the daemon's HTTP handler.
func (d *Daemon) Handler() http.Handler {
	return d.api.handler
}

// LockPath returns the path to the single-instance lock file.
func (d *Daemon) LockPath() string {
	return d.lockPath
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) api.DaemonStatus {
	d.mu.Lock()
	started := d.startedAt
	d.mu.Unlock()

	status := api.DaemonStatus{
		Running:        d.running.Load(),
		PID:            os.Getpid(),
		JobsDBPath:     d.store.Path(),
		LockFilePath:   d.lockPath,
		FontFamily:     d.cfg.Style.FontFamily,
		DefaultColor:   d.cfg.Style.DefaultActiveColor,
		MetricsEnabled: d.cfg.Metrics.Enabled && d.provider != nil,
		Dependencies:   api.FromDependencies(preflight.CheckSystemDeps(ctx, d.cfg)),
		Checks:         api.FromChecks(preflight.RunAll(ctx, d.cfg)),
	}
	if status.Running && !started.IsZero() {
		status.StartedAt = started.UTC().Format(time.RFC3339)
		status.UptimeSec = time.Since(started).Seconds()
	}
	counts, err := d.store.Counts(ctx)
	if err != nil {
		d.logger.Warn("job counts unavailable", logging.Error(err))
	}
	status.JobCounts = api.JobCounts(counts)
	return status
}
