package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"captionburn/internal/burn"
	"captionburn/internal/config"
	"captionburn/internal/daemon"
	"captionburn/internal/jobs"
	"captionburn/internal/logging"
	"captionburn/internal/notifications"
	"captionburn/internal/observe"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

const providerShutdownTimeout = 5 * time.Second

// buildDaemon wires the job store, telemetry, notifier, and processor into a
// daemon. cleanup releases everything buildDaemon opened and is safe to call
// more than once.
func buildDaemon(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*daemon.Daemon, func(), error) {
	if cfg == nil {
		return nil, nil, errors.New("config is required")
	}
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
		closers = nil
	}

	store, err := jobs.Open(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open job store: %w", err)
	}
	closers = append(closers, func() {
		if err := store.Close(); err != nil {
			logger.Warn("job store close failed", logging.Error(err))
		}
	})

	var provider *observe.Provider
	if cfg.Metrics.Enabled {
		provider, err = observe.InitProvider(ctx, observe.ProviderConfig{
			ServiceName:    "captionburnd",
			ServiceVersion: version,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("init telemetry: %w", err)
		}
		closers = append(closers, func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), providerShutdownTimeout)
			defer cancel()
			if err := provider.Shutdown(shutdownCtx); err != nil {
				logger.Warn("telemetry shutdown failed", logging.Error(err))
			}
		})
	}

	notifier := notifications.NewService(cfg)
	processorOpts := []burn.Option{
		burn.WithStore(store),
		burn.WithNotifier(notifier),
	}
	daemonOpts := []daemon.Option{daemon.WithNotifier(notifier)}
	if provider != nil {
		processorOpts = append(processorOpts, burn.WithMetrics(provider.Metrics))
		daemonOpts = append(daemonOpts, daemon.WithProvider(provider))
	}
	processor := burn.NewProcessor(cfg, logger, processorOpts...)

	d, err := daemon.New(cfg, store, processor, logger, daemonOpts...)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return d, cleanup, nil
}
