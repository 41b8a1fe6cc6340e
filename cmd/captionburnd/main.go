package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"captionburn/internal/config"
	"captionburn/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "Configuration file path")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, path, exists, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("ensure directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	if !exists {
		logger.Info("config file not found; using defaults", logging.FilePath(path))
	}

	d, cleanup, err := buildDaemon(ctx, cfg, logger)
	if err != nil {
		logging.ErrorWithContext(logger, "daemon setup failed", "daemon_setup_failed", logging.Error(err))
		os.Exit(1)
	}
	defer cleanup()

	if err := d.Run(ctx); err != nil {
		logging.ErrorWithContext(logger, "daemon exited with error", "daemon_failed", logging.Error(err))
		cleanup()
		os.Exit(1)
	}
	logger.Info("captionburnd shutting down")
}
