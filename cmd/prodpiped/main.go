package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"prodpipe/internal/config"
	"prodpipe/internal/daemon"
	"prodpipe/internal/logging"
	"prodpipe/internal/notifications"
	"prodpipe/internal/review"
	"prodpipe/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
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

	st, err := store.Open(cfg)
	if err != nil {
		logger.Error("open store", logging.Error(err))
		return
	}

	reviews := review.NewManager(st, cfg.Review, logger)
	notifier := notifications.NewService(cfg)

	d, err := daemon.New(cfg, st, reviews, notifier, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		return
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("start daemon", logging.Error(err))
		return
	}

	if err := d.ListenAndServe(ctx); err != nil {
		logger.Error("http surface failed", logging.Error(err))
		return
	}

	logger.Info("prodpiped shutting down")
}
