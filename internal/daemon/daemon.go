package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"prodpipe/internal/config"
	"prodpipe/internal/logging"
	"prodpipe/internal/notifications"
	"prodpipe/internal/review"
	"prodpipe/internal/store"
)

// Daemon runs the background SLA sweeper and the HTTP status surface, and
// enforces single-instance execution through a file lock.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *store.Store
	reviews  *review.Manager
	notifier notifications.Service

	lockPath string
	lock     *flock.Flock

	running     atomic.Bool
	cancel      context.CancelFunc
	sweeperDone chan struct{}

	lastOverdue int
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	Identifiers  int
	Stats        review.Stats
	DBPath       string
	LockFilePath string
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, st *store.Store, reviews *review.Manager, notifier notifications.Service, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || st == nil || reviews == nil {
		return nil, errors.New("daemon requires config, store, and review manager")
	}
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}

	lockPath := filepath.Join(cfg.Paths.DataDir, "prodpiped.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logging.WithComponent(logger, "daemon"),
		store:    st,
		reviews:  reviews,
		notifier: notifier,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock and launches the sweeper.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another prodpipe daemon instance is already running")
	}

	sweeperCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.sweeperDone = make(chan struct{})
	go d.runSweeper(sweeperCtx)

	d.running.Store(true)
	d.logger.Info("daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop stops the sweeper and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.sweeperDone != nil {
		<-d.sweeperDone
		d.sweeperDone = nil
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	stats, err := d.reviews.Stats(ctx)
	if err != nil {
		d.logger.Warn("status stats unavailable", logging.Error(err))
	}
	identifiers, err := d.store.CountIdentifiers(ctx)
	if err != nil {
		d.logger.Warn("status identifier count unavailable", logging.Error(err))
	}
	return Status{
		Running:      d.running.Load(),
		Identifiers:  identifiers,
		Stats:        stats,
		DBPath:       d.store.Path(),
		LockFilePath: d.lockPath,
	}
}
