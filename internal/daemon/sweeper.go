package daemon

import (
	"context"
	"time"

	"prodpipe/internal/logging"
)

func (d *Daemon) runSweeper(ctx context.Context) {
	defer close(d.sweeperDone)

	interval := time.Duration(d.cfg.Workflow.SweepInterval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run one sweep immediately so a restart picks up backlog without
	// waiting a full interval.
	d.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.sweep(ctx)
		}
	}
}

// sweep releases stale assignments, refreshes queue gauges, and raises
// notifications for SLA breaches. Failures are logged and retried on the
// next tick; a sweep never takes the daemon down.
func (d *Daemon) sweep(ctx context.Context) {
	opCtx, cancel := context.WithTimeout(ctx, time.Duration(d.cfg.Workflow.StoreTimeoutSeconds)*time.Second)
	defer cancel()

	sweepsTotal.Inc()

	released, err := d.reviews.ReleaseStale(opCtx)
	if err != nil {
		d.logger.Warn("stale release sweep failed", logging.Error(err))
	} else if released > 0 {
		staleReleasedTotal.Add(float64(released))
		if err := d.notifier.NotifyStaleReleased(opCtx, released); err != nil {
			d.logger.Warn("stale release notification failed", logging.Error(err))
		}
	}

	overdue, err := d.reviews.OverdueTasks(opCtx)
	if err != nil {
		d.logger.Warn("overdue sweep failed", logging.Error(err))
	} else {
		overdueGauge.Set(float64(len(overdue)))
		// Notify only when the backlog grows, not on every tick.
		if len(overdue) > d.lastOverdue {
			if err := d.notifier.NotifyOverdue(opCtx, len(overdue)); err != nil {
				d.logger.Warn("overdue notification failed", logging.Error(err))
			}
		}
		d.lastOverdue = len(overdue)
	}

	stats, err := d.reviews.Stats(opCtx)
	if err != nil {
		d.logger.Warn("stats sweep failed", logging.Error(err))
		if notifyErr := d.notifier.NotifyError(opCtx, err, "sla sweeper"); notifyErr != nil {
			d.logger.Warn("error notification failed", logging.Error(notifyErr))
		}
		return
	}
	pendingGauge.Set(float64(stats.Pending))
	inProgressGauge.Set(float64(stats.InProgress))

	d.logger.Debug("sweep completed",
		logging.Int("pending", stats.Pending),
		logging.Int("overdue", stats.Overdue),
		logging.Int("released", released),
	)
}
