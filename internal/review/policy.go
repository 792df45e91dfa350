package review

import (
	"time"

	"prodpipe/internal/config"
)

// PriorityForScore maps a validation score onto a priority tier. Lower
// scores are more urgent; tier 1 is the most urgent.
func PriorityForScore(score float64) int {
	switch {
	case score < 0.40:
		return 1
	case score < 0.55:
		return 2
	case score < 0.70:
		return 3
	case score < 0.80:
		return 4
	default:
		return 5
	}
}

// slaWindow returns the SLA duration for a priority tier, falling back to
// the default window for tiers outside the configured ladder.
func slaWindow(cfg config.Review, priority int) time.Duration {
	if priority >= 1 && priority <= len(cfg.SLAHoursByPriority) {
		return time.Duration(cfg.SLAHoursByPriority[priority-1]) * time.Hour
	}
	return time.Duration(cfg.DefaultSLAHours) * time.Hour
}
