package main

import (
	"fmt"
	"time"
)

func formatTime(value time.Time) string {
	if value.IsZero() {
		return "-"
	}
	return value.UTC().Format("2006-01-02 15:04")
}

// formatDue reports how far a deadline is from now, flagging breaches.
func formatDue(dueBy, now time.Time) string {
	if dueBy.IsZero() {
		return "-"
	}
	remaining := dueBy.Sub(now)
	if remaining < 0 {
		return fmt.Sprintf("overdue %s", formatDuration(-remaining))
	}
	return fmt.Sprintf("in %s", formatDuration(remaining))
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	if d >= 24*time.Hour {
		days := d / (24 * time.Hour)
		hours := (d % (24 * time.Hour)) / time.Hour
		return fmt.Sprintf("%dd%dh", days, hours)
	}
	if d >= time.Hour {
		hours := d / time.Hour
		minutes := (d % time.Hour) / time.Minute
		return fmt.Sprintf("%dh%dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", d/time.Minute)
}
