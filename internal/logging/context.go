package logging

import "log/slog"

// Common structured field names used across the daemon and CLI so log
// queries can rely on stable keys.
const (
	FieldComponent = "component"
	FieldTaskID    = "task_id"
	FieldSKU       = "sku"
	FieldImageRef  = "image_ref"
	FieldReviewer  = "reviewer"
)

// WithComponent returns a logger scoped to a named subsystem.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

// WithTask returns a logger carrying a review-task identifier.
func WithTask(logger *slog.Logger, taskID string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldTaskID, taskID))
}

// WithSKU returns a logger carrying a canonical product identifier.
func WithSKU(logger *slog.Logger, sku string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldSKU, sku))
}
