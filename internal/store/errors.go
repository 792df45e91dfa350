package store

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors callers can test with errors.Is to distinguish transient
// storage conditions from everything else.
var (
	// ErrUnavailable indicates the database could not be reached or was
	// locked past the retry budget. Safe to retry later.
	ErrUnavailable = errors.New("store unavailable")

	// ErrTimeout indicates the operation exceeded its context deadline.
	ErrTimeout = errors.New("store timeout")
)

func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w (%v)", op, ErrTimeout, err)
	}
	if isSQLiteBusy(err) {
		return fmt.Errorf("%s: %w (%v)", op, ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
