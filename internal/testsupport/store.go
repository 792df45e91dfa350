package testsupport

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"prodpipe/internal/config"
	"prodpipe/internal/review"
	"prodpipe/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// NewTask inserts a pending review task for tests and returns it.
func NewTask(t testing.TB, st *store.Store, sku, imageRef string, priority int, dueBy time.Time) *review.Task {
	t.Helper()

	now := time.Now().UTC()
	task := &review.Task{
		ID:        uuid.NewString(),
		SKU:       sku,
		ImageRef:  imageRef,
		Status:    review.StatusPending,
		Priority:  priority,
		Score:     0.75,
		Reasons:   []string{"blur"},
		CreatedAt: now,
		UpdatedAt: now,
		DueBy:     dueBy,
	}
	if err := st.CreateTask(context.Background(), task); err != nil {
		t.Fatalf("store.CreateTask: %v", err)
	}
	return task
}
