package review

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"prodpipe/internal/config"
	"prodpipe/internal/logging"
	"prodpipe/internal/validation"
)

// TaskStore persists review tasks with atomic status transitions. The
// implementation guarantees that each conditioned transition applies at most
// once; the manager never compensates with in-process locking.
type TaskStore interface {
	CreateTask(ctx context.Context, task *Task) error
	GetTask(ctx context.Context, id string) (*Task, error)
	AssignTask(ctx context.Context, id, reviewer string, now time.Time) (bool, error)
	ReleaseTask(ctx context.Context, id string, dueBy *time.Time, now time.Time) (bool, error)
	CompleteTask(ctx context.Context, id string, to Status, feedback Feedback, now time.Time) (bool, error)
	ListPending(ctx context.Context, filter PendingFilter) ([]*Task, error)
	OverdueTasks(ctx context.Context, now time.Time) ([]*Task, error)
	StaleInProgress(ctx context.Context, cutoff time.Time) ([]*Task, error)
	TasksForReviewer(ctx context.Context, reviewer string) ([]*Task, error)
	TaskStats(ctx context.Context, now time.Time) (Stats, error)
	FeedbackForTask(ctx context.Context, taskID string) ([]Feedback, error)
}

// Manager drives the review task lifecycle. Each operation makes a single
// store attempt; transient store failures propagate to the caller.
type Manager struct {
	store  TaskStore
	cfg    config.Review
	logger *slog.Logger
	now    func() time.Time
}

// NewManager builds a review manager from review configuration.
func NewManager(store TaskStore, cfg config.Review, logger *slog.Logger) *Manager {
	return &Manager{
		store:  store,
		cfg:    cfg,
		logger: logging.WithComponent(logger, "review"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// CreateTask opens a pending review task for an image that needs human
// judgment. The priority hint wins when it is a valid tier; otherwise the
// tier is derived from the validation score. The SLA deadline follows the
// tier's configured window.
func (m *Manager) CreateTask(ctx context.Context, sku, imageRef string, result validation.Result, priorityHint int) (*Task, error) {
	if sku == "" {
		return nil, fmt.Errorf("sku is required")
	}
	if imageRef == "" {
		return nil, fmt.Errorf("image reference is required")
	}

	priority := priorityHint
	if priority < 1 || priority > 5 {
		if m.cfg.AutoPriority {
			priority = PriorityForScore(result.Overall)
		} else {
			priority = len(m.cfg.SLAHoursByPriority)
		}
	}

	now := m.now()
	task := &Task{
		ID:        uuid.NewString(),
		SKU:       sku,
		ImageRef:  imageRef,
		Status:    StatusPending,
		Priority:  priority,
		Score:     result.Overall,
		Reasons:   []string{result.Reason},
		CreatedAt: now,
		UpdatedAt: now,
		DueBy:     now.Add(slaWindow(m.cfg, priority)),
	}
	if err := m.store.CreateTask(ctx, task); err != nil {
		return nil, err
	}

	m.logger.Info("review task created",
		logging.String(logging.FieldTaskID, task.ID),
		logging.String(logging.FieldSKU, sku),
		logging.Int("priority", priority),
		logging.Float64("score", result.Overall),
		logging.Time("due_by", task.DueBy),
	)
	return task, nil
}

// Assign hands a pending task to a reviewer. Only pending tasks can be
// assigned; anything else fails with ErrInvalidTransition.
func (m *Manager) Assign(ctx context.Context, taskID, reviewerID string) (*Task, error) {
	if reviewerID == "" {
		return nil, fmt.Errorf("reviewer is required")
	}

	applied, err := m.store.AssignTask(ctx, taskID, reviewerID, m.now())
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, m.transitionFailure(ctx, taskID, StatusPending)
	}

	m.logger.Info("review task assigned",
		logging.String(logging.FieldTaskID, taskID),
		logging.String(logging.FieldReviewer, reviewerID),
	)
	return m.Get(ctx, taskID)
}

// SubmitDecision resolves a task with the reviewer's verdict. Only the
// assigned reviewer may decide, the task must be in progress, and exactly
// one feedback record is created alongside the terminal transition. A
// second submission fails with ErrInvalidTransition and the first record
// stands.
func (m *Manager) SubmitDecision(ctx context.Context, taskID, reviewerID string, decision Decision, confidence int, notes string) (*Task, error) {
	if reviewerID == "" {
		return nil, fmt.Errorf("reviewer is required")
	}
	if !decision.Valid() {
		return nil, fmt.Errorf("unknown decision %q", decision)
	}
	if confidence < 1 || confidence > 5 {
		return nil, fmt.Errorf("confidence %d outside 1..5", confidence)
	}

	feedback := Feedback{
		TaskID:     taskID,
		Reviewer:   reviewerID,
		Decision:   decision,
		Confidence: confidence,
		Notes:      notes,
	}
	applied, err := m.store.CompleteTask(ctx, taskID, decision.Status(), feedback, m.now())
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, m.decisionFailure(ctx, taskID, reviewerID)
	}

	m.logger.Info("review decision recorded",
		logging.String(logging.FieldTaskID, taskID),
		logging.String(logging.FieldReviewer, reviewerID),
		logging.String("decision", string(decision)),
		logging.Int("confidence", confidence),
	)
	return m.Get(ctx, taskID)
}

// Release returns an in-progress task to the pending pool, clearing its
// reviewer. The SLA deadline is left unchanged unless extension on release
// is configured.
func (m *Manager) Release(ctx context.Context, taskID string) (*Task, error) {
	now := m.now()

	var dueBy *time.Time
	if m.cfg.ExtendSLAOnRelease {
		task, err := m.Get(ctx, taskID)
		if err != nil {
			return nil, err
		}
		extended := now.Add(slaWindow(m.cfg, task.Priority))
		dueBy = &extended
	}

	applied, err := m.store.ReleaseTask(ctx, taskID, dueBy, now)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, m.transitionFailure(ctx, taskID, StatusInProgress)
	}

	m.logger.Info("review task released", logging.String(logging.FieldTaskID, taskID))
	return m.Get(ctx, taskID)
}

// ReleaseStale returns in-progress tasks held past the stale assignment
// window back to pending. The daemon sweeper calls this on its interval.
func (m *Manager) ReleaseStale(ctx context.Context) (int, error) {
	now := m.now()
	cutoff := now.Add(-time.Duration(m.cfg.StaleAssignmentHours) * time.Hour)

	stale, err := m.store.StaleInProgress(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	released := 0
	for _, task := range stale {
		var dueBy *time.Time
		if m.cfg.ExtendSLAOnRelease {
			extended := now.Add(slaWindow(m.cfg, task.Priority))
			dueBy = &extended
		}
		applied, err := m.store.ReleaseTask(ctx, task.ID, dueBy, now)
		if err != nil {
			return released, err
		}
		if applied {
			released++
			m.logger.Warn("stale assignment released",
				logging.String(logging.FieldTaskID, task.ID),
				logging.String(logging.FieldReviewer, task.Assignee),
			)
		}
	}
	return released, nil
}

// Get fetches a task by identifier.
func (m *Manager) Get(ctx context.Context, taskID string) (*Task, error) {
	task, err := m.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, fmt.Errorf("task %s: %w", taskID, ErrTaskNotFound)
	}
	return task, nil
}

// ListPending returns the pending queue ordered by priority tier, then SLA
// deadline. The filter optionally narrows to one tier or caps the listing.
func (m *Manager) ListPending(ctx context.Context, filter PendingFilter) ([]*Task, error) {
	return m.store.ListPending(ctx, filter)
}

// OverdueTasks returns non-terminal tasks past their SLA deadline.
func (m *Manager) OverdueTasks(ctx context.Context) ([]*Task, error) {
	return m.store.OverdueTasks(ctx, m.now())
}

// AssignedTasks returns the in-progress tasks held by a reviewer.
func (m *Manager) AssignedTasks(ctx context.Context, reviewerID string) ([]*Task, error) {
	return m.store.TasksForReviewer(ctx, reviewerID)
}

// Stats aggregates queue counts by status plus the overdue total.
func (m *Manager) Stats(ctx context.Context) (Stats, error) {
	return m.store.TaskStats(ctx, m.now())
}

// Feedback returns the recorded decisions for a task.
func (m *Manager) Feedback(ctx context.Context, taskID string) ([]Feedback, error) {
	return m.store.FeedbackForTask(ctx, taskID)
}

// transitionFailure inspects a task after a conditioned update did not apply
// and reports why.
func (m *Manager) transitionFailure(ctx context.Context, taskID string, expected Status) error {
	task, err := m.store.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	if task == nil {
		return fmt.Errorf("task %s: %w", taskID, ErrTaskNotFound)
	}
	return fmt.Errorf("task %s is %s, expected %s: %w", taskID, task.Status, expected, ErrInvalidTransition)
}

func (m *Manager) decisionFailure(ctx context.Context, taskID, reviewerID string) error {
	task, err := m.store.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	if task == nil {
		return fmt.Errorf("task %s: %w", taskID, ErrTaskNotFound)
	}
	if task.Status != StatusInProgress {
		return fmt.Errorf("task %s is %s, expected %s: %w", taskID, task.Status, StatusInProgress, ErrInvalidTransition)
	}
	return fmt.Errorf("task %s is assigned to %s, not %s: %w", taskID, task.Assignee, reviewerID, ErrInvalidTransition)
}
