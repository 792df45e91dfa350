package review_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"prodpipe/internal/logging"
	"prodpipe/internal/review"
	"prodpipe/internal/testsupport"
	"prodpipe/internal/validation"
)

func TestCreateTaskDerivesPriorityAndDeadline(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	mgr := review.NewManager(st, cfg.Review, logging.NewNop())
	ctx := context.Background()

	before := time.Now().UTC()
	task, err := mgr.CreateTask(ctx, "ELEC-WIDGET", "s3://images/widget-1.jpg", validation.Result{
		Overall: 0.45,
		Reason:  "low blur score (0.30)",
	}, 0)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	// 0.45 falls in the second tier of the priority ladder.
	if task.Priority != 2 {
		t.Fatalf("unexpected priority: %d", task.Priority)
	}
	if task.Status != review.StatusPending {
		t.Fatalf("unexpected status: %s", task.Status)
	}

	wantWindow := time.Duration(cfg.Review.SLAHoursByPriority[1]) * time.Hour
	if got := task.DueBy.Sub(before); got < wantWindow-time.Minute || got > wantWindow+time.Minute {
		t.Fatalf("unexpected SLA window: %s, want about %s", got, wantWindow)
	}
	if len(task.Reasons) != 1 || task.Reasons[0] != "low blur score (0.30)" {
		t.Fatalf("unexpected reasons: %v", task.Reasons)
	}
}

func TestCreateTaskHonorsPriorityHint(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	mgr := review.NewManager(st, cfg.Review, logging.NewNop())

	task, err := mgr.CreateTask(context.Background(), "ELEC-WIDGET", "img-1", validation.Result{Overall: 0.78}, 1)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if task.Priority != 1 {
		t.Fatalf("expected hint to win, got priority %d", task.Priority)
	}
}

func TestAssignAndDecideLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	mgr := review.NewManager(st, cfg.Review, logging.NewNop())
	ctx := context.Background()

	task, err := mgr.CreateTask(ctx, "ELEC-WIDGET", "img-1", validation.Result{Overall: 0.72, Reason: "low blur score (0.60)"}, 0)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	assigned, err := mgr.Assign(ctx, task.ID, "alice")
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if assigned.Status != review.StatusInProgress || assigned.Assignee != "alice" {
		t.Fatalf("unexpected assigned task: %+v", assigned)
	}

	if _, err := mgr.Assign(ctx, task.ID, "bob"); !errors.Is(err, review.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for double assign, got %v", err)
	}

	// Only the assigned reviewer may decide.
	if _, err := mgr.SubmitDecision(ctx, task.ID, "mallory", review.DecisionRejected, 5, ""); !errors.Is(err, review.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for non-assignee, got %v", err)
	}

	decided, err := mgr.SubmitDecision(ctx, task.ID, "alice", review.DecisionAccepted, 4, "looks fine")
	if err != nil {
		t.Fatalf("SubmitDecision: %v", err)
	}
	if decided.Status != review.StatusAccepted {
		t.Fatalf("unexpected status: %s", decided.Status)
	}
	if decided.DecidedAt == nil {
		t.Fatal("expected decided_at to be set")
	}

	// A second decision must not overwrite the first.
	if _, err := mgr.SubmitDecision(ctx, task.ID, "alice", review.DecisionRejected, 5, "changed my mind"); !errors.Is(err, review.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for duplicate decision, got %v", err)
	}

	feedback, err := mgr.Feedback(ctx, task.ID)
	if err != nil {
		t.Fatalf("Feedback: %v", err)
	}
	if len(feedback) != 1 {
		t.Fatalf("expected exactly one feedback record, got %d", len(feedback))
	}
	if feedback[0].Decision != review.DecisionAccepted || feedback[0].Confidence != 4 || feedback[0].Notes != "looks fine" {
		t.Fatalf("unexpected feedback: %+v", feedback[0])
	}
}

func TestSubmitDecisionRequiresInProgress(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	mgr := review.NewManager(st, cfg.Review, logging.NewNop())
	ctx := context.Background()

	task, err := mgr.CreateTask(ctx, "ELEC-WIDGET", "img-1", validation.Result{Overall: 0.72}, 0)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	if _, err := mgr.SubmitDecision(ctx, task.ID, "alice", review.DecisionAccepted, 3, ""); !errors.Is(err, review.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for pending task, got %v", err)
	}
}

func TestSubmitDecisionValidatesArguments(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	mgr := review.NewManager(st, cfg.Review, logging.NewNop())
	ctx := context.Background()

	if _, err := mgr.SubmitDecision(ctx, "any", "alice", review.Decision("maybe"), 3, ""); err == nil {
		t.Fatal("expected error for unknown decision")
	}
	if _, err := mgr.SubmitDecision(ctx, "any", "alice", review.DecisionAccepted, 0, ""); err == nil {
		t.Fatal("expected error for confidence below 1")
	}
	if _, err := mgr.SubmitDecision(ctx, "any", "alice", review.DecisionAccepted, 6, ""); err == nil {
		t.Fatal("expected error for confidence above 5")
	}
}

func TestOperationsOnMissingTask(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	mgr := review.NewManager(st, cfg.Review, logging.NewNop())
	ctx := context.Background()

	if _, err := mgr.Assign(ctx, "no-such-task", "alice"); !errors.Is(err, review.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound from Assign, got %v", err)
	}
	if _, err := mgr.Get(ctx, "no-such-task"); !errors.Is(err, review.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound from Get, got %v", err)
	}
	if _, err := mgr.Release(ctx, "no-such-task"); !errors.Is(err, review.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound from Release, got %v", err)
	}
}

func TestReleaseReturnsTaskToPending(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	mgr := review.NewManager(st, cfg.Review, logging.NewNop())
	ctx := context.Background()

	task, err := mgr.CreateTask(ctx, "ELEC-WIDGET", "img-1", validation.Result{Overall: 0.72}, 0)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	originalDue := task.DueBy

	if _, err := mgr.Assign(ctx, task.ID, "alice"); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	released, err := mgr.Release(ctx, task.ID)
	if err != nil {
		t.Fatalf("Release: %v", err)
	}
	if released.Status != review.StatusPending || released.Assignee != "" {
		t.Fatalf("unexpected released task: %+v", released)
	}
	if !released.DueBy.Equal(originalDue) {
		t.Fatalf("expected due_by unchanged, got %s want %s", released.DueBy, originalDue)
	}

	if _, err := mgr.Release(ctx, task.ID); !errors.Is(err, review.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for pending release, got %v", err)
	}
}

func TestReleaseStaleAssignments(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	mgr := review.NewManager(st, cfg.Review, logging.NewNop())
	ctx := context.Background()

	now := time.Now().UTC()
	stale := testsupport.NewTask(t, st, "SKU-STALE", "img-1", 3, now.Add(24*time.Hour))
	fresh := testsupport.NewTask(t, st, "SKU-FRESH", "img-2", 3, now.Add(24*time.Hour))

	staleSince := now.Add(-time.Duration(cfg.Review.StaleAssignmentHours+1) * time.Hour)
	if _, err := st.AssignTask(ctx, stale.ID, "alice", staleSince); err != nil {
		t.Fatalf("AssignTask stale: %v", err)
	}
	if _, err := st.AssignTask(ctx, fresh.ID, "bob", now); err != nil {
		t.Fatalf("AssignTask fresh: %v", err)
	}

	released, err := mgr.ReleaseStale(ctx)
	if err != nil {
		t.Fatalf("ReleaseStale: %v", err)
	}
	if released != 1 {
		t.Fatalf("expected one stale release, got %d", released)
	}

	reloaded, err := mgr.Get(ctx, stale.ID)
	if err != nil {
		t.Fatalf("Get stale: %v", err)
	}
	if reloaded.Status != review.StatusPending {
		t.Fatalf("expected stale task back to pending, got %s", reloaded.Status)
	}

	held, err := mgr.AssignedTasks(ctx, "bob")
	if err != nil {
		t.Fatalf("AssignedTasks: %v", err)
	}
	if len(held) != 1 || held[0].ID != fresh.ID {
		t.Fatalf("expected fresh assignment untouched, got %+v", held)
	}
}

func TestStatsAndOverdue(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	mgr := review.NewManager(st, cfg.Review, logging.NewNop())
	ctx := context.Background()

	now := time.Now().UTC()
	overdue := testsupport.NewTask(t, st, "SKU-OVERDUE", "img-1", 2, now.Add(-time.Hour))
	testsupport.NewTask(t, st, "SKU-FRESH", "img-2", 3, now.Add(time.Hour))

	tasks, err := mgr.OverdueTasks(ctx)
	if err != nil {
		t.Fatalf("OverdueTasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != overdue.ID {
		t.Fatalf("unexpected overdue tasks: %+v", tasks)
	}

	stats, err := mgr.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 2 || stats.Pending != 2 || stats.Overdue != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
