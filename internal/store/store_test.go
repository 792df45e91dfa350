package store_test

import (
	"context"
	"testing"
	"time"

	"prodpipe/internal/review"
	"prodpipe/internal/testsupport"
)

func TestReserveAndLookupOwner(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	inserted, err := st.Reserve(ctx, "ELEC-WIDGET", "owner-a")
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if !inserted {
		t.Fatal("expected first reserve to insert")
	}

	inserted, err = st.Reserve(ctx, "ELEC-WIDGET", "owner-b")
	if err != nil {
		t.Fatalf("Reserve duplicate: %v", err)
	}
	if inserted {
		t.Fatal("expected duplicate reserve to report conflict")
	}

	owner, found, err := st.LookupOwner(ctx, "ELEC-WIDGET")
	if err != nil {
		t.Fatalf("LookupOwner: %v", err)
	}
	if !found || owner != "owner-a" {
		t.Fatalf("unexpected owner: found=%v owner=%q", found, owner)
	}

	if _, found, err := st.LookupOwner(ctx, "ELEC-MISSING"); err != nil || found {
		t.Fatalf("expected miss, got found=%v err=%v", found, err)
	}

	count, err := st.CountIdentifiers(ctx)
	if err != nil {
		t.Fatalf("CountIdentifiers: %v", err)
	}
	if count != 1 {
		t.Fatalf("unexpected identifier count: %d", count)
	}
}

func TestTaskLifecycleWithFeedback(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	dueBy := time.Now().UTC().Add(48 * time.Hour)
	task := testsupport.NewTask(t, st, "ELEC-WIDGET", "s3://images/widget-1.jpg", 3, dueBy)

	loaded, err := st.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if loaded == nil || loaded.Status != review.StatusPending {
		t.Fatalf("unexpected loaded task: %+v", loaded)
	}
	if len(loaded.Reasons) != 1 || loaded.Reasons[0] != "blur" {
		t.Fatalf("unexpected reasons: %v", loaded.Reasons)
	}

	now := time.Now().UTC()
	applied, err := st.AssignTask(ctx, task.ID, "alice", now)
	if err != nil {
		t.Fatalf("AssignTask: %v", err)
	}
	if !applied {
		t.Fatal("expected assignment to apply")
	}

	applied, err = st.AssignTask(ctx, task.ID, "bob", now)
	if err != nil {
		t.Fatalf("AssignTask second: %v", err)
	}
	if applied {
		t.Fatal("expected second assignment to fail on status condition")
	}

	feedback := review.Feedback{
		Reviewer:   "alice",
		Decision:   review.DecisionAccepted,
		Confidence: 4,
		Notes:      "clean background",
	}
	applied, err = st.CompleteTask(ctx, task.ID, review.StatusAccepted, feedback, now)
	if err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	if !applied {
		t.Fatal("expected completion to apply")
	}

	applied, err = st.CompleteTask(ctx, task.ID, review.StatusRejected, feedback, now)
	if err != nil {
		t.Fatalf("CompleteTask repeat: %v", err)
	}
	if applied {
		t.Fatal("expected repeated completion to fail on status condition")
	}

	loaded, err = st.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTask after complete: %v", err)
	}
	if loaded.Status != review.StatusAccepted {
		t.Fatalf("unexpected status: %s", loaded.Status)
	}
	if loaded.DecidedAt == nil {
		t.Fatal("expected decided_at to be set")
	}

	records, err := st.FeedbackForTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("FeedbackForTask: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one feedback record, got %d", len(records))
	}
	if records[0].Reviewer != "alice" || records[0].Decision != review.DecisionAccepted || records[0].Confidence != 4 {
		t.Fatalf("unexpected feedback: %+v", records[0])
	}
}

func TestCompleteTaskRequiresAssignedReviewer(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	now := time.Now().UTC()

	task := testsupport.NewTask(t, st, "ELEC-WIDGET", "s3://images/widget-1.jpg", 3, now.Add(time.Hour))
	if _, err := st.AssignTask(ctx, task.ID, "alice", now); err != nil {
		t.Fatalf("AssignTask: %v", err)
	}

	applied, err := st.CompleteTask(ctx, task.ID, review.StatusRejected, review.Feedback{
		Reviewer:   "mallory",
		Decision:   review.DecisionRejected,
		Confidence: 5,
	}, now)
	if err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	if applied {
		t.Fatal("expected completion by non-assignee to fail")
	}

	if records, err := st.FeedbackForTask(ctx, task.ID); err != nil || len(records) != 0 {
		t.Fatalf("expected no feedback records, got %d err=%v", len(records), err)
	}
}

func TestReleaseTaskKeepsOrExtendsDeadline(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	now := time.Now().UTC()
	originalDue := now.Add(2 * time.Hour).Truncate(time.Millisecond)

	task := testsupport.NewTask(t, st, "ELEC-WIDGET", "s3://images/widget-1.jpg", 2, originalDue)
	if _, err := st.AssignTask(ctx, task.ID, "alice", now); err != nil {
		t.Fatalf("AssignTask: %v", err)
	}

	applied, err := st.ReleaseTask(ctx, task.ID, nil, now)
	if err != nil {
		t.Fatalf("ReleaseTask: %v", err)
	}
	if !applied {
		t.Fatal("expected release to apply")
	}

	loaded, err := st.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if loaded.Status != review.StatusPending || loaded.Assignee != "" {
		t.Fatalf("unexpected task after release: %+v", loaded)
	}
	if !loaded.DueBy.Equal(originalDue) {
		t.Fatalf("expected due_by unchanged, got %s want %s", loaded.DueBy, originalDue)
	}

	if _, err := st.AssignTask(ctx, task.ID, "bob", now); err != nil {
		t.Fatalf("AssignTask after release: %v", err)
	}
	extended := now.Add(8 * time.Hour).Truncate(time.Millisecond)
	if _, err := st.ReleaseTask(ctx, task.ID, &extended, now); err != nil {
		t.Fatalf("ReleaseTask with extension: %v", err)
	}
	loaded, err = st.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if !loaded.DueBy.Equal(extended) {
		t.Fatalf("expected extended due_by, got %s want %s", loaded.DueBy, extended)
	}
}

func TestListPendingOrdersByPriorityThenDeadline(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	now := time.Now().UTC()

	late := testsupport.NewTask(t, st, "SKU-LATE", "img-late", 2, now.Add(10*time.Hour))
	urgent := testsupport.NewTask(t, st, "SKU-URGENT", "img-urgent", 1, now.Add(20*time.Hour))
	soon := testsupport.NewTask(t, st, "SKU-SOON", "img-soon", 2, now.Add(1*time.Hour))

	tasks, err := st.ListPending(ctx, review.PendingFilter{})
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(tasks))
	}
	got := []string{tasks[0].ID, tasks[1].ID, tasks[2].ID}
	want := []string{urgent.ID, soon.ID, late.ID}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected order at %d: got %v want %v", i, got, want)
		}
	}

	limited, err := st.ListPending(ctx, review.PendingFilter{Limit: 1})
	if err != nil {
		t.Fatalf("ListPending limited: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != urgent.ID {
		t.Fatalf("unexpected limited result: %+v", limited)
	}

	tier, err := st.ListPending(ctx, review.PendingFilter{Priority: 2})
	if err != nil {
		t.Fatalf("ListPending tier: %v", err)
	}
	if len(tier) != 2 || tier[0].ID != soon.ID || tier[1].ID != late.ID {
		t.Fatalf("unexpected tier result: %+v", tier)
	}
}

func TestOverdueAndStaleQueries(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	now := time.Now().UTC()

	overdue := testsupport.NewTask(t, st, "SKU-OVERDUE", "img-1", 3, now.Add(-time.Hour))
	testsupport.NewTask(t, st, "SKU-FRESH", "img-2", 3, now.Add(time.Hour))

	held := testsupport.NewTask(t, st, "SKU-HELD", "img-3", 3, now.Add(time.Hour))
	if _, err := st.AssignTask(ctx, held.ID, "alice", now.Add(-3*time.Hour)); err != nil {
		t.Fatalf("AssignTask: %v", err)
	}

	overdueTasks, err := st.OverdueTasks(ctx, now)
	if err != nil {
		t.Fatalf("OverdueTasks: %v", err)
	}
	if len(overdueTasks) != 1 || overdueTasks[0].ID != overdue.ID {
		t.Fatalf("unexpected overdue tasks: %+v", overdueTasks)
	}

	stale, err := st.StaleInProgress(ctx, now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("StaleInProgress: %v", err)
	}
	if len(stale) != 1 || stale[0].ID != held.ID {
		t.Fatalf("unexpected stale tasks: %+v", stale)
	}

	stats, err := st.TaskStats(ctx, now)
	if err != nil {
		t.Fatalf("TaskStats: %v", err)
	}
	if stats.Total != 3 || stats.Pending != 2 || stats.InProgress != 1 || stats.Overdue != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
