package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"prodpipe/internal/review"
)

const taskColumns = "id, sku, image_ref, status, priority, score, reasons, assignee, created_at, updated_at, due_by, decided_at"

// CreateTask inserts a new review task. The caller supplies the identifier
// and timestamps.
func (s *Store) CreateTask(ctx context.Context, task *review.Task) error {
	if task == nil {
		return errors.New("task is nil")
	}
	reasonsJSON, err := marshalReasons(task.Reasons)
	if err != nil {
		return fmt.Errorf("marshal reasons: %w", err)
	}
	_, err = s.execWithRetry(
		ctx,
		`INSERT INTO review_tasks (
            id, sku, image_ref, status, priority, score, reasons, assignee,
            created_at, updated_at, due_by, decided_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID,
		task.SKU,
		task.ImageRef,
		task.Status,
		task.Priority,
		task.Score,
		reasonsJSON,
		nullableString(task.Assignee),
		task.CreatedAt.UTC().Format(time.RFC3339Nano),
		task.UpdatedAt.UTC().Format(time.RFC3339Nano),
		task.DueBy.UTC().Format(time.RFC3339Nano),
		nullableTime(task.DecidedAt),
	)
	if err != nil {
		return wrapErr("insert review task", err)
	}
	return nil
}

// GetTask fetches a review task by identifier. It returns nil when the task
// does not exist.
func (s *Store) GetTask(ctx context.Context, id string) (*review.Task, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM review_tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr("get review task", err)
	}
	return task, nil
}

// AssignTask moves a pending task to in_progress for the given reviewer.
// The status condition makes the transition atomic; false means the task was
// not pending at the time of the update.
func (s *Store) AssignTask(ctx context.Context, id, reviewer string, now time.Time) (bool, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE review_tasks SET status = ?, assignee = ?, updated_at = ?
         WHERE id = ? AND status = ?`,
		review.StatusInProgress,
		reviewer,
		now.UTC().Format(time.RFC3339Nano),
		id,
		review.StatusPending,
	)
	if err != nil {
		return false, wrapErr("assign review task", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, wrapErr("assign review task", err)
	}
	return affected > 0, nil
}

// ReleaseTask returns an in_progress task to pending and clears its assignee.
// When dueBy is non-nil the SLA deadline is replaced, otherwise the original
// deadline stands.
func (s *Store) ReleaseTask(ctx context.Context, id string, dueBy *time.Time, now time.Time) (bool, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE review_tasks SET status = ?, assignee = NULL, updated_at = ?,
             due_by = COALESCE(?, due_by)
         WHERE id = ? AND status = ?`,
		review.StatusPending,
		now.UTC().Format(time.RFC3339Nano),
		nullableTime(dueBy),
		id,
		review.StatusInProgress,
	)
	if err != nil {
		return false, wrapErr("release review task", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, wrapErr("release review task", err)
	}
	return affected > 0, nil
}

// CompleteTask resolves an in_progress task to a terminal status and records
// the reviewer feedback in the same transaction. The status and assignee
// conditions guarantee exactly one decision wins; false means the task was
// not in_progress under that reviewer when the update ran.
func (s *Store) CompleteTask(ctx context.Context, id string, to review.Status, feedback review.Feedback, now time.Time) (bool, error) {
	if !to.Terminal() {
		return false, fmt.Errorf("complete review task: status %q is not terminal", to)
	}
	ctx = ensureContext(ctx)
	timestamp := now.UTC().Format(time.RFC3339Nano)

	var applied bool
	err := retryOnBusy(ctx, func() error {
		applied = false
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		res, err := tx.ExecContext(
			ctx,
			`UPDATE review_tasks SET status = ?, updated_at = ?, decided_at = ?
             WHERE id = ? AND status = ? AND assignee = ?`,
			to,
			timestamp,
			timestamp,
			id,
			review.StatusInProgress,
			feedback.Reviewer,
		)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return nil
		}

		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO review_feedback (task_id, reviewer, decision, confidence, notes, created_at)
             VALUES (?, ?, ?, ?, ?, ?)`,
			id,
			feedback.Reviewer,
			feedback.Decision,
			feedback.Confidence,
			nullableString(feedback.Notes),
			timestamp,
		); err != nil {
			return err
		}

		if err := tx.Commit(); err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, wrapErr("complete review task", err)
	}
	return applied, nil
}

// ListPending returns pending tasks ordered by priority, then SLA deadline,
// then creation time. The filter optionally narrows to one priority tier and
// caps the listing.
func (s *Store) ListPending(ctx context.Context, filter review.PendingFilter) ([]*review.Task, error) {
	ctx = ensureContext(ctx)
	query := `SELECT ` + taskColumns + ` FROM review_tasks WHERE status = ?`
	args := []any{review.StatusPending}
	if filter.Priority > 0 {
		query += ` AND priority = ?`
		args = append(args, filter.Priority)
	}
	query += ` ORDER BY priority, due_by, created_at`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("list pending tasks", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

// OverdueTasks returns non-terminal tasks whose SLA deadline has passed.
func (s *Store) OverdueTasks(ctx context.Context, now time.Time) ([]*review.Task, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+taskColumns+` FROM review_tasks
         WHERE status IN (?, ?) AND due_by < ?
         ORDER BY due_by, priority`,
		review.StatusPending,
		review.StatusInProgress,
		now.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, wrapErr("list overdue tasks", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

// StaleInProgress returns in_progress tasks not touched since the cutoff.
// The daemon sweeper releases these back to pending.
func (s *Store) StaleInProgress(ctx context.Context, cutoff time.Time) ([]*review.Task, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+taskColumns+` FROM review_tasks
         WHERE status = ? AND updated_at < ?
         ORDER BY updated_at`,
		review.StatusInProgress,
		cutoff.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, wrapErr("list stale tasks", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

// TasksForReviewer returns the in_progress tasks held by a reviewer.
func (s *Store) TasksForReviewer(ctx context.Context, reviewer string) ([]*review.Task, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+taskColumns+` FROM review_tasks
         WHERE assignee = ? AND status = ?
         ORDER BY due_by, created_at`,
		reviewer,
		review.StatusInProgress,
	)
	if err != nil {
		return nil, wrapErr("list reviewer tasks", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

// TaskStats aggregates task counts by status plus the overdue total.
func (s *Store) TaskStats(ctx context.Context, now time.Time) (review.Stats, error) {
	ctx = ensureContext(ctx)
	stats := review.Stats{}

	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM review_tasks GROUP BY status`)
	if err != nil {
		return stats, wrapErr("task stats", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status review.Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return stats, wrapErr("task stats", err)
		}
		stats.Total += count
		switch status {
		case review.StatusPending:
			stats.Pending = count
		case review.StatusInProgress:
			stats.InProgress = count
		case review.StatusAccepted:
			stats.Accepted = count
		case review.StatusRejected:
			stats.Rejected = count
		case review.StatusRequiresEdit:
			stats.RequiresEdit = count
		}
	}
	if err := rows.Err(); err != nil {
		return stats, wrapErr("task stats", err)
	}

	row := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(1) FROM review_tasks WHERE status IN (?, ?) AND due_by < ?`,
		review.StatusPending,
		review.StatusInProgress,
		now.UTC().Format(time.RFC3339Nano),
	)
	if err := row.Scan(&stats.Overdue); err != nil {
		return stats, wrapErr("task stats", err)
	}

	return stats, nil
}

// FeedbackForTask returns all recorded decisions for a task, oldest first.
func (s *Store) FeedbackForTask(ctx context.Context, taskID string) ([]review.Feedback, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, task_id, reviewer, decision, confidence, notes, created_at
         FROM review_feedback WHERE task_id = ? ORDER BY id`,
		taskID,
	)
	if err != nil {
		return nil, wrapErr("list task feedback", err)
	}
	defer rows.Close()

	var feedback []review.Feedback
	for rows.Next() {
		var (
			fb         review.Feedback
			notes      sql.NullString
			createdRaw string
		)
		if err := rows.Scan(&fb.ID, &fb.TaskID, &fb.Reviewer, &fb.Decision, &fb.Confidence, &notes, &createdRaw); err != nil {
			return nil, wrapErr("scan task feedback", err)
		}
		fb.Notes = notes.String
		if created, err := parseTimeString(createdRaw); err == nil {
			fb.CreatedAt = created
		}
		feedback = append(feedback, fb)
	}
	return feedback, rows.Err()
}

func collectTasks(rows *sql.Rows) ([]*review.Task, error) {
	var tasks []*review.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, wrapErr("scan review task", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func scanTask(scanner interface{ Scan(dest ...any) error }) (*review.Task, error) {
	var (
		id         string
		sku        string
		imageRef   string
		statusStr  string
		priority   int
		score      float64
		reasonsRaw sql.NullString
		assignee   sql.NullString
		createdRaw string
		updatedRaw string
		dueByRaw   string
		decidedRaw sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&sku,
		&imageRef,
		&statusStr,
		&priority,
		&score,
		&reasonsRaw,
		&assignee,
		&createdRaw,
		&updatedRaw,
		&dueByRaw,
		&decidedRaw,
	); err != nil {
		return nil, err
	}

	task := &review.Task{
		ID:       id,
		SKU:      sku,
		ImageRef: imageRef,
		Status:   review.Status(statusStr),
		Priority: priority,
		Score:    score,
		Assignee: assignee.String,
	}

	if reasonsRaw.Valid && reasonsRaw.String != "" {
		if err := json.Unmarshal([]byte(reasonsRaw.String), &task.Reasons); err != nil {
			return nil, fmt.Errorf("unmarshal reasons: %w", err)
		}
	}

	if created, err := parseTimeString(createdRaw); err == nil {
		task.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		task.UpdatedAt = updated
	}
	if dueBy, err := parseTimeString(dueByRaw); err == nil {
		task.DueBy = dueBy
	}
	if decidedRaw.Valid {
		if decided, err := parseTimeString(decidedRaw.String); err == nil {
			task.DecidedAt = &decided
		}
	}
	return task, nil
}

func marshalReasons(reasons []string) (any, error) {
	if len(reasons) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(reasons)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
