package review

import "time"

// Status identifies where a review task sits in its lifecycle.
type Status string

const (
	StatusPending      Status = "pending"
	StatusInProgress   Status = "in_progress"
	StatusAccepted     Status = "accepted"
	StatusRejected     Status = "rejected"
	StatusRequiresEdit Status = "requires_edit"
)

// Terminal reports whether the status ends the task lifecycle. Terminal tasks
// never transition again.
func (s Status) Terminal() bool {
	switch s {
	case StatusAccepted, StatusRejected, StatusRequiresEdit:
		return true
	default:
		return false
	}
}

// Valid reports whether the status is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusAccepted, StatusRejected, StatusRequiresEdit:
		return true
	default:
		return false
	}
}

// Decision is a reviewer's verdict on an image.
type Decision string

const (
	DecisionAccepted     Decision = "accepted"
	DecisionRejected     Decision = "rejected"
	DecisionRequiresEdit Decision = "requires_edit"
)

// Valid reports whether the decision is one of the known verdicts.
func (d Decision) Valid() bool {
	switch d {
	case DecisionAccepted, DecisionRejected, DecisionRequiresEdit:
		return true
	default:
		return false
	}
}

// Status returns the terminal task status a decision resolves to.
func (d Decision) Status() Status {
	switch d {
	case DecisionAccepted:
		return StatusAccepted
	case DecisionRejected:
		return StatusRejected
	case DecisionRequiresEdit:
		return StatusRequiresEdit
	default:
		return ""
	}
}

// Task is a unit of human review work for one product image.
type Task struct {
	ID        string
	SKU       string
	ImageRef  string
	Status    Status
	Priority  int
	Score     float64
	Reasons   []string
	Assignee  string
	CreatedAt time.Time
	UpdatedAt time.Time
	DueBy     time.Time
	DecidedAt *time.Time
}

// Overdue reports whether the task has passed its SLA window without
// reaching a terminal status.
func (t *Task) Overdue(now time.Time) bool {
	if t == nil || t.Status.Terminal() {
		return false
	}
	return now.After(t.DueBy)
}

// PendingFilter narrows a pending-queue listing. Zero values mean no
// constraint.
type PendingFilter struct {
	// Priority restricts the listing to one tier when set to 1..5.
	Priority int
	// Limit caps the number of tasks returned when positive.
	Limit int
}

// Feedback records a reviewer's submitted decision for a task.
type Feedback struct {
	ID         int64
	TaskID     string
	Reviewer   string
	Decision   Decision
	Confidence int
	Notes      string
	CreatedAt  time.Time
}

// Stats aggregates task counts for reporting.
type Stats struct {
	Total        int
	Pending      int
	InProgress   int
	Accepted     int
	Rejected     int
	RequiresEdit int
	Overdue      int
}
