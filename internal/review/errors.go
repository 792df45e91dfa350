package review

import "errors"

var (
	// ErrInvalidTransition indicates an operation that violates the task
	// state machine, including decisions submitted after a task already
	// reached a terminal status.
	ErrInvalidTransition = errors.New("invalid task transition")

	// ErrTaskNotFound indicates the referenced task does not exist.
	ErrTaskNotFound = errors.New("review task not found")
)
