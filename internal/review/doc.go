// Package review manages the human review task lifecycle.
//
// Tasks move pending -> in_progress -> one of accepted, rejected, or
// requires_edit; an in_progress task can also be released back to pending.
// Terminal states are immutable. Every transition is a single conditioned
// store update, so concurrent reviewers race safely and exactly one wins.
package review
