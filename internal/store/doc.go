// Package store persists pipeline state in SQLite.
//
// It holds two concerns behind one connection: the identifier registry,
// where canonical product identifiers are claimed atomically, and the review
// task queue with its feedback log. Lifecycle transitions are plain UPDATE
// statements conditioned on the current status, so concurrent writers race
// safely and exactly one wins. Transient failures surface as ErrUnavailable
// or ErrTimeout for callers that retry.
package store
