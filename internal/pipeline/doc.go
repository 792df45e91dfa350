// Package pipeline orchestrates product ingestion: identifier assignment,
// image quality scoring, and routing into the human review queue.
package pipeline
