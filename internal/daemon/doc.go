// Package daemon runs prodpiped's background services: the SLA sweeper
// that releases stale assignments and tracks overdue tasks, and the HTTP
// status surface with health probes, queue views, and prometheus metrics.
// A file lock enforces a single instance per data directory.
package daemon
