// Package config loads, normalizes, and validates prodpipe configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// PRODPIPE_NTFY_TOPIC. The Config type centralizes every knob the daemon and
// CLI need: identifier length limits, scoring weights and thresholds, review
// SLA policy, and daemon timing.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors. A
// weight table that sums to zero is rejected here, at startup, rather than
// surfacing as a per-request scoring failure.
package config
