// Package logging configures structured logging for the daemon and CLI.
//
// It builds log/slog loggers from application config, writing to stdout and
// optionally a log file, in console or JSON format. Shared field-name
// constants keep keys such as task_id and sku consistent across subsystems.
package logging
