// Package notifications sends push notifications for review and SLA events
// through an ntfy-compatible endpoint. With no topic configured every call
// is a cheap noop.
package notifications
