package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"prodpipe/internal/config"
)

const userAgent = "prodpipe/0.1.0"

// Service defines the notification surface exposed to pipeline components.
type Service interface {
	NotifyTaskCreated(ctx context.Context, taskID, sku string, priority int) error
	NotifyDecision(ctx context.Context, taskID, sku, reviewer, decision string) error
	NotifyOverdue(ctx context.Context, count int) error
	NotifyStaleReleased(ctx context.Context, count int) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.Topic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:     topic,
		client:       &http.Client{Timeout: timeout},
		reviewEvents: cfg.Notifications.Review,
		slaEvents:    cfg.Notifications.SLA,
		errorEvents:  cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint     string
	client       *http.Client
	reviewEvents bool
	slaEvents    bool
	errorEvents  bool
}

func (n *ntfyService) NotifyTaskCreated(ctx context.Context, taskID, sku string, priority int) error {
	if !n.reviewEvents {
		return nil
	}
	data := payload{
		title:   "prodpipe - Review Task",
		message: fmt.Sprintf("New review task for %s (tier %d)\nTask: %s", sku, priority, taskID),
		tags:    []string{"prodpipe", "review", "created"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyDecision(ctx context.Context, taskID, sku, reviewer, decision string) error {
	if !n.reviewEvents {
		return nil
	}
	data := payload{
		title:   "prodpipe - Decision",
		message: fmt.Sprintf("%s decided %s for %s\nTask: %s", reviewer, decision, sku, taskID),
		tags:    []string{"prodpipe", "review", "decided"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyOverdue(ctx context.Context, count int) error {
	if !n.slaEvents || count == 0 {
		return nil
	}
	data := payload{
		title:    "prodpipe - SLA Breach",
		message:  fmt.Sprintf("%d review tasks are past their SLA deadline", count),
		tags:     []string{"prodpipe", "sla", "overdue"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyStaleReleased(ctx context.Context, count int) error {
	if !n.slaEvents || count == 0 {
		return nil
	}
	data := payload{
		title:   "prodpipe - Assignments Released",
		message: fmt.Sprintf("Released %d stale review assignments back to pending", count),
		tags:    []string{"prodpipe", "sla", "released"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.errorEvents {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "prodpipe - Error",
		message:  builder.String(),
		tags:     []string{"prodpipe", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "prodpipe - Test",
		message:  "Notification system test",
		tags:     []string{"prodpipe", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyTaskCreated(context.Context, string, string, int) error         { return nil }
func (noopService) NotifyDecision(context.Context, string, string, string, string) error { return nil }
func (noopService) NotifyOverdue(context.Context, int) error                             { return nil }
func (noopService) NotifyStaleReleased(context.Context, int) error                       { return nil }
func (noopService) NotifyError(context.Context, error, string) error                     { return nil }
func (noopService) TestNotification(context.Context) error                               { return nil }
