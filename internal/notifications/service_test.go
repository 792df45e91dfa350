package notifications_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"prodpipe/internal/notifications"
	"prodpipe/internal/testsupport"
)

type captured struct {
	title    string
	tags     string
	priority string
	body     string
}

func newCaptureServer(t *testing.T, sink *[]captured) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		*sink = append(*sink, captured{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			body:     string(body),
		})
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNotifyTaskCreatedSendsNtfyRequest(t *testing.T) {
	var requests []captured
	server := newCaptureServer(t, &requests)

	cfg := testsupport.NewConfig(t)
	cfg.Notifications.Topic = server.URL
	service := notifications.NewService(cfg)

	if err := service.NotifyTaskCreated(context.Background(), "task-1", "ELEC-WIDGET", 2); err != nil {
		t.Fatalf("NotifyTaskCreated: %v", err)
	}

	if len(requests) != 1 {
		t.Fatalf("expected one request, got %d", len(requests))
	}
	got := requests[0]
	if got.title != "prodpipe - Review Task" {
		t.Fatalf("unexpected title: %q", got.title)
	}
	if !strings.Contains(got.body, "ELEC-WIDGET") || !strings.Contains(got.body, "task-1") {
		t.Fatalf("unexpected body: %q", got.body)
	}
	if !strings.Contains(got.tags, "review") {
		t.Fatalf("unexpected tags: %q", got.tags)
	}
}

func TestNotifyOverdueSkipsZeroCount(t *testing.T) {
	var requests []captured
	server := newCaptureServer(t, &requests)

	cfg := testsupport.NewConfig(t)
	cfg.Notifications.Topic = server.URL
	service := notifications.NewService(cfg)

	if err := service.NotifyOverdue(context.Background(), 0); err != nil {
		t.Fatalf("NotifyOverdue: %v", err)
	}
	if len(requests) != 0 {
		t.Fatalf("expected no requests for zero count, got %d", len(requests))
	}

	if err := service.NotifyOverdue(context.Background(), 3); err != nil {
		t.Fatalf("NotifyOverdue: %v", err)
	}
	if len(requests) != 1 || requests[0].priority != "high" {
		t.Fatalf("expected one high-priority request, got %+v", requests)
	}
}

func TestDisabledEventCategoriesAreSilent(t *testing.T) {
	var requests []captured
	server := newCaptureServer(t, &requests)

	cfg := testsupport.NewConfig(t)
	cfg.Notifications.Topic = server.URL
	cfg.Notifications.Review = false
	service := notifications.NewService(cfg)

	if err := service.NotifyTaskCreated(context.Background(), "task-1", "ELEC-WIDGET", 2); err != nil {
		t.Fatalf("NotifyTaskCreated: %v", err)
	}
	if len(requests) != 0 {
		t.Fatalf("expected disabled category to be silent, got %d requests", len(requests))
	}
}

func TestNoTopicMeansNoop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Notifications.Topic = ""
	service := notifications.NewService(cfg)

	if err := service.NotifyError(context.Background(), io.ErrUnexpectedEOF, "sweeper"); err != nil {
		t.Fatalf("noop NotifyError: %v", err)
	}
	if err := service.TestNotification(context.Background()); err != nil {
		t.Fatalf("noop TestNotification: %v", err)
	}
}

func TestSendSurfacesServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic unknown", http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	cfg := testsupport.NewConfig(t)
	cfg.Notifications.Topic = server.URL
	service := notifications.NewService(cfg)

	err := service.TestNotification(context.Background())
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("expected 404 error, got %v", err)
	}
}
