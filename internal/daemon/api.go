package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"prodpipe/internal/logging"
	"prodpipe/internal/review"
)

// Handler returns the daemon's HTTP status surface: liveness and readiness
// probes, prometheus metrics, and a read-only view of the review queue.
func (d *Daemon) Handler() http.Handler {
	router := chi.NewRouter()
	router.Use(metricsMiddleware())

	router.Get("/health/live", d.handleLive)
	router.Get("/health/ready", d.handleReady)
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())
	router.Get("/api/v1/status", d.handleStatus)
	router.Get("/api/v1/review/pending", d.handlePending)
	router.Get("/api/v1/review/overdue", d.handleOverdue)
	router.Get("/api/v1/review/stats", d.handleStats)

	return router
}

// ListenAndServe runs the HTTP surface until the context is canceled, then
// shuts down gracefully.
func (d *Daemon) ListenAndServe(ctx context.Context) error {
	server := &http.Server{
		Addr:         d.cfg.Paths.APIBind,
		Handler:      d.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		d.logger.Info("http surface listening", logging.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

type taskJSON struct {
	ID        string     `json:"id"`
	SKU       string     `json:"sku"`
	ImageRef  string     `json:"image_ref"`
	Status    string     `json:"status"`
	Priority  int        `json:"priority"`
	Score     float64    `json:"score"`
	Reasons   []string   `json:"reasons,omitempty"`
	Assignee  string     `json:"assignee,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	DueBy     time.Time  `json:"due_by"`
	Overdue   bool       `json:"overdue"`
	DecidedAt *time.Time `json:"decided_at,omitempty"`
}

func toTaskJSON(task *review.Task, now time.Time) taskJSON {
	return taskJSON{
		ID:        task.ID,
		SKU:       task.SKU,
		ImageRef:  task.ImageRef,
		Status:    string(task.Status),
		Priority:  task.Priority,
		Score:     task.Score,
		Reasons:   task.Reasons,
		Assignee:  task.Assignee,
		CreatedAt: task.CreatedAt,
		DueBy:     task.DueBy,
		Overdue:   task.Overdue(now),
		DecidedAt: task.DecidedAt,
	}
}

func (d *Daemon) handleLive(w http.ResponseWriter, r *http.Request) {
	d.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (d *Daemon) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := d.store.Ping(r.Context()); err != nil {
		d.writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}
	d.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (d *Daemon) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := d.Status(r.Context())
	d.writeJSON(w, http.StatusOK, map[string]any{
		"running":     status.Running,
		"identifiers": status.Identifiers,
		"db_path":     status.DBPath,
		"lock_file":   status.LockFilePath,
		"stats": map[string]int{
			"total":       status.Stats.Total,
			"pending":     status.Stats.Pending,
			"in_progress": status.Stats.InProgress,
			"overdue":     status.Stats.Overdue,
		},
	})
}

func (d *Daemon) handlePending(w http.ResponseWriter, r *http.Request) {
	var filter review.PendingFilter
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			d.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		filter.Limit = parsed
	}
	if raw := r.URL.Query().Get("priority"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 5 {
			d.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid priority"})
			return
		}
		filter.Priority = parsed
	}

	tasks, err := d.reviews.ListPending(r.Context(), filter)
	if err != nil {
		d.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	now := time.Now().UTC()
	payload := make([]taskJSON, 0, len(tasks))
	for _, task := range tasks {
		payload = append(payload, toTaskJSON(task, now))
	}
	d.writeJSON(w, http.StatusOK, map[string]any{"tasks": payload})
}

func (d *Daemon) handleOverdue(w http.ResponseWriter, r *http.Request) {
	tasks, err := d.reviews.OverdueTasks(r.Context())
	if err != nil {
		d.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	now := time.Now().UTC()
	payload := make([]taskJSON, 0, len(tasks))
	for _, task := range tasks {
		payload = append(payload, toTaskJSON(task, now))
	}
	d.writeJSON(w, http.StatusOK, map[string]any{"tasks": payload})
}

func (d *Daemon) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := d.reviews.Stats(r.Context())
	if err != nil {
		d.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	d.writeJSON(w, http.StatusOK, map[string]int{
		"total":         stats.Total,
		"pending":       stats.Pending,
		"in_progress":   stats.InProgress,
		"accepted":      stats.Accepted,
		"rejected":      stats.Rejected,
		"requires_edit": stats.RequiresEdit,
		"overdue":       stats.Overdue,
	})
}

func (d *Daemon) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		d.logger.Warn("encode response failed", logging.Error(err))
	}
}
