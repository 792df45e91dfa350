package daemon

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sweepsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "prodpipe",
		Subsystem: "daemon",
		Name:      "sweeps_total",
		Help:      "SLA sweeper iterations.",
	})

	staleReleasedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "prodpipe",
		Subsystem: "review",
		Name:      "stale_released_total",
		Help:      "Stale in-progress assignments released back to pending.",
	})

	pendingGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "prodpipe",
		Subsystem: "review",
		Name:      "pending_tasks",
		Help:      "Review tasks currently pending.",
	})

	inProgressGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "prodpipe",
		Subsystem: "review",
		Name:      "in_progress_tasks",
		Help:      "Review tasks currently assigned.",
	})

	overdueGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "prodpipe",
		Subsystem: "review",
		Name:      "overdue_tasks",
		Help:      "Non-terminal review tasks past their SLA deadline.",
	})

	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "prodpipe",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests served by the status surface.",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "prodpipe",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})
)

// metricsMiddleware records request counts and latencies per endpoint.
func metricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			path := normalizePath(r.URL.Path)

			wrapped := &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
			httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}

type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *metricsResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *metricsResponseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// normalizePath keeps metric label cardinality bounded.
func normalizePath(path string) string {
	switch path {
	case "/health/live", "/health/ready", "/metrics", "/api/v1/status",
		"/api/v1/review/pending", "/api/v1/review/overdue", "/api/v1/review/stats":
		return path
	}
	return "other"
}
