package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	identifiersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "prodpipe",
		Subsystem: "identity",
		Name:      "generated_total",
		Help:      "Canonical identifiers generated, labeled by resolution.",
	}, []string{"resolution"})

	validationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "prodpipe",
		Subsystem: "validation",
		Name:      "scored_total",
		Help:      "Images scored, labeled by routing status.",
	}, []string{"status"})

	reviewRoutedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "prodpipe",
		Subsystem: "review",
		Name:      "routed_total",
		Help:      "Images routed to human review.",
	})
)
