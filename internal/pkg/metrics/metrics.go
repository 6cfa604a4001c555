// Package metrics provides Prometheus metrics for the embed service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EmbedOperationsTotal tracks repository write/delete operations by outcome
	EmbedOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "embedhub",
			Subsystem: "embeds",
			Name:      "operations_total",
			Help:      "Total number of embed configuration operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	// UploadBytes tracks accepted asset upload sizes
	UploadBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "embedhub",
			Subsystem: "uploads",
			Name:      "bytes",
			Help:      "Size of accepted embed asset uploads in bytes",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 7),
		},
	)

	// EventsLoggedTotal tracks event log writes by sink and outcome
	EventsLoggedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "embedhub",
			Subsystem: "events",
			Name:      "logged_total",
			Help:      "Total number of event log writes by sink and outcome",
		},
		[]string{"sink", "outcome"},
	)

	// HTTPRequestDuration tracks inbound request latency
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "embedhub",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of inbound HTTP requests in seconds",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route", "status"},
	)
)

// RecordEmbedOperation increments the embed operation counter.
func RecordEmbedOperation(operation string, ok bool) {
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	EmbedOperationsTotal.WithLabelValues(operation, outcome).Inc()
}
