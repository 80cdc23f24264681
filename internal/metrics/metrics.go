// Package metrics owns the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const prefix = "jewelpos"

var (
	// HTTP request metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Sales by outcome: completed, or the error code that rejected the sale
	SalesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_sales_total",
			Help: "Sale attempts by outcome",
		},
		[]string{"outcome"},
	)

	OrnamentsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_ornaments_created_total",
			Help: "Ornaments registered, by type",
		},
		[]string{"type"},
	)

	JobsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_jobs_processed_total",
			Help: "Background jobs processed, by queue and result",
		},
		[]string{"queue", "result"},
	)

	GoldPriceFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_gold_price_fallbacks_total",
			Help: "Gold price requests answered with the default price",
		},
	)
)

// RecordSale increments the sale counter for outcome.
func RecordSale(outcome string) {
	SalesTotal.WithLabelValues(outcome).Inc()
}

// RecordOrnament increments the created-ornament counter for a type.
func RecordOrnament(ornamentType string) {
	OrnamentsCreated.WithLabelValues(ornamentType).Inc()
}

// RecordJob increments the job counter.
func RecordJob(queue, result string) {
	JobsProcessed.WithLabelValues(queue, result).Inc()
}
