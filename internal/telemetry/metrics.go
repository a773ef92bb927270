// Package telemetry holds the Prometheus collectors and the OpenTelemetry
// tracer provider used by the HTTP server.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rental_portfolio"

var (
	// Requests counts API requests by route and status class.
	Requests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "API requests by route and status.",
		},
		[]string{"route", "status"},
	)

	// RequestDuration observes handler latency by route.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "API request latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	// Warnings counts warnings attached to analysis results, e.g. a loan that
	// never amortizes or an IRR that could not be determined.
	Warnings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_warnings_total",
			Help:      "Warnings produced while analyzing a portfolio.",
		},
		[]string{"route"},
	)

	// CalculationErrors counts rejected requests by error kind.
	CalculationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calculation_errors_total",
			Help:      "Requests rejected by the analytics engine.",
		},
		[]string{"route", "error_type"},
	)
)

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// StatusClass reduces an HTTP status to 2xx, 4xx or 5xx.
func StatusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
