package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Assistant metrics
	AssistantRequestsTotal     *prometheus.CounterVec
	AssistantDurationSeconds   prometheus.Histogram
	ExtractionFailuresTotal    *prometheus.CounterVec
	ExtractionDurationSeconds  *prometheus.HistogramVec
	AssistantStoreErrorsTotal  *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPDurationSeconds *prometheus.HistogramVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		AssistantRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "ozelders_assistant_requests_total",
				Help: "Total assistant queries by intent source and resolved action",
			},
			[]string{"source", "action"}, // source: llm, rule, none
		),

		AssistantDurationSeconds: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ozelders_assistant_duration_seconds",
				Help:    "End-to-end assistant query duration in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 20}, // LLM path dominates the tail
			},
		),

		ExtractionFailuresTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "ozelders_extraction_failures_total",
				Help: "Total intent extraction failures by provider and reason",
			},
			[]string{"provider", "reason"}, // reason: request, parse, schema
		),

		ExtractionDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ozelders_extraction_duration_seconds",
				Help:    "Model intent extraction duration in seconds by provider",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 15}, // matches extraction timeout
			},
			[]string{"provider"},
		),

		AssistantStoreErrorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "ozelders_assistant_store_errors_total",
				Help: "Total data-store failures during assistant dispatch",
			},
			[]string{"action"},
		),

		HTTPRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "ozelders_http_requests_total",
				Help: "Total HTTP requests by method, path, and status",
			},
			[]string{"method", "path", "status"},
		),

		HTTPDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ozelders_http_duration_seconds",
				Help:    "HTTP request duration in seconds by method and path",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
			},
			[]string{"method", "path"},
		),
	}

	return m
}

// RecordAssistantRequest records a resolved assistant query
func (m *Metrics) RecordAssistantRequest(source, action string) {
	m.AssistantRequestsTotal.WithLabelValues(source, action).Inc()
}

// RecordAssistantDuration records end-to-end assistant query duration
func (m *Metrics) RecordAssistantDuration(duration float64) {
	m.AssistantDurationSeconds.Observe(duration)
}

// RecordExtractionFailure records a failed model extraction attempt
func (m *Metrics) RecordExtractionFailure(provider, reason string) {
	m.ExtractionFailuresTotal.WithLabelValues(provider, reason).Inc()
}

// RecordExtractionDuration records model extraction duration
func (m *Metrics) RecordExtractionDuration(provider string, duration float64) {
	m.ExtractionDurationSeconds.WithLabelValues(provider).Observe(duration)
}

// RecordStoreError records a data-store failure during dispatch
func (m *Metrics) RecordStoreError(action string) {
	m.AssistantStoreErrorsTotal.WithLabelValues(action).Inc()
}

// RecordHTTPRequest records an HTTP request with its duration
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration float64) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPDurationSeconds.WithLabelValues(method, path).Observe(duration)
}
