// Package metrics defines the Prometheus metrics for the extraction
// pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Semantic extraction metrics
	SemanticRequestsTotal   *prometheus.CounterVec
	SemanticDurationSeconds *prometheus.HistogramVec

	// Cache metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Fallback metrics
	RuleFallbacksTotal *prometheus.CounterVec

	// Run metrics
	RunDurationSeconds prometheus.Histogram
	RunCells           prometheus.Histogram
	CoursesExtracted   *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestsTotal *prometheus.CounterVec
	HTTPErrorsTotal   *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		SemanticRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "schedulellm_semantic_requests_total",
				Help: "Total number of semantic extraction requests by provider, model, and status",
			},
			[]string{"provider", "model", "status"}, // status: success, failure, exception
		),

		SemanticDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "schedulellm_semantic_duration_seconds",
				Help:    "Semantic extraction duration in seconds by provider",
				Buckets: []float64{0.25, 0.5, 1, 2, 3, 5, 10, 20, 30}, // 3s marks the slow-cell threshold
			},
			[]string{"provider"},
		),

		CacheHitsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "schedulellm_cache_hits_total",
				Help: "Total number of cache hits by cache kind",
			},
			[]string{"cache"}, // cache: semantic, cell
		),

		CacheMissesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "schedulellm_cache_misses_total",
				Help: "Total number of cache misses by cache kind",
			},
			[]string{"cache"},
		),

		RuleFallbacksTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "schedulellm_rule_fallbacks_total",
				Help: "Total number of rule-based fallbacks by outcome",
			},
			[]string{"outcome"}, // outcome: recovered, empty
		),

		RunDurationSeconds: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "schedulellm_run_duration_seconds",
				Help:    "Full extraction run duration in seconds",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
			},
		),

		RunCells: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "schedulellm_run_cells",
				Help:    "Number of unique cells processed per run",
				Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
			},
		),

		CoursesExtracted: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "schedulellm_courses_extracted_total",
				Help: "Total number of courses extracted by source",
			},
			[]string{"source"}, // source: semantic, rules
		),

		HTTPRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "schedulellm_http_requests_total",
				Help: "Total HTTP requests by route and status code",
			},
			[]string{"route", "status"},
		),

		HTTPErrorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "schedulellm_http_errors_total",
				Help: "Total HTTP errors by type",
			},
			[]string{"error_type"}, // error_type: bad_request, busy, internal
		),
	}

	return m
}

// RecordSemanticRequest records one semantic API call.
func (m *Metrics) RecordSemanticRequest(provider, model, status string, duration float64) {
	m.SemanticRequestsTotal.WithLabelValues(provider, model, status).Inc()
	m.SemanticDurationSeconds.WithLabelValues(provider).Observe(duration)
}

// RecordCacheHit records a cache hit.
func (m *Metrics) RecordCacheHit(cache string) {
	m.CacheHitsTotal.WithLabelValues(cache).Inc()
}

// RecordCacheMiss records a cache miss.
func (m *Metrics) RecordCacheMiss(cache string) {
	m.CacheMissesTotal.WithLabelValues(cache).Inc()
}

// RecordRuleFallback records a rule-based fallback and whether it recovered courses.
func (m *Metrics) RecordRuleFallback(recovered bool) {
	outcome := "empty"
	if recovered {
		outcome = "recovered"
	}
	m.RuleFallbacksTotal.WithLabelValues(outcome).Inc()
}

// RecordRun records the shape of one finished run.
func (m *Metrics) RecordRun(cells int, duration float64) {
	m.RunCells.Observe(float64(cells))
	m.RunDurationSeconds.Observe(duration)
}

// RecordCoursesExtracted adds to the per-source course counter.
func (m *Metrics) RecordCoursesExtracted(source string, n int) {
	if n > 0 {
		m.CoursesExtracted.WithLabelValues(source).Add(float64(n))
	}
}

// RecordHTTPRequest records one handled HTTP request.
func (m *Metrics) RecordHTTPRequest(route, status string) {
	m.HTTPRequestsTotal.WithLabelValues(route, status).Inc()
}

// RecordHTTPError records an HTTP error by type.
func (m *Metrics) RecordHTTPError(errorType string) {
	m.HTTPErrorsTotal.WithLabelValues(errorType).Inc()
}
