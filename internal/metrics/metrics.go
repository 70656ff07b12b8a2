package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for rtcheck
type Metrics struct {
	// Translation metrics
	Translations      *prometheus.CounterVec
	TemplateCount     prometheus.Histogram
	UnresolvedQueries prometheus.Counter

	// Model checker metrics
	CheckerRuns     *prometheus.CounterVec
	CheckerDuration *prometheus.HistogramVec

	// Error metrics (by error code from structured errors)
	Errors *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		Translations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rtcheck_translations_total",
				Help: "Total number of model translations",
			},
			[]string{"success"},
		),
		TemplateCount: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "rtcheck_translation_templates",
				Help:    "Number of automaton templates per translated model",
				Buckets: []float64{1, 5, 10, 20, 50, 100, 200},
			},
		),
		UnresolvedQueries: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "rtcheck_unresolved_properties_total",
				Help: "Properties checked through the raw formula fallback",
			},
		),

		CheckerRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rtcheck_checker_runs_total",
				Help: "Total number of model checker invocations by verdict",
			},
			[]string{"status"},
		),
		CheckerDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rtcheck_checker_duration_seconds",
				Help:    "Model checker invocation duration in seconds",
				Buckets: []float64{0.01, 0.1, 0.5, 1.0, 5.0, 30.0, 120.0, 600.0},
			},
			[]string{"status"},
		),

		Errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rtcheck_errors_total",
				Help: "Total number of errors by error code",
			},
			[]string{"error_code", "component"},
		),
	}
}

// RecordTranslation records one translation attempt.
func (m *Metrics) RecordTranslation(success bool, templates, unresolved int) {
	m.Translations.WithLabelValues(boolLabel(success)).Inc()
	if success {
		m.TemplateCount.Observe(float64(templates))
		m.UnresolvedQueries.Add(float64(unresolved))
	}
}

// RecordCheckerRun records one property check.
func (m *Metrics) RecordCheckerRun(status string, seconds float64) {
	m.CheckerRuns.WithLabelValues(status).Inc()
	m.CheckerDuration.WithLabelValues(status).Observe(seconds)
}

// RecordError counts a coded error.
func (m *Metrics) RecordError(code, component string) {
	m.Errors.WithLabelValues(code, component).Inc()
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
