package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"landed-cost/core/landed"
)

const metricsNamespace = "landed_cost"

// Metrics tracks evaluation metrics.
//
// Metrics:
//   - landed_cost_evaluations_total: evaluations by outcome and risk model
//   - landed_cost_cti: CTI distribution of successful evaluations
//   - landed_cost_coefficient_of_variation: CV distribution in percent
//   - landed_cost_evaluation_duration_seconds: handler-side evaluation time
type Metrics struct {
	evaluations *prometheus.CounterVec
	cti         *prometheus.HistogramVec
	cv          prometheus.Histogram
	duration    prometheus.Histogram
}

// NewMetrics creates and registers evaluation metrics with registry
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "evaluations_total",
				Help:      "Landed-cost evaluations by outcome and risk model",
			},
			[]string{"outcome", "model"},
		),
		cti: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "cti",
				Help:      "Total cost of importation of successful evaluations",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"model"},
		),
		cv: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "coefficient_of_variation",
				Help:      "Coefficient of variation of the CTI in percent",
				Buckets:   []float64{0, 1, 2.5, 5, 10, 15, 25, 50, 100},
			},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "evaluation_duration_seconds",
				Help:      "Time spent normalizing and evaluating one shipment",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8),
			},
		),
	}

	registry.MustRegister(m.evaluations, m.cti, m.cv, m.duration)
	return m
}

// RecordSuccess records a completed evaluation
func (m *Metrics) RecordSuccess(out *landed.Output, elapsed time.Duration) {
	model := out.Model.String()
	m.evaluations.WithLabelValues("success", model).Inc()
	m.cti.WithLabelValues(model).Observe(out.CTI.InexactFloat64())
	m.cv.Observe(out.CoeficienteVariacion.InexactFloat64())
	m.duration.Observe(elapsed.Seconds())
}

// RecordFailure records a rejected evaluation
func (m *Metrics) RecordFailure(model landed.RiskModel, outcome string) {
	label := "unknown"
	if model.Valid() {
		label = model.String()
	}
	m.evaluations.WithLabelValues(outcome, label).Inc()
}
