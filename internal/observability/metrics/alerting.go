// Package metrics provides custom Prometheus metrics for the alert service.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// AlertingMetrics contains Prometheus metrics for threshold evaluation and
// the alert lifecycle. A nil *AlertingMetrics records nothing.
type AlertingMetrics struct {
	evaluationsTotal      *prometheus.CounterVec
	evaluationErrors      *prometheus.CounterVec
	evaluationDuration    prometheus.Histogram
	alertsCreatedTotal    *prometheus.CounterVec
	acknowledgementsTotal *prometheus.CounterVec
	alertsClearedTotal    prometheus.Counter
	thresholdUpdates      *prometheus.CounterVec
	unacknowledgedAlerts  prometheus.Gauge

	registry *prometheus.Registry
}

// NewAlertingMetrics creates and registers alerting metrics.
func NewAlertingMetrics(registry *prometheus.Registry) (*AlertingMetrics, error) {
	m := &AlertingMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register alerting metrics: %w", err)
	}
	return m, nil
}

func (m *AlertingMetrics) initMetrics() {
	m.evaluationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alert_evaluations_total",
			Help: "Total number of submission evaluations by form type and outcome",
		},
		[]string{"form_type", "outcome"},
	)

	m.evaluationErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evaluation_errors_total",
			Help: "Total number of evaluations that failed open, by stage",
		},
		[]string{"stage"}, // stage: threshold_lookup, duplicate_check, insert
	)

	m.evaluationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "alert_evaluation_duration_seconds",
			Help:    "Time taken to evaluate a submission",
			Buckets: prometheus.ExponentialBuckets(BucketStart1ms, BucketFactor2, BucketCount12),
		},
	)

	m.alertsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alerts_created_total",
			Help: "Total number of alerts created by form type",
		},
		[]string{"form_type"},
	)

	m.acknowledgementsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alert_acknowledgements_total",
			Help: "Total number of alerts acknowledged, by mode",
		},
		[]string{"mode"}, // mode: single, bulk
	)

	m.alertsClearedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "alerts_cleared_total",
			Help: "Total number of acknowledged alerts deleted",
		},
	)

	m.thresholdUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threshold_updates_total",
			Help: "Total number of threshold changes by scope and status",
		},
		[]string{"scope", "status"},
	)

	m.unacknowledgedAlerts = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "alerts_unacknowledged",
			Help: "Number of unacknowledged alerts at the last count",
		},
	)
}

func (m *AlertingMetrics) getCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.evaluationsTotal,
		m.evaluationErrors,
		m.evaluationDuration,
		m.alertsCreatedTotal,
		m.acknowledgementsTotal,
		m.alertsClearedTotal,
		m.thresholdUpdates,
		m.unacknowledgedAlerts,
	}
}

// Describe implements the Collector interface
func (m *AlertingMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.getCollectors() {
		collector.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *AlertingMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.getCollectors() {
		collector.Collect(ch)
	}
}

// RecordEvaluation records a finished evaluation.
func (m *AlertingMetrics) RecordEvaluation(formType, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.evaluationsTotal.WithLabelValues(formType, outcome).Inc()
	m.evaluationDuration.Observe(duration.Seconds())
}

// RecordEvaluationError records a storage failure that made an evaluation fail open.
func (m *AlertingMetrics) RecordEvaluationError(stage string) {
	if m == nil {
		return
	}
	m.evaluationErrors.WithLabelValues(stage).Inc()
}

// RecordAlertCreated records a new alert row.
func (m *AlertingMetrics) RecordAlertCreated(formType string) {
	if m == nil {
		return
	}
	m.alertsCreatedTotal.WithLabelValues(formType).Inc()
}

// RecordAcknowledged adds n acknowledged alerts.
func (m *AlertingMetrics) RecordAcknowledged(mode string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.acknowledgementsTotal.WithLabelValues(mode).Add(float64(n))
}

// RecordCleared adds n deleted alerts.
func (m *AlertingMetrics) RecordCleared(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.alertsClearedTotal.Add(float64(n))
}

// RecordThresholdUpdate records a threshold change attempt.
func (m *AlertingMetrics) RecordThresholdUpdate(scope, status string) {
	if m == nil {
		return
	}
	m.thresholdUpdates.WithLabelValues(scope, status).Inc()
}

// SetUnacknowledged sets the open alert gauge.
func (m *AlertingMetrics) SetUnacknowledged(n int64) {
	if m == nil {
		return
	}
	m.unacknowledgedAlerts.Set(float64(n))
}
