package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// NotificationMetrics contains Prometheus metrics for alert push delivery.
type NotificationMetrics struct {
	ProviderDeliveriesTotal  *prometheus.CounterVec   // deliveries by provider and status
	ProviderDeliveryDuration *prometheus.HistogramVec // latency by provider
	ProviderLastSuccessTime  *prometheus.GaugeVec     // timestamp of last success by provider
	ProviderCircuitState     *prometheus.GaugeVec     // 0 closed, 1 half-open, 2 open

	NotificationDispatchTotal prometheus.Counter // alerts accepted by the dispatcher
	NotificationDroppedTotal  prometheus.Counter // alerts dropped because the queue was full
	NotificationQueueDepth    prometheus.Gauge

	registry *prometheus.Registry
}

// NewNotificationMetrics creates a new instance of NotificationMetrics.
func NewNotificationMetrics(registry *prometheus.Registry) (*NotificationMetrics, error) {
	m := &NotificationMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register notification metrics: %w", err)
	}
	return m, nil
}

func (m *NotificationMetrics) initMetrics() {
	m.ProviderDeliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_provider_deliveries_total",
			Help: "Total number of notification delivery attempts by provider and status",
		},
		[]string{"provider", "status"}, // status: success, error, rate_limited
	)

	m.ProviderDeliveryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notification_provider_delivery_duration_seconds",
			Help:    "Time taken for notification delivery by provider",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
		},
		[]string{"provider"},
	)

	m.ProviderLastSuccessTime = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "notification_provider_last_success_timestamp_seconds",
			Help: "Timestamp of last successful notification delivery by provider",
		},
		[]string{"provider"},
	)

	m.ProviderCircuitState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "notification_provider_circuit_state",
			Help: "Circuit breaker state by provider (0=closed, 1=half-open, 2=open)",
		},
		[]string{"provider"},
	)

	m.NotificationDispatchTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notification_dispatch_total",
			Help: "Total number of alerts queued for notification",
		},
	)

	m.NotificationDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notification_dropped_total",
			Help: "Total number of alerts dropped because the notification queue was full",
		},
	)

	m.NotificationQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "notification_queue_depth",
			Help: "Current depth of notification queue",
		},
	)
}

// Collect implements the prometheus.Collector interface.
func (m *NotificationMetrics) Collect(ch chan<- prometheus.Metric) {
	m.ProviderDeliveriesTotal.Collect(ch)
	m.ProviderDeliveryDuration.Collect(ch)
	m.ProviderLastSuccessTime.Collect(ch)
	m.ProviderCircuitState.Collect(ch)
	m.NotificationDispatchTotal.Collect(ch)
	m.NotificationDroppedTotal.Collect(ch)
	m.NotificationQueueDepth.Collect(ch)
}

// Describe implements the prometheus.Collector interface.
func (m *NotificationMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.ProviderDeliveriesTotal.Describe(ch)
	m.ProviderDeliveryDuration.Describe(ch)
	m.ProviderLastSuccessTime.Describe(ch)
	m.ProviderCircuitState.Describe(ch)
	m.NotificationDispatchTotal.Describe(ch)
	m.NotificationDroppedTotal.Describe(ch)
	m.NotificationQueueDepth.Describe(ch)
}

// RecordDelivery records a notification delivery attempt.
func (m *NotificationMetrics) RecordDelivery(provider, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.ProviderDeliveriesTotal.WithLabelValues(provider, status).Inc()
	m.ProviderDeliveryDuration.WithLabelValues(provider).Observe(duration.Seconds())
	if status == StatusSuccess {
		m.ProviderLastSuccessTime.WithLabelValues(provider).SetToCurrentTime()
	}
}

// RecordQueued records an accepted alert and the resulting queue depth.
func (m *NotificationMetrics) RecordQueued(depth int) {
	if m == nil {
		return
	}
	m.NotificationDispatchTotal.Inc()
	m.NotificationQueueDepth.Set(float64(depth))
}

// RecordDropped records an alert dropped on a full queue.
func (m *NotificationMetrics) RecordDropped() {
	if m == nil {
		return
	}
	m.NotificationDroppedTotal.Inc()
}

// SetQueueDepth sets the current queue depth.
func (m *NotificationMetrics) SetQueueDepth(depth int) {
	if m == nil {
		return
	}
	m.NotificationQueueDepth.Set(float64(depth))
}

// SetCircuitState records the circuit breaker state of a provider.
func (m *NotificationMetrics) SetCircuitState(provider string, state int) {
	if m == nil {
		return
	}
	m.ProviderCircuitState.WithLabelValues(provider).Set(float64(state))
}
