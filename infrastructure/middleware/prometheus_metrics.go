package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/revline/consensus/internal/ports"
)

var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)

// PrometheusMetrics implements the MetricsCollector interface using
// Prometheus. It provides monitoring of batch throughput, per-vehicle
// outcomes, and I/O latency.
type PrometheusMetrics struct {
	vehiclesTotal    *prometheus.CounterVec
	operationLatency *prometheus.HistogramVec
	genericCounters  *prometheus.CounterVec
}

// NewPrometheusMetrics creates a PrometheusMetrics instance and registers
// all metrics with the given registerer. Pass nil to use the default
// registry.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		vehiclesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "consensus_vehicles_total",
				Help: "Vehicles processed by the consensus batch, by outcome.",
			},
			[]string{"status"},
		),
		operationLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "consensus_operation_duration_seconds",
				Help:    "Duration of batch pipeline operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		genericCounters: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "consensus_events_total",
				Help: "Miscellaneous counted events in the consensus batch.",
			},
			[]string{"metric"},
		),
	}
}

// RecordLatency implements the MetricsCollector interface by recording
// operation latency in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordLatency(
	operation string,
	duration time.Duration,
	labels map[string]string,
) {
	pm.operationLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordCounter implements the MetricsCollector interface by incrementing
// Prometheus counters.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	if metric == "consensus_vehicles_total" {
		status, ok := labels["status"]
		if !ok {
			status = "unknown"
		}
		pm.vehiclesTotal.WithLabelValues(status).Add(value)
		return
	}
	pm.genericCounters.WithLabelValues(metric).Add(value)
}
