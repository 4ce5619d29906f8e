// Package metrics implements Prometheus metrics for the simulation
// harness and message bus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TicksTotal counts completed simulation ticks.
	TicksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hydromas_ticks_total",
			Help: "Total number of simulation ticks completed",
		},
	)

	// TickDurationSeconds measures wall-clock time spent per tick.
	TickDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hydromas_tick_duration_seconds",
			Help:    "Wall-clock duration of a single simulation tick",
			Buckets: prometheus.ExponentialBuckets(0.00001, 2, 16),
		},
	)

	// ComponentsGauge tracks the number of physical components owned by
	// the running harness.
	ComponentsGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hydromas_components",
			Help: "Number of physical components in the running scenario",
		},
	)

	// AgentsGauge tracks the number of agents owned by the running
	// harness.
	AgentsGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hydromas_agents",
			Help: "Number of agents in the running scenario",
		},
	)

	// OptimizerFailuresTotal counts MPC/identification optimizer
	// non-convergences, by subsystem.
	OptimizerFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hydromas_optimizer_failures_total",
			Help: "Total number of optimizer non-convergences",
		},
		[]string{"subsystem"},
	)

	// AnomalyAlertsTotal counts anomaly alerts raised, by type.
	AnomalyAlertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hydromas_anomaly_alerts_total",
			Help: "Total number of anomaly alerts raised",
		},
		[]string{"anomaly_type"},
	)
)

// ObserveTick records the duration of one completed tick.
func ObserveTick(seconds float64) {
	TicksTotal.Inc()
	TickDurationSeconds.Observe(seconds)
}

// SetComponentCount updates the components gauge.
func SetComponentCount(n int) {
	ComponentsGauge.Set(float64(n))
}

// SetAgentCount updates the agents gauge.
func SetAgentCount(n int) {
	AgentsGauge.Set(float64(n))
}

// RecordOptimizerFailure increments the optimizer failure counter for a
// subsystem ("mpc" or "identification").
func RecordOptimizerFailure(subsystem string) {
	OptimizerFailuresTotal.WithLabelValues(subsystem).Inc()
}

// RecordAnomalyAlert increments the anomaly alert counter for a type.
func RecordAnomalyAlert(anomalyType string) {
	AnomalyAlertsTotal.WithLabelValues(anomalyType).Inc()
}
