package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for investigation-level
// observability.
type Metrics struct {
	InvestigationsTotal   *prometheus.CounterVec
	InvestigationDuration prometheus.Histogram

	collectors []prometheus.Collector
	registerer prometheus.Registerer
}

// NewMetrics creates and registers the RCA engine's Prometheus metrics
// against the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	investigationsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rca_investigations_total",
		Help: "Total number of investigations processed, by final status.",
	}, []string{"status"})

	investigationDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "rca_investigation_duration_seconds",
		Help:    "Investigation wall-clock duration in seconds.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12), // 1s .. 2048s (~34min)
	})

	collectors := []prometheus.Collector{investigationsTotal, investigationDuration}
	reg.MustRegister(collectors...)

	return &Metrics{
		InvestigationsTotal:   investigationsTotal,
		InvestigationDuration: investigationDuration,
		collectors:            collectors,
		registerer:            reg,
	}
}

// Unregister removes all metrics from the registry. Must be called before
// re-registering (e.g. between tests) to avoid duplicate-registration
// panics.
func (m *Metrics) Unregister() {
	if m.registerer == nil {
		return
	}
	for _, c := range m.collectors {
		m.registerer.Unregister(c)
	}
}

// RecordInvestigation records one completed investigation's status and
// duration.
func (m *Metrics) RecordInvestigation(status string, durationSeconds float64) {
	m.InvestigationsTotal.WithLabelValues(status).Inc()
	m.InvestigationDuration.Observe(durationSeconds)
}
