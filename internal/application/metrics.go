package application

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "ngc"

type poolMetrics struct {
	connections      *prometheus.GaugeVec
	connectionOpens  *prometheus.CounterVec
	sessions         *prometheus.CounterVec
	executeDurations *prometheus.HistogramVec
}

// newPoolMetrics registers with reg. A nil reg creates unregistered collectors.
func newPoolMetrics(reg prometheus.Registerer) *poolMetrics {
	factory := promauto.With(reg)

	return &poolMetrics{
		connections: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "pool_connections",
			Help:      "Open pool connections by state.",
		}, []string{"state"}),
		connectionOpens: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "pool_connection_opens_total",
			Help:      "Connection attempts by server address and outcome.",
		}, []string{"address", "outcome"}),
		sessions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "pool_sessions_total",
			Help:      "Session requests by outcome.",
		}, []string{"outcome"}),
		executeDurations: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "session_execute_duration_seconds",
			Help:      "Time spent executing statements, including the network round trip.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
	}
}

func (m *poolMetrics) setConnections(idle, borrowed int) {
	m.connections.WithLabelValues("idle").Set(float64(idle))
	m.connections.WithLabelValues("borrowed").Set(float64(borrowed))
}
