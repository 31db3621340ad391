package graphstore

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts GraphStore traffic. A nil *Metrics records nothing.
type Metrics struct {
	queries  *prometheus.CounterVec
	writes   *prometheus.CounterVec
	degraded *prometheus.CounterVec
}

// NewMetrics registers the GraphStore collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		queries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "insignia_graphstore_queries_total",
			Help: "Edge queries by direction and result",
		}, []string{"direction", "result"}),
		writes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "insignia_graphstore_writes_total",
			Help: "Edge writes by result",
		}, []string{"result"}),
		degraded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "insignia_graphstore_degraded_reads_total",
			Help: "Failed edge queries answered with zero results",
		}, []string{"direction"}),
	}
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) observeQuery(direction string, err error) {
	if m == nil {
		return
	}
	m.queries.WithLabelValues(direction, resultLabel(err)).Inc()
}

func (m *Metrics) observeWrite(err error) {
	if m == nil {
		return
	}
	m.writes.WithLabelValues(resultLabel(err)).Inc()
}

func (m *Metrics) observeDegraded(direction string) {
	if m == nil {
		return
	}
	m.degraded.WithLabelValues(direction).Inc()
}
