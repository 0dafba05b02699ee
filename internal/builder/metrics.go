package builder

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts conversion outcomes.
type Metrics struct {
	extracted *prometheus.CounterVec
	failed    *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewMetrics creates the conversion metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		extracted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bornir_nodes_extracted_total",
			Help: "Operator nodes extracted into the IR graph.",
		}, []string{"format", "op"}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bornir_node_errors_total",
			Help: "Per-node conversion errors by kind.",
		}, []string{"format", "kind"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bornir_build_duration_seconds",
			Help:    "Time spent building one IR graph.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"format"}),
	}
	for _, c := range []prometheus.Collector{m.extracted, m.failed, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) nodeExtracted(format, op string) {
	if m != nil {
		m.extracted.WithLabelValues(format, op).Inc()
	}
}

func (m *Metrics) nodeFailed(format, kind string) {
	if m != nil {
		m.failed.WithLabelValues(format, kind).Inc()
	}
}

func (m *Metrics) observe(format string, start time.Time) {
	if m != nil {
		m.duration.WithLabelValues(format).Observe(time.Since(start).Seconds())
	}
}
