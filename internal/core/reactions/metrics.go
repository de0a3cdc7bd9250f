package reactions

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records reconciler outcomes by operation and structured error code
type Metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	drift      prometheus.Counter
}

// NewMetrics registers the reconciler collectors on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tuiter",
			Subsystem: "reaction",
			Name:      "operations_total",
			Help:      "Reaction operations by op and result code.",
		}, []string{"op", "code"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tuiter",
			Subsystem: "reaction",
			Name:      "operation_duration_seconds",
			Help:      "Latency of mutating reaction operations, including the store transaction.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		drift: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "tuiter",
			Subsystem: "reaction",
			Name:      "counter_drift_total",
			Help:      "Like counters found out of sync with the reaction records and repaired.",
		}),
	}
}

func (m *Metrics) observe(op string, err error, started time.Time) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op, ErrorCode(err)).Inc()
	m.duration.WithLabelValues(op).Observe(time.Since(started).Seconds())
}

func (m *Metrics) driftRepaired() {
	if m == nil {
		return
	}
	m.drift.Inc()
}
