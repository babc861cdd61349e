package orchestrator

import (
	"time"

	"github.com/nanoncore/nano-devctl/types"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the orchestrator's prometheus collectors.
type Metrics struct {
	operations     *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	lockContention *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "devctl_operations_total",
			Help: "Orchestrated operations by outcome. result is \"ok\" or the error kind.",
		}, []string{"capability", "operation", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "devctl_operation_duration_seconds",
			Help:    "Wall time of orchestrated operations.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 60},
		}, []string{"capability", "operation"}),
		lockContention: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "devctl_lock_contention_total",
			Help: "Operations refused because the device lock was held.",
		}, []string{"key"}),
	}
	for _, c := range []prometheus.Collector{m.operations, m.duration, m.lockContention} {
		if err := reg.Register(c); err != nil {
			return nil, types.Wrap(types.KindConfiguration, err, "metrics: register")
		}
	}
	return m, nil
}

func (m *Metrics) observe(capability, operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = types.KindOf(err).String()
	}
	m.operations.WithLabelValues(capability, operation, result).Inc()
	m.duration.WithLabelValues(capability, operation).Observe(time.Since(start).Seconds())
}

func (m *Metrics) contended(key string) {
	if m == nil {
		return
	}
	m.lockContention.WithLabelValues(key).Inc()
}
