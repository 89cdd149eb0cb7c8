// Package observability exports engine lifecycle metrics to Prometheus.
// It plugs into the engine purely through lifecycle hooks; the engine
// core stays metrics-free.
package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/weftlabs/weft/pkg/domain"
)

// Metrics holds the Prometheus collectors for one engine.
type Metrics struct {
	executions *prometheus.CounterVec
	running    prometheus.Gauge
	duration   *prometheus.HistogramVec
	triggers   prometheus.Counter
}

// NewMetrics creates and registers the engine collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		executions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "weft_node_executions_total",
			Help: "Node executions by kind and result.",
		}, []string{"kind", "result"}),
		running: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "weft_nodes_running",
			Help: "Number of node executions currently in flight.",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "weft_node_duration_seconds",
			Help:    "Node execution duration by kind.",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
		triggers: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "weft_trigger_propagations_total",
			Help: "Trigger propagations fired by completed nodes.",
		}),
	}
	reg.MustRegister(m.executions, m.running, m.duration, m.triggers)
	return m
}

// Hooks returns lifecycle hooks feeding the collectors.
// Attach them with weft.WithLifecycleHooks.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeStart: func(_ context.Context, ev *domain.NodeEvent) {
			m.running.Inc()
		},
		OnNodeComplete: func(_ context.Context, ev *domain.NodeEvent) {
			m.running.Dec()
			m.executions.WithLabelValues(ev.Kind, "completed").Inc()
			m.duration.WithLabelValues(ev.Kind).Observe(ev.Duration.Seconds())
		},
		OnNodeFail: func(_ context.Context, ev *domain.NodeEvent) {
			m.running.Dec()
			m.executions.WithLabelValues(ev.Kind, "failed").Inc()
			m.duration.WithLabelValues(ev.Kind).Observe(ev.Duration.Seconds())
		},
		OnTrigger: func(_ context.Context, ev *domain.TriggerEvent) {
			m.triggers.Inc()
		},
	}
}
