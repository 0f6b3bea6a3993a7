package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/botcraft/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "botcraft"

// Metrics holds the collectors fed by the editor and the execution client.
type Metrics struct {
	registry *prometheus.Registry

	nodeMutations *prometheus.CounterVec
	edgeMutations *prometheus.CounterVec
	runs          *prometheus.CounterVec
	runDuration   prometheus.Histogram
	runsInFlight  prometheus.Gauge
	runGraphSize  prometheus.Histogram
}

// New creates a Metrics set bound to its own registry.
// Pass withRuntime to also export Go runtime and process collectors.
func New(withRuntime bool) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		nodeMutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "node_mutations_total",
				Help:      "Node changes made through the editor.",
			},
			[]string{"op", "kind"},
		),
		edgeMutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "edge_mutations_total",
				Help:      "Edge changes made through the editor.",
			},
			[]string{"op"},
		),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "workflow_runs_total",
				Help:      "Workflow executions by outcome.",
			},
			[]string{"outcome"},
		),
		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "workflow_run_duration_seconds",
				Help:      "Round-trip time of workflow executions.",
				Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
			},
		),
		runsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "workflow_runs_in_flight",
				Help:      "Executions currently awaiting a response.",
			},
		),
		runGraphSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "workflow_run_nodes",
				Help:      "Number of nodes per submitted workflow.",
				Buckets:   prometheus.LinearBuckets(1, 2, 10),
			},
		),
	}

	m.registry.MustRegister(
		m.nodeMutations,
		m.edgeMutations,
		m.runs,
		m.runDuration,
		m.runsInFlight,
		m.runGraphSize,
	)
	if withRuntime {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// EditorHooks returns hooks that count graph mutations.
func (m *Metrics) EditorHooks() domain.EditorHooks {
	node := func(op string) func(*domain.NodeEvent) {
		return func(e *domain.NodeEvent) {
			m.nodeMutations.WithLabelValues(op, e.Kind.String()).Inc()
		}
	}
	edge := func(op string) func(*domain.EdgeEvent) {
		return func(*domain.EdgeEvent) {
			m.edgeMutations.WithLabelValues(op).Inc()
		}
	}
	return domain.EditorHooks{
		OnNodeAdded:   node("add"),
		OnNodeUpdated: node("update"),
		OnNodeRemoved: node("remove"),
		OnEdgeAdded:   edge("add"),
		OnEdgeRemoved: edge("remove"),
	}
}

// RunHooks returns hooks that track executions.
func (m *Metrics) RunHooks() domain.RunHooks {
	return domain.RunHooks{
		OnRunStart: func(_ context.Context, e *domain.RunEvent) {
			m.runsInFlight.Inc()
			m.runGraphSize.Observe(float64(e.Nodes))
		},
		OnRunFinish: func(_ context.Context, e *domain.RunEvent) {
			m.runsInFlight.Dec()
			m.runDuration.Observe(e.Duration.Seconds())
			outcome := "success"
			if e.Error != "" {
				outcome = "error"
			}
			m.runs.WithLabelValues(outcome).Inc()
		},
	}
}
