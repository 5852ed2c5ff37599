// Package metrics exposes tree and HTTP metrics on a private prometheus registry.
package metrics

import (
	"net/http"

	"github.com/brettbedarf/treefs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "treefs"

// Metrics implements [treefs.Recorder] and records HTTP traffic.
type Metrics struct {
	registry *prometheus.Registry

	OpsTotal    *prometheus.CounterVec
	OpDuration  *prometheus.HistogramVec
	TreeNodes   prometheus.Gauge
	HTTPTotal   *prometheus.CounterVec
	HTTPLatency *prometheus.HistogramVec
}

// New registers every collector on a fresh registry so multiple instances
// (i.e. in tests) never collide.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		OpsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Tree operations by name and outcome kind",
			},
			[]string{"op", "outcome"},
		),
		OpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Tree operation duration in seconds",
				Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"op"},
		),
		TreeNodes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "tree_nodes",
				Help:      "Number of nodes in the cached tree, root included",
			},
		),
		HTTPTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}
	reg.MustRegister(
		m.OpsTotal, m.OpDuration, m.TreeNodes, m.HTTPTotal, m.HTTPLatency,
		collectors.NewGoCollector(),
	)
	return m
}

var _ treefs.Recorder = (*Metrics)(nil)

// ObserveOp counts op under "ok" or the kind of err.
func (m *Metrics) ObserveOp(op string, seconds float64, err error) {
	outcome := "ok"
	if err != nil {
		outcome = treefs.KindOf(err).String()
	}
	m.OpsTotal.WithLabelValues(op, outcome).Inc()
	m.OpDuration.WithLabelValues(op).Observe(seconds)
}

func (m *Metrics) SetNodeCount(n int) {
	m.TreeNodes.Set(float64(n))
}

func (m *Metrics) ObserveHTTP(method, path, status string, seconds float64) {
	m.HTTPTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPLatency.WithLabelValues(method, path).Observe(seconds)
}

// Registry exposes the underlying registry (i.e. for testutil)
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
