// Package metrics holds the Prometheus instruments for the qualification pool.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors registered on a dedicated registry.
type Metrics struct {
	registry      *prometheus.Registry
	claims        *prometheus.CounterVec
	escalations   *prometheus.CounterVec
	sweepRuns     *prometheus.CounterVec
	sweepDuration prometheus.Histogram
}

// New registers all collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		claims: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pool_claims_total",
			Help: "Lead claim attempts by path (direct, pool) and outcome code.",
		}, []string{"path", "outcome"}),
		escalations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pool_escalations_total",
			Help: "Leads moved by the escalation sweep, by destination status.",
		}, []string{"to"}),
		sweepRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pool_sweep_runs_total",
			Help: "Escalation sweep runs by result (ok, skipped, error).",
		}, []string{"result"}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pool_sweep_duration_seconds",
			Help:    "Wall time of successful escalation sweeps.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
		}),
	}
	reg.MustRegister(m.claims, m.escalations, m.sweepRuns, m.sweepDuration)
	return m
}

// RecordClaim counts a claim attempt. Safe on a nil receiver.
func (m *Metrics) RecordClaim(path, outcome string) {
	if m == nil {
		return
	}
	m.claims.WithLabelValues(path, outcome).Inc()
}

// RecordSweep counts a sweep run and, when it succeeded, its escalations.
func (m *Metrics) RecordSweep(result string, toPriority, toGeneral int, took time.Duration) {
	if m == nil {
		return
	}
	m.sweepRuns.WithLabelValues(result).Inc()
	if result != "ok" {
		return
	}
	m.escalations.WithLabelValues("in_priority_pool").Add(float64(toPriority))
	m.escalations.WithLabelValues("in_general_pool").Add(float64(toGeneral))
	m.sweepDuration.Observe(took.Seconds())
}

// Claims exposes the claim counters, mainly for tests.
func (m *Metrics) Claims() *prometheus.CounterVec {
	return m.claims
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
