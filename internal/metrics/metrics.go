// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors recorded by the interceptors and services.
type Metrics struct {
	registry *prometheus.Registry

	RPCRequests *prometheus.CounterVec
	RPCDuration *prometheus.HistogramVec

	ExpensesCreated      prometheus.Counter
	SettlementsRecorded  prometheus.Counter
	ItemClaims           *prometheus.CounterVec
	SuggestedSettlements prometheus.Histogram
	ReconciledReceipts   prometheus.Counter
}

// New creates the collectors and registers them on a fresh registry
// together with the Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		RPCRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "splitledger",
			Name:      "rpc_requests_total",
			Help:      "RPC calls by procedure and Connect code.",
		}, []string{"procedure", "code"}),
		RPCDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "splitledger",
			Name:      "rpc_duration_seconds",
			Help:      "RPC latency by procedure.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
		ExpensesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "splitledger",
			Name:      "expenses_created_total",
			Help:      "Expenses recorded.",
		}),
		SettlementsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "splitledger",
			Name:      "settlements_recorded_total",
			Help:      "Settlements recorded.",
		}),
		ItemClaims: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "splitledger",
			Name:      "item_claims_total",
			Help:      "Receipt item claim changes by action.",
		}, []string{"action"}),
		SuggestedSettlements: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "splitledger",
			Name:      "suggested_settlements",
			Help:      "Transfers suggested per balance request.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		}),
		ReconciledReceipts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "splitledger",
			Name:      "receipt_reconciliations_total",
			Help:      "Receipt summaries whose rounding drift was absorbed by one member.",
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RPCRequests,
		m.RPCDuration,
		m.ExpensesCreated,
		m.SettlementsRecorded,
		m.ItemClaims,
		m.SuggestedSettlements,
		m.ReconciledReceipts,
	)
	return m
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
