package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initCRDTMetrics() {
	r.CRDTCountersTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "consensus_crdt_counters_total",
			Help: "Number of live CRDT counters",
		},
	)

	r.CRDTMergesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "consensus_crdt_merges_total",
			Help: "Total number of CRDT merges",
		},
	)

	r.CRDTOperationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "consensus_crdt_operations_total",
			Help: "Total number of CRDT operations",
		},
		[]string{"kind", "operation"}, // gcounter/pncounter, create/increment/decrement
	)
}
