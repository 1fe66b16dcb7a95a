package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initClusterMetrics() {
	r.NodesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "consensus_nodes_total",
			Help: "Total number of registered nodes",
		},
	)

	r.NodesOnline = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "consensus_nodes_online",
			Help: "Number of registered nodes currently online",
		},
	)

	r.ClustersTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "consensus_clusters_total",
			Help: "Total number of declared clusters",
		},
	)

	r.ElectionsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "consensus_elections_total",
			Help: "Total number of leader elections",
		},
		[]string{"result"}, // won, no_quorum
	)

	r.ElectionDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "consensus_election_duration_seconds",
			Help:    "Duration of leader elections in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
	)

	r.ClusterTerm = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "consensus_cluster_term",
			Help: "Current election term per cluster",
		},
		[]string{"cluster_id"},
	)

	r.ClusterQuorumHealth = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "consensus_cluster_quorum_health",
			Help: "Ratio of online members to quorum size per cluster",
		},
		[]string{"cluster_id"},
	)

	r.ClusterLogLength = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "consensus_cluster_log_length",
			Help: "Replicated log length per cluster",
		},
		[]string{"cluster_id"},
	)

	r.LogAppendsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "consensus_log_appends_total",
			Help: "Total number of log append operations",
		},
	)

	r.ProposalsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "consensus_proposals_total",
			Help: "Total number of proposals by outcome",
		},
		[]string{"status"}, // accepted, rejected
	)

	r.SplitBrainDetected = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "consensus_split_brain_detected",
			Help: "Whether a split-brain condition was detected (1=yes, 0=no)",
		},
		[]string{"cluster_id"},
	)
}
