package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application
type Registry struct {
	// HTTP Metrics
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	HTTPRequestsInFlight  prometheus.Gauge
	HTTPResponseSizeBytes *prometheus.HistogramVec

	// Membership Metrics
	NodesTotal    prometheus.Gauge
	NodesOnline   prometheus.Gauge
	ClustersTotal prometheus.Gauge

	// Consensus Metrics
	ElectionsTotal      *prometheus.CounterVec
	ElectionDuration    prometheus.Histogram
	ClusterTerm         *prometheus.GaugeVec
	ClusterQuorumHealth *prometheus.GaugeVec
	ClusterLogLength    *prometheus.GaugeVec
	LogAppendsTotal     prometheus.Counter
	ProposalsTotal      *prometheus.CounterVec
	SplitBrainDetected  *prometheus.GaugeVec

	// CRDT Metrics
	CRDTCountersTotal   prometheus.Gauge
	CRDTMergesTotal     prometheus.Counter
	CRDTOperationsTotal *prometheus.CounterVec

	// System Metrics
	UptimeSeconds    prometheus.Gauge
	GoRoutines       prometheus.Gauge
	MemoryAllocBytes prometheus.Gauge
	MemorySysBytes   prometheus.Gauge

	registry *prometheus.Registry
	mu       sync.RWMutex
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	// Initialize all metrics
	r.initHTTPMetrics()
	r.initClusterMetrics()
	r.initCRDTMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
