package cluster

import (
	"sort"
	"sync"
	"time"

	"github.com/dd0wney/cluso-consensus/pkg/metrics"
)

// ClusterRegistry tracks all clusters declared against the engine
//
// Concurrent Safety:
// 1. All public methods use RWMutex for thread-safe access
// 2. Read operations (Get, List) use RLock for concurrent reads
// 3. Snapshots deep-copy the member slice; internal structs never escape
type ClusterRegistry struct {
	clusters        map[string]*ClusterInfo // clusterID -> ClusterInfo
	mu              sync.RWMutex            // Protects all fields
	metricsRegistry *metrics.Registry       // Metrics tracking
}

// NewClusterRegistry creates an empty cluster registry
func NewClusterRegistry(metricsRegistry *metrics.Registry) *ClusterRegistry {
	return &ClusterRegistry{
		clusters:        make(map[string]*ClusterInfo),
		metricsRegistry: metricsRegistry,
	}
}

// Create declares a new cluster from a validated spec and assigns it a
// fresh ID. Member node IDs are not checked against the node registry;
// operations that need a node resolve it lazily.
func (cr *ClusterRegistry) Create(spec ClusterSpec) (*ClusterInfo, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	cr.mu.Lock()
	defer cr.mu.Unlock()

	info := &ClusterInfo{
		ID:                newClusterID(),
		Name:              spec.Name,
		Protocol:          spec.Protocol,
		Nodes:             append([]string(nil), spec.Nodes...),
		QuorumSize:        spec.QuorumSize,
		ReplicationFactor: spec.ReplicationFactor,
		CurrentTerm:       0,
		LeaderID:          "",
		ElectionTimeout:   spec.ElectionTimeout,
		HeartbeatInterval: spec.HeartbeatInterval,
		CreatedAt:         time.Now(),
	}
	cr.clusters[info.ID] = info

	if cr.metricsRegistry != nil {
		cr.metricsRegistry.ClustersTotal.Set(float64(len(cr.clusters)))
	}

	snapshot := cloneCluster(info)
	return &snapshot, nil
}

// Get returns a snapshot of a specific cluster
func (cr *ClusterRegistry) Get(clusterID string) (*ClusterInfo, error) {
	cr.mu.RLock()
	defer cr.mu.RUnlock()

	info, exists := cr.clusters[clusterID]
	if !exists {
		return nil, ErrClusterNotFound
	}

	snapshot := cloneCluster(info)
	return &snapshot, nil
}

// List returns snapshots of all clusters, ordered by ID
func (cr *ClusterRegistry) List() []ClusterInfo {
	cr.mu.RLock()
	defer cr.mu.RUnlock()

	clusters := make([]ClusterInfo, 0, len(cr.clusters))
	for _, info := range cr.clusters {
		clusters = append(clusters, cloneCluster(info))
	}

	sort.Slice(clusters, func(i, j int) bool {
		return clusters[i].ID < clusters[j].ID
	})

	return clusters
}

// Count returns the total number of clusters
func (cr *ClusterRegistry) Count() int {
	cr.mu.RLock()
	defer cr.mu.RUnlock()

	return len(cr.clusters)
}

// setLeader installs an election outcome: the new term and leader are
// written together so no reader observes one without the other.
func (cr *ClusterRegistry) setLeader(clusterID string, leaderID string, term uint64) error {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	info, exists := cr.clusters[clusterID]
	if !exists {
		return ErrClusterNotFound
	}

	info.CurrentTerm = term
	info.LeaderID = leaderID
	return nil
}

// cloneCluster returns a deep copy of a cluster
func cloneCluster(c *ClusterInfo) ClusterInfo {
	clusterCopy := *c
	clusterCopy.Nodes = append([]string(nil), c.Nodes...)
	return clusterCopy
}
