package cluster

import (
	"sync"
	"time"

	"github.com/dd0wney/cluso-consensus/pkg/crdt"
	"github.com/dd0wney/cluso-consensus/pkg/logging"
	"github.com/dd0wney/cluso-consensus/pkg/metrics"
)

// Engine is the consensus decision engine. It owns every registry and
// per-cluster structure; callers hold a reference and drive it through
// the exported operations. There is no package-level state, so tests
// and embedders construct as many independent engines as they need.
//
// The engine models decision logic only: who wins an election, whether
// an entry is durable once a quorum acknowledges it, how replicas of a
// counter reconcile. No operation performs I/O or blocks; all calls
// are synchronous.
//
// Concurrent Safety:
// 1. A per-cluster mutex serializes elections, appends and proposals
//    on the same cluster; operations on different clusters proceed
//    concurrently
// 2. The engine RWMutex protects the log, cursor, proposal and
//    election maps themselves
// 3. Node and cluster registries carry their own locks and hand out
//    defensive copies
// 4. CRDT instances self-synchronize inside the crdt.Store
type Engine struct {
	nodes    *NodeRegistry
	clusters *ClusterRegistry
	crdts    *crdt.Store

	logs      map[string][]LogEntry        // clusterID -> replicated log
	applied   map[string]map[string]uint64 // clusterID -> nodeID -> entries applied
	proposals map[string]*Proposal         // proposalID -> proposal
	elections map[string]*ElectionResult   // clusterID -> last election outcome
	locks     map[string]*sync.Mutex       // clusterID -> operation lock
	mu        sync.RWMutex                 // Protects the maps above

	winnerPolicy             WinnerPolicy
	defaultElectionTimeout   time.Duration
	defaultHeartbeatInterval time.Duration

	logger          logging.Logger
	metricsRegistry *metrics.Registry
}

// NewEngine creates a consensus engine from the given configuration
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	policy := cfg.WinnerPolicy
	if policy == nil {
		policy = LongestLogPolicy
	}

	return &Engine{
		nodes:                    NewNodeRegistry(cfg.Metrics),
		clusters:                 NewClusterRegistry(cfg.Metrics),
		crdts:                    crdt.NewStoreWith(logger, cfg.Metrics),
		logs:                     make(map[string][]LogEntry),
		applied:                  make(map[string]map[string]uint64),
		proposals:                make(map[string]*Proposal),
		elections:                make(map[string]*ElectionResult),
		locks:                    make(map[string]*sync.Mutex),
		winnerPolicy:             policy,
		defaultElectionTimeout:   cfg.DefaultElectionTimeout,
		defaultHeartbeatInterval: cfg.DefaultHeartbeatInterval,
		logger:                   logger,
		metricsRegistry:          cfg.Metrics,
	}, nil
}

// RegisterNode adds a node to the engine's registry. Role defaults to
// follower and status to online when left at their zero values; term
// starts at 0 unless the caller supplies one.
func (e *Engine) RegisterNode(info NodeInfo) (*NodeInfo, error) {
	node, err := e.nodes.Register(info)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("node registered",
		logging.NodeID(node.ID),
		logging.String("role", node.Role.String()),
		logging.String("status", node.Status.String()))

	return node, nil
}

// GetNode returns a snapshot of a registered node
func (e *Engine) GetNode(nodeID string) (*NodeInfo, error) {
	return e.nodes.Get(nodeID)
}

// ListNodes returns snapshots of all registered nodes, ordered by ID
func (e *Engine) ListNodes() []NodeInfo {
	return e.nodes.List()
}

// SetNodeStatus marks a node online or offline. This is the only
// status transition path; the engine never changes status on its own.
func (e *Engine) SetNodeStatus(nodeID string, status NodeStatus) (*NodeInfo, error) {
	node, err := e.nodes.SetStatus(nodeID, status)
	if err != nil {
		return nil, err
	}

	e.logger.Info("node status changed",
		logging.NodeID(nodeID),
		logging.String("status", status.String()))

	return node, nil
}

// CreateCluster declares a new cluster over the given member IDs.
// Members need not be registered yet; operations resolve them lazily.
func (e *Engine) CreateCluster(spec ClusterSpec) (*ClusterInfo, error) {
	if spec.ElectionTimeout == 0 {
		spec.ElectionTimeout = e.defaultElectionTimeout
	}
	if spec.HeartbeatInterval == 0 {
		spec.HeartbeatInterval = e.defaultHeartbeatInterval
	}

	info, err := e.clusters.Create(spec)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.logs[info.ID] = nil
	cursors := make(map[string]uint64, len(info.Nodes))
	for _, nodeID := range info.Nodes {
		cursors[nodeID] = 0
	}
	e.applied[info.ID] = cursors
	e.mu.Unlock()

	e.logger.Info("cluster created",
		logging.ClusterID(info.ID),
		logging.String("name", info.Name),
		logging.String("protocol", info.Protocol.String()),
		logging.Count(len(info.Nodes)))

	return info, nil
}

// GetCluster returns a snapshot of a cluster
func (e *Engine) GetCluster(clusterID string) (*ClusterInfo, error) {
	return e.clusters.Get(clusterID)
}

// ListClusters returns snapshots of all clusters, ordered by ID
func (e *Engine) ListClusters() []ClusterInfo {
	return e.clusters.List()
}

// CreateCRDT allocates a new replicated counter
func (e *Engine) CreateCRDT(kind crdt.Kind, nodeIDs []string) (crdt.Snapshot, error) {
	return e.crdts.Create(kind, nodeIDs)
}

// GetCRDT returns a snapshot of a counter
func (e *Engine) GetCRDT(crdtID string) (crdt.Snapshot, error) {
	return e.crdts.Get(crdtID)
}

// ListCRDTs returns snapshots of all counters, ordered by ID
func (e *Engine) ListCRDTs() []crdt.Snapshot {
	return e.crdts.List()
}

// CRDTIncrement adds a non-negative amount to a node's contribution
func (e *Engine) CRDTIncrement(crdtID, nodeID string, amount int64) (int64, error) {
	return e.crdts.Increment(crdtID, nodeID, amount)
}

// CRDTDecrement subtracts a non-negative amount via a node's negative
// contribution. Grow-only counters reject this.
func (e *Engine) CRDTDecrement(crdtID, nodeID string, amount int64) (int64, error) {
	return e.crdts.Decrement(crdtID, nodeID, amount)
}

// CRDTValue returns a counter's current value
func (e *Engine) CRDTValue(crdtID string) (int64, error) {
	return e.crdts.Value(crdtID)
}

// MergeCRDTs joins two counters of the same kind into a new registered
// counter; the inputs are left untouched
func (e *Engine) MergeCRDTs(firstID, secondID string) (crdt.Snapshot, error) {
	return e.crdts.Merge(firstID, secondID)
}

// clusterLock returns the operation lock for a cluster, creating it on
// first use
func (e *Engine) clusterLock(clusterID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	lock, exists := e.locks[clusterID]
	if !exists {
		lock = &sync.Mutex{}
		e.locks[clusterID] = lock
	}
	return lock
}
