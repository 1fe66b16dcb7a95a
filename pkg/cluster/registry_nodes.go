package cluster

import (
	"sort"
	"sync"
	"time"

	"github.com/dd0wney/cluso-consensus/pkg/metrics"
)

// NodeRegistry tracks all nodes known to the engine
//
// Concurrent Safety:
// 1. All public methods use RWMutex for thread-safe access
// 2. Read operations (Get, List, Members) use RLock for concurrent reads
// 3. Write operations (Register, SetStatus) use Lock
// 4. Snapshots are defensive copies; internal structs never escape
type NodeRegistry struct {
	nodes           map[string]*NodeInfo // nodeID -> NodeInfo
	mu              sync.RWMutex         // Protects all fields
	metricsRegistry *metrics.Registry    // Metrics tracking
}

// NewNodeRegistry creates an empty node registry
func NewNodeRegistry(metricsRegistry *metrics.Registry) *NodeRegistry {
	return &NodeRegistry{
		nodes:           make(map[string]*NodeInfo),
		metricsRegistry: metricsRegistry,
	}
}

// Register adds a node to the registry. Node IDs are unique; a second
// registration under the same ID is rejected, never treated as an
// update. Returns a snapshot of the stored node.
func (nr *NodeRegistry) Register(info NodeInfo) (*NodeInfo, error) {
	if info.ID == "" {
		return nil, ErrInvalidNodeID
	}

	nr.mu.Lock()
	defer nr.mu.Unlock()

	if _, exists := nr.nodes[info.ID]; exists {
		return nil, ErrDuplicateNode
	}

	// Make a copy to avoid external mutations
	nodeCopy := info
	nodeCopy.Metadata = copyMetadata(info.Metadata)
	nodeCopy.RegisteredAt = time.Now()
	nr.nodes[info.ID] = &nodeCopy

	nr.updateGaugesLocked()

	snapshot := cloneNode(&nodeCopy)
	return &snapshot, nil
}

// Get returns a snapshot of a specific node
func (nr *NodeRegistry) Get(nodeID string) (*NodeInfo, error) {
	nr.mu.RLock()
	defer nr.mu.RUnlock()

	node, exists := nr.nodes[nodeID]
	if !exists {
		return nil, ErrNodeNotFound
	}

	snapshot := cloneNode(node)
	return &snapshot, nil
}

// List returns snapshots of all registered nodes, ordered by ID
func (nr *NodeRegistry) List() []NodeInfo {
	nr.mu.RLock()
	defer nr.mu.RUnlock()

	nodes := make([]NodeInfo, 0, len(nr.nodes))
	for _, node := range nr.nodes {
		nodes = append(nodes, cloneNode(node))
	}

	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].ID < nodes[j].ID
	})

	return nodes
}

// SetStatus marks a node online or offline. Status models an external
// health-check feed; the registry applies it verbatim.
func (nr *NodeRegistry) SetStatus(nodeID string, status NodeStatus) (*NodeInfo, error) {
	nr.mu.Lock()
	defer nr.mu.Unlock()

	node, exists := nr.nodes[nodeID]
	if !exists {
		return nil, ErrNodeNotFound
	}

	node.Status = status
	nr.updateGaugesLocked()

	snapshot := cloneNode(node)
	return &snapshot, nil
}

// Members returns snapshots of the registered nodes among memberIDs,
// preserving the given order. Unregistered IDs are skipped.
func (nr *NodeRegistry) Members(memberIDs []string) []NodeInfo {
	nr.mu.RLock()
	defer nr.mu.RUnlock()

	members := make([]NodeInfo, 0, len(memberIDs))
	for _, id := range memberIDs {
		if node, exists := nr.nodes[id]; exists {
			members = append(members, cloneNode(node))
		}
	}

	return members
}

// OnlineMembers returns snapshots of the registered, online nodes
// among memberIDs. Unregistered IDs count as not online.
func (nr *NodeRegistry) OnlineMembers(memberIDs []string) []NodeInfo {
	nr.mu.RLock()
	defer nr.mu.RUnlock()

	online := make([]NodeInfo, 0, len(memberIDs))
	for _, id := range memberIDs {
		if node, exists := nr.nodes[id]; exists && node.Status == StatusOnline {
			online = append(online, cloneNode(node))
		}
	}

	return online
}

// Count returns the total number of registered nodes
func (nr *NodeRegistry) Count() int {
	nr.mu.RLock()
	defer nr.mu.RUnlock()

	return len(nr.nodes)
}

// applyElection records an election outcome across all registered
// members in one atomic step. The winner becomes leader, every other
// member becomes a follower, and all registered members adopt the new
// term. Online members record their vote for the winner; offline
// members did not participate, so their vote is left untouched.
func (nr *NodeRegistry) applyElection(memberIDs []string, winnerID string, term uint64) {
	nr.mu.Lock()
	defer nr.mu.Unlock()

	for _, id := range memberIDs {
		node, exists := nr.nodes[id]
		if !exists {
			continue
		}

		if id == winnerID {
			node.Role = RoleLeader
		} else {
			node.Role = RoleFollower
		}
		node.Term = term

		if node.Status == StatusOnline {
			node.VotedFor = winnerID
		}
	}
}

// updateGaugesLocked refreshes node gauges (must be called with lock held)
func (nr *NodeRegistry) updateGaugesLocked() {
	if nr.metricsRegistry == nil {
		return
	}

	online := 0
	for _, node := range nr.nodes {
		if node.Status == StatusOnline {
			online++
		}
	}

	nr.metricsRegistry.NodesTotal.Set(float64(len(nr.nodes)))
	nr.metricsRegistry.NodesOnline.Set(float64(online))
}

// cloneNode returns a deep copy of a node
func cloneNode(n *NodeInfo) NodeInfo {
	nodeCopy := *n
	nodeCopy.Metadata = copyMetadata(n.Metadata)
	return nodeCopy
}

// copyMetadata duplicates a metadata map, mapping nil to nil
func copyMetadata(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
