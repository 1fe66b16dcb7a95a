package cluster

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dd0wney/cluso-consensus/pkg/crdt"
)

// TestNewEngine tests engine creation with default configuration
func TestNewEngine(t *testing.T) {
	engine, err := NewEngine(DefaultEngineConfig())
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	if engine == nil {
		t.Fatal("Expected non-nil engine")
	}

	if engine.nodes.Count() != 0 {
		t.Error("New engine should have no registered nodes")
	}
	if engine.clusters.Count() != 0 {
		t.Error("New engine should have no clusters")
	}
}

// TestNewEngineInvalidConfig tests configuration validation
func TestNewEngineInvalidConfig(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.DefaultHeartbeatInterval = 0

	if _, err := NewEngine(cfg); err != ErrInvalidHeartbeat {
		t.Errorf("Expected ErrInvalidHeartbeat, got %v", err)
	}

	cfg = DefaultEngineConfig()
	cfg.DefaultElectionTimeout = 500 * time.Millisecond
	cfg.DefaultHeartbeatInterval = 1 * time.Second

	if _, err := NewEngine(cfg); err != ErrElectionTimeoutTooSmall {
		t.Errorf("Expected ErrElectionTimeoutTooSmall, got %v", err)
	}
}

// TestRegisterNodeDefaults tests zero-value defaults on registration
func TestRegisterNodeDefaults(t *testing.T) {
	engine := newTestEngine(t)

	node, err := engine.RegisterNode(NodeInfo{ID: "node-1", Addr: "localhost:9090", Region: "eu-west"})
	if err != nil {
		t.Fatalf("Failed to register node: %v", err)
	}

	if node.Role != RoleFollower {
		t.Errorf("Expected default role follower, got %v", node.Role)
	}
	if node.Status != StatusOnline {
		t.Errorf("Expected default status online, got %v", node.Status)
	}
	if node.Term != 0 {
		t.Errorf("Expected initial term 0, got %d", node.Term)
	}
	if node.VotedFor != "" {
		t.Errorf("Expected empty votedFor, got %s", node.VotedFor)
	}
	if node.RegisteredAt.IsZero() {
		t.Error("Expected RegisteredAt to be set")
	}
	if node.Region != "eu-west" {
		t.Errorf("Expected region eu-west, got %s", node.Region)
	}
}

// TestRegisterNodeDuplicate tests that re-registration is rejected
func TestRegisterNodeDuplicate(t *testing.T) {
	engine := newTestEngine(t)

	if _, err := engine.RegisterNode(NodeInfo{ID: "node-1"}); err != nil {
		t.Fatalf("Failed to register node: %v", err)
	}

	_, err := engine.RegisterNode(NodeInfo{ID: "node-1", Addr: "localhost:9999"})
	if err != ErrDuplicateNode {
		t.Errorf("Expected ErrDuplicateNode, got %v", err)
	}

	// Original registration untouched
	node, _ := engine.GetNode("node-1")
	if node.Addr == "localhost:9999" {
		t.Error("Duplicate registration must not update the stored node")
	}
}

// TestRegisterNodeEmptyID tests rejection of empty node IDs
func TestRegisterNodeEmptyID(t *testing.T) {
	engine := newTestEngine(t)

	if _, err := engine.RegisterNode(NodeInfo{Addr: "localhost:9090"}); err != ErrInvalidNodeID {
		t.Errorf("Expected ErrInvalidNodeID, got %v", err)
	}
}

// TestGetNode tests node lookup
func TestGetNode(t *testing.T) {
	engine := newTestEngine(t)
	engine.RegisterNode(NodeInfo{ID: "node-1", Addr: "localhost:9090"})

	node, err := engine.GetNode("node-1")
	if err != nil {
		t.Fatalf("Failed to get node: %v", err)
	}
	if node.Addr != "localhost:9090" {
		t.Errorf("Expected addr localhost:9090, got %s", node.Addr)
	}

	if _, err := engine.GetNode("node-999"); err != ErrNodeNotFound {
		t.Errorf("Expected ErrNodeNotFound, got %v", err)
	}
}

// TestSetNodeStatus tests explicit status transitions
func TestSetNodeStatus(t *testing.T) {
	engine := newTestEngine(t)
	engine.RegisterNode(NodeInfo{ID: "node-1"})

	node, err := engine.SetNodeStatus("node-1", StatusOffline)
	if err != nil {
		t.Fatalf("Failed to set status: %v", err)
	}
	if node.Status != StatusOffline {
		t.Errorf("Expected status offline, got %v", node.Status)
	}

	node, _ = engine.SetNodeStatus("node-1", StatusOnline)
	if node.Status != StatusOnline {
		t.Errorf("Expected status online, got %v", node.Status)
	}

	if _, err := engine.SetNodeStatus("node-999", StatusOffline); err != ErrNodeNotFound {
		t.Errorf("Expected ErrNodeNotFound, got %v", err)
	}
}

// TestListNodesOrdered tests deterministic node listing
func TestListNodesOrdered(t *testing.T) {
	engine := newTestEngine(t)

	engine.RegisterNode(NodeInfo{ID: "node-3"})
	engine.RegisterNode(NodeInfo{ID: "node-1"})
	engine.RegisterNode(NodeInfo{ID: "node-2"})

	nodes := engine.ListNodes()
	if len(nodes) != 3 {
		t.Fatalf("Expected 3 nodes, got %d", len(nodes))
	}

	for i, want := range []string{"node-1", "node-2", "node-3"} {
		if nodes[i].ID != want {
			t.Errorf("Expected %s at position %d, got %s", want, i, nodes[i].ID)
		}
	}
}

// TestNodeMetadataIsolation tests that metadata maps do not leak
func TestNodeMetadataIsolation(t *testing.T) {
	engine := newTestEngine(t)

	meta := map[string]string{"zone": "a"}
	engine.RegisterNode(NodeInfo{ID: "node-1", Metadata: meta})

	// Mutating the caller's map must not affect the stored node
	meta["zone"] = "b"

	node, _ := engine.GetNode("node-1")
	if node.Metadata["zone"] != "a" {
		t.Error("Registry must store a copy of the metadata map")
	}

	// Mutating a returned snapshot must not affect the stored node
	node.Metadata["zone"] = "c"
	again, _ := engine.GetNode("node-1")
	if again.Metadata["zone"] != "a" {
		t.Error("Lookups must return a copy of the metadata map")
	}
}

// TestCreateClusterDefaults tests cluster creation and ID assignment
func TestCreateClusterDefaults(t *testing.T) {
	engine := newTestEngine(t)

	info, err := engine.CreateCluster(ClusterSpec{
		Name:              "orders",
		Nodes:             []string{"node-1", "node-2", "node-3"},
		QuorumSize:        2,
		ReplicationFactor: 3,
	})
	if err != nil {
		t.Fatalf("Failed to create cluster: %v", err)
	}

	if !strings.HasPrefix(info.ID, "cluster_") {
		t.Errorf("Expected cluster_ ID prefix, got %s", info.ID)
	}
	if info.Protocol != ProtocolRaft {
		t.Errorf("Expected default protocol raft, got %v", info.Protocol)
	}
	if info.CurrentTerm != 0 {
		t.Errorf("Expected initial term 0, got %d", info.CurrentTerm)
	}
	if info.HasLeader() {
		t.Error("New cluster must not have a leader")
	}
	if info.ElectionTimeout != 5*time.Second {
		t.Errorf("Expected engine default election timeout, got %v", info.ElectionTimeout)
	}
	if info.HeartbeatInterval != 1*time.Second {
		t.Errorf("Expected engine default heartbeat interval, got %v", info.HeartbeatInterval)
	}
}

// TestCreateClusterUnregisteredMembers tests that member IDs are not
// resolved eagerly
func TestCreateClusterUnregisteredMembers(t *testing.T) {
	engine := newTestEngine(t)

	// No nodes registered at all
	info, err := engine.CreateCluster(ClusterSpec{
		Name:              "early",
		Nodes:             []string{"ghost-1", "ghost-2"},
		QuorumSize:        2,
		ReplicationFactor: 2,
	})
	if err != nil {
		t.Fatalf("Cluster creation must not resolve members: %v", err)
	}

	fetched, err := engine.GetCluster(info.ID)
	if err != nil {
		t.Fatalf("Failed to get cluster: %v", err)
	}
	if len(fetched.Nodes) != 2 {
		t.Errorf("Expected 2 declared members, got %d", len(fetched.Nodes))
	}
}

// TestCreateClusterValidation tests spec validation failures
func TestCreateClusterValidation(t *testing.T) {
	engine := newTestEngine(t)

	tests := []struct {
		name string
		spec ClusterSpec
		want error
	}{
		{
			name: "empty name",
			spec: ClusterSpec{Nodes: []string{"n1"}, QuorumSize: 1, ReplicationFactor: 1},
			want: ErrInvalidClusterName,
		},
		{
			name: "no members",
			spec: ClusterSpec{Name: "c", QuorumSize: 1, ReplicationFactor: 1},
			want: ErrNoMembers,
		},
		{
			name: "empty member ID",
			spec: ClusterSpec{Name: "c", Nodes: []string{"n1", ""}, QuorumSize: 1, ReplicationFactor: 1},
			want: ErrInvalidMemberID,
		},
		{
			name: "duplicate members",
			spec: ClusterSpec{Name: "c", Nodes: []string{"n1", "n1"}, QuorumSize: 1, ReplicationFactor: 1},
			want: ErrDuplicateMember,
		},
		{
			name: "zero quorum",
			spec: ClusterSpec{Name: "c", Nodes: []string{"n1"}, QuorumSize: 0, ReplicationFactor: 1},
			want: ErrInvalidQuorumSize,
		},
		{
			name: "zero replication factor",
			spec: ClusterSpec{Name: "c", Nodes: []string{"n1"}, QuorumSize: 1, ReplicationFactor: 0},
			want: ErrInvalidReplicationFactor,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := engine.CreateCluster(tt.spec); err != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}

	if engine.clusters.Count() != 0 {
		t.Error("Failed creations must not register clusters")
	}
}

// TestGetClusterNotFound tests cluster lookup failure
func TestGetClusterNotFound(t *testing.T) {
	engine := newTestEngine(t)

	if _, err := engine.GetCluster("cluster_missing"); err != ErrClusterNotFound {
		t.Errorf("Expected ErrClusterNotFound, got %v", err)
	}
}

// TestClusterSnapshotIsolation tests that cluster snapshots do not
// share the member slice
func TestClusterSnapshotIsolation(t *testing.T) {
	engine := newTestEngine(t)
	info := createTestCluster(t, engine, []string{"node-1", "node-2"}, 1)

	info.Nodes[0] = "tampered"

	fetched, _ := engine.GetCluster(info.ID)
	if fetched.Nodes[0] != "node-1" {
		t.Error("Cluster snapshots must not share the member slice")
	}
}

// TestEngineCRDTSurface tests the counter operations exposed on the engine
func TestEngineCRDTSurface(t *testing.T) {
	engine := newTestEngine(t)

	snap, err := engine.CreateCRDT(crdt.KindPNCounter, []string{"node-1", "node-2"})
	if err != nil {
		t.Fatalf("Failed to create counter: %v", err)
	}

	if _, err := engine.CRDTIncrement(snap.ID, "node-1", 10); err != nil {
		t.Fatalf("Failed to increment: %v", err)
	}
	if _, err := engine.CRDTDecrement(snap.ID, "node-2", 3); err != nil {
		t.Fatalf("Failed to decrement: %v", err)
	}

	value, err := engine.CRDTValue(snap.ID)
	if err != nil {
		t.Fatalf("Failed to read value: %v", err)
	}
	if value != 7 {
		t.Errorf("Expected value 7, got %d", value)
	}

	other, _ := engine.CreateCRDT(crdt.KindPNCounter, []string{"node-1"})
	engine.CRDTIncrement(other.ID, "node-1", 5)

	merged, err := engine.MergeCRDTs(snap.ID, other.ID)
	if err != nil {
		t.Fatalf("Failed to merge: %v", err)
	}
	if merged.Value != 12 {
		t.Errorf("Expected merged value 12, got %d", merged.Value)
	}

	if len(engine.ListCRDTs()) != 3 {
		t.Errorf("Expected 3 counters, got %d", len(engine.ListCRDTs()))
	}
}

// TestEngineConcurrentOperations tests mixed operations from many
// goroutines against one cluster
func TestEngineConcurrentOperations(t *testing.T) {
	engine := newTestEngine(t)

	nodes := registerNodes(t, engine, 3)
	info := createTestCluster(t, engine, nodes, 1)
	if _, err := engine.TriggerElection(info.ID, "startup"); err != nil {
		t.Fatalf("Failed to trigger election: %v", err)
	}

	const workers = 10
	const opsPerWorker = 20

	var elections int64
	var wg sync.WaitGroup
	wg.Add(workers)

	for w := 0; w < workers; w++ {
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < opsPerWorker; i++ {
				switch i % 4 {
				case 0:
					if result, err := engine.TriggerElection(info.ID, "churn"); err == nil && result.QuorumReached {
						atomic.AddInt64(&elections, 1)
					}
				case 1:
					engine.AppendEntry(info.ID, []byte(fmt.Sprintf("w%d-op%d", worker, i)))
				case 2:
					engine.Propose(info.ID, []byte("proposal"), nodes[worker%len(nodes)])
				case 3:
					engine.GetClusterMetrics(info.ID)
					engine.DetectSplitBrain(info.ID)
				}
			}
		}(w)
	}
	wg.Wait()

	// Every successful election advanced the term once, plus the
	// startup election
	cluster, _ := engine.GetCluster(info.ID)
	if cluster.CurrentTerm != uint64(elections)+1 {
		t.Errorf("Expected term %d, got %d", elections+1, cluster.CurrentTerm)
	}

	// The log stayed dense through the churn
	entries, _ := engine.Log(info.ID)
	if len(entries) != workers*opsPerWorker/4 {
		t.Errorf("Expected %d entries, got %d", workers*opsPerWorker/4, len(entries))
	}
	for i := range entries {
		if entries[i].Index != uint64(i) {
			t.Fatalf("Expected dense indices, got %d at position %d", entries[i].Index, i)
		}
	}

	// Exactly one leader survives
	leaders := 0
	for _, id := range nodes {
		node, _ := engine.GetNode(id)
		if node.Role == RoleLeader {
			leaders++
		}
	}
	if leaders != 1 {
		t.Errorf("Expected exactly 1 leader, got %d", leaders)
	}
}

// Helper functions

// newTestEngine creates an engine with default configuration
func newTestEngine(t *testing.T) *Engine {
	t.Helper()

	engine, err := NewEngine(DefaultEngineConfig())
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	return engine
}

// registerNodes registers count online nodes named node-1..node-N and
// returns their IDs
func registerNodes(t *testing.T, engine *Engine, count int) []string {
	t.Helper()

	ids := make([]string, 0, count)
	for i := 1; i <= count; i++ {
		id := fmt.Sprintf("node-%d", i)
		_, err := engine.RegisterNode(NodeInfo{ID: id, Addr: fmt.Sprintf("localhost:%d", 9000+i)})
		if err != nil {
			t.Fatalf("Failed to register %s: %v", id, err)
		}
		ids = append(ids, id)
	}
	return ids
}

// createTestCluster creates a cluster over the given member IDs
func createTestCluster(t *testing.T, engine *Engine, nodes []string, quorum int) *ClusterInfo {
	t.Helper()

	info, err := engine.CreateCluster(ClusterSpec{
		Name:              "test-cluster",
		Nodes:             nodes,
		QuorumSize:        quorum,
		ReplicationFactor: len(nodes),
	})
	if err != nil {
		t.Fatalf("Failed to create cluster: %v", err)
	}
	return info
}
