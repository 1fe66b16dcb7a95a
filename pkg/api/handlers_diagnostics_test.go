package api

import (
	"net/http"
	"testing"

	"github.com/dd0wney/cluso-consensus/pkg/cluster"
)

func TestGetSplitBrain(t *testing.T) {
	server := setupTestServer(t)
	clusterID, _ := setupClusterFixture(t, server, 3, 2)

	rr := doRequest(t, server.handleClusterSubpath, http.MethodGet,
		"/clusters/"+clusterID+"/split-brain", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d, body: %s", rr.Code, rr.Body.String())
	}

	var resp SplitBrainResponse
	decodeResponse(t, rr, &resp)

	if resp.ClusterID != clusterID {
		t.Errorf("Expected cluster ID to echo, got %q", resp.ClusterID)
	}
	if resp.Detected {
		t.Error("Expected no split brain in a freshly declared cluster")
	}
	if len(resp.Leaders) != 0 {
		t.Errorf("Expected no leaders before an election, got %v", resp.Leaders)
	}
}

func TestGetSplitBrain_Conflict(t *testing.T) {
	server := setupTestServer(t)

	// Two healed partitions each brought their own leader on the same term
	for _, id := range []string{"rogue-a", "rogue-b"} {
		if _, err := server.engine.RegisterNode(cluster.NodeInfo{
			ID:   id,
			Addr: id + ".internal:7000",
			Role: cluster.RoleLeader,
		}); err != nil {
			t.Fatalf("Failed to register %s: %v", id, err)
		}
	}
	if _, err := server.engine.RegisterNode(cluster.NodeInfo{
		ID:   "bystander",
		Addr: "bystander.internal:7000",
	}); err != nil {
		t.Fatalf("Failed to register bystander: %v", err)
	}

	info, err := server.engine.CreateCluster(cluster.ClusterSpec{
		Name:              "conflicted",
		Nodes:             []string{"rogue-a", "rogue-b", "bystander"},
		QuorumSize:        2,
		ReplicationFactor: 3,
	})
	if err != nil {
		t.Fatalf("Failed to create cluster: %v", err)
	}

	rr := doRequest(t, server.handleClusterSubpath, http.MethodGet,
		"/clusters/"+info.ID+"/split-brain", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}

	var resp SplitBrainResponse
	decodeResponse(t, rr, &resp)

	if !resp.Detected {
		t.Fatal("Expected detection with two leaders on the same term")
	}
	if len(resp.Leaders) != 2 {
		t.Errorf("Expected both conflicting leaders reported, got %v", resp.Leaders)
	}
	if resp.Leaders[0] != "rogue-a" || resp.Leaders[1] != "rogue-b" {
		t.Errorf("Expected sorted leaders [rogue-a rogue-b], got %v", resp.Leaders)
	}
}

func TestGetSplitBrain_NotFound(t *testing.T) {
	server := setupTestServer(t)

	rr := doRequest(t, server.handleClusterSubpath, http.MethodGet,
		"/clusters/ghost/split-brain", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rr.Code)
	}
}

func TestGetClusterMetrics(t *testing.T) {
	server := setupTestServer(t)
	clusterID, _ := setupClusterFixture(t, server, 4, 2)

	rr := doRequest(t, server.handleClusterSubpath, http.MethodGet,
		"/clusters/"+clusterID+"/metrics", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d, body: %s", rr.Code, rr.Body.String())
	}

	var resp ClusterMetricsResponse
	decodeResponse(t, rr, &resp)

	if resp.HasLeader {
		t.Error("Expected no leader before an election")
	}
	if resp.OnlineMembers != 4 || resp.TotalMembers != 4 {
		t.Errorf("Expected 4/4 members online, got %d/%d", resp.OnlineMembers, resp.TotalMembers)
	}
	if resp.QuorumHealth != 2.0 {
		t.Errorf("Expected quorum health 2.0, got %v", resp.QuorumHealth)
	}
	if resp.LogLength != 0 {
		t.Errorf("Expected empty log, got length %d", resp.LogLength)
	}
}

func TestGetClusterMetrics_AfterActivity(t *testing.T) {
	server := setupTestServer(t)
	clusterID, nodeIDs := setupClusterFixture(t, server, 4, 2)

	if _, err := server.engine.TriggerElection(clusterID, "test"); err != nil {
		t.Fatalf("Election failed: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := server.engine.AppendEntry(clusterID, []byte("entry")); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}
	if _, err := server.engine.SetNodeStatus(nodeIDs[0], cluster.StatusOffline); err != nil {
		t.Fatalf("Failed to set status: %v", err)
	}

	rr := doRequest(t, server.handleClusterSubpath, http.MethodGet,
		"/clusters/"+clusterID+"/metrics", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}

	var resp ClusterMetricsResponse
	decodeResponse(t, rr, &resp)

	if !resp.HasLeader {
		t.Error("Expected a leader after the election")
	}
	if resp.CurrentTerm != 1 {
		t.Errorf("Expected term 1, got %d", resp.CurrentTerm)
	}
	if resp.OnlineMembers != 3 {
		t.Errorf("Expected 3 online members, got %d", resp.OnlineMembers)
	}
	if resp.QuorumHealth != 1.5 {
		t.Errorf("Expected quorum health 1.5, got %v", resp.QuorumHealth)
	}
	if resp.LogLength != 2 {
		t.Errorf("Expected log length 2, got %d", resp.LogLength)
	}
}

func TestGetClusterMetrics_NotFound(t *testing.T) {
	server := setupTestServer(t)

	rr := doRequest(t, server.handleClusterSubpath, http.MethodGet,
		"/clusters/ghost/metrics", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rr.Code)
	}
}

func TestGetReplicationStatus(t *testing.T) {
	server := setupTestServer(t)
	clusterID, nodeIDs := setupClusterFixture(t, server, 3, 2)

	if _, err := server.engine.TriggerElection(clusterID, "test"); err != nil {
		t.Fatalf("Election failed: %v", err)
	}
	if _, err := server.engine.AppendEntry(clusterID, []byte("first")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	rr := doRequest(t, server.handleClusterSubpath, http.MethodGet,
		"/clusters/"+clusterID+"/replication", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d, body: %s", rr.Code, rr.Body.String())
	}

	var resp ReplicationStatusResponse
	decodeResponse(t, rr, &resp)

	if resp.ClusterID != clusterID {
		t.Errorf("Expected cluster ID to echo, got %q", resp.ClusterID)
	}
	if len(resp.Replicas) != 3 {
		t.Fatalf("Expected one status per member, got %d", len(resp.Replicas))
	}
	for i, replica := range resp.Replicas {
		if replica.NodeID != nodeIDs[i] {
			t.Errorf("Expected replicas in member order, got %q at %d", replica.NodeID, i)
		}
		if !replica.InSync {
			t.Errorf("Expected %s in sync after online append", replica.NodeID)
		}
	}
}

func TestGetReplicationStatus_Lag(t *testing.T) {
	server := setupTestServer(t)
	clusterID, nodeIDs := setupClusterFixture(t, server, 3, 2)

	if _, err := server.engine.TriggerElection(clusterID, "test"); err != nil {
		t.Fatalf("Election failed: %v", err)
	}
	if _, err := server.engine.AppendEntry(clusterID, []byte("first")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	// node-1 misses the second append
	if _, err := server.engine.SetNodeStatus(nodeIDs[0], cluster.StatusOffline); err != nil {
		t.Fatalf("Failed to set status: %v", err)
	}
	if _, err := server.engine.AppendEntry(clusterID, []byte("second")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	rr := doRequest(t, server.handleClusterSubpath, http.MethodGet,
		"/clusters/"+clusterID+"/replication", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}

	var resp ReplicationStatusResponse
	decodeResponse(t, rr, &resp)

	for _, replica := range resp.Replicas {
		if replica.NodeID == nodeIDs[0] {
			if replica.InSync {
				t.Error("Expected the offline member to lag")
			}
			if replica.LagEntries != 1 {
				t.Errorf("Expected lag of 1 entry, got %d", replica.LagEntries)
			}
		} else if !replica.InSync {
			t.Errorf("Expected %s in sync, lag %d", replica.NodeID, replica.LagEntries)
		}
	}
}

func TestGetReplicationStatus_NotFound(t *testing.T) {
	server := setupTestServer(t)

	rr := doRequest(t, server.handleClusterSubpath, http.MethodGet,
		"/clusters/ghost/replication", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rr.Code)
	}
}
