package api

import (
	"time"

	"github.com/dd0wney/cluso-consensus/pkg/cluster"
	"github.com/dd0wney/cluso-consensus/pkg/crdt"
)

// API Request/Response Types

// RegisterNodeRequest represents a node registration request
type RegisterNodeRequest struct {
	ID       string            `json:"id"`
	Addr     string            `json:"addr"`
	Region   string            `json:"region,omitempty"`
	Role     string            `json:"role,omitempty"`
	Status   string            `json:"status,omitempty"`
	Term     uint64            `json:"term,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// UpdateNodeStatusRequest represents a node status transition request
type UpdateNodeStatusRequest struct {
	Status string `json:"status"`
}

// NodeResponse represents a registered node in API responses
type NodeResponse struct {
	ID           string            `json:"id"`
	Addr         string            `json:"addr"`
	Region       string            `json:"region,omitempty"`
	Role         string            `json:"role"`
	Status       string            `json:"status"`
	Term         uint64            `json:"term"`
	VotedFor     string            `json:"voted_for,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	RegisteredAt time.Time         `json:"registered_at"`
}

// NodeListResponse represents a node listing
type NodeListResponse struct {
	Nodes []NodeResponse `json:"nodes"`
	Count int            `json:"count"`
}

// CreateClusterRequest represents a cluster creation request.
// Timings are advisory and expressed in milliseconds; zero values
// inherit the engine defaults.
type CreateClusterRequest struct {
	Name                string   `json:"name"`
	Protocol            string   `json:"protocol,omitempty"`
	Nodes               []string `json:"nodes"`
	QuorumSize          int      `json:"quorum_size,omitempty"`
	ReplicationFactor   int      `json:"replication_factor,omitempty"`
	ElectionTimeoutMs   int64    `json:"election_timeout_ms,omitempty"`
	HeartbeatIntervalMs int64    `json:"heartbeat_interval_ms,omitempty"`
}

// ClusterResponse represents a cluster in API responses
type ClusterResponse struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Protocol            string    `json:"protocol"`
	Nodes               []string  `json:"nodes"`
	QuorumSize          int       `json:"quorum_size"`
	ReplicationFactor   int       `json:"replication_factor"`
	CurrentTerm         uint64    `json:"current_term"`
	LeaderID            string    `json:"leader_id,omitempty"`
	ElectionTimeoutMs   int64     `json:"election_timeout_ms"`
	HeartbeatIntervalMs int64     `json:"heartbeat_interval_ms"`
	CreatedAt           time.Time `json:"created_at"`
}

// ClusterListResponse represents a cluster listing
type ClusterListResponse struct {
	Clusters []ClusterResponse `json:"clusters"`
	Count    int               `json:"count"`
}

// TriggerElectionRequest represents an election trigger request
type TriggerElectionRequest struct {
	Reason string `json:"reason,omitempty"`
}

// ElectionResponse represents the outcome of an election attempt
type ElectionResponse struct {
	ClusterID     string    `json:"cluster_id"`
	QuorumReached bool      `json:"quorum_reached"`
	WinnerID      string    `json:"winner_id,omitempty"`
	Term          uint64    `json:"term"`
	OnlineCount   int       `json:"online_count"`
	QuorumSize    int       `json:"quorum_size"`
	Reason        string    `json:"reason,omitempty"`
	ElectedAt     time.Time `json:"elected_at"`
}

// AppendEntryRequest represents a log append request. Data is
// base64-encoded in transit.
type AppendEntryRequest struct {
	Data []byte `json:"data"`
}

// LogEntryResponse represents one replicated log entry
type LogEntryResponse struct {
	Index      uint64    `json:"index"`
	Term       uint64    `json:"term"`
	Data       []byte    `json:"data"`
	Checksum   string    `json:"checksum"`
	AppendedAt time.Time `json:"appended_at"`
}

// LogResponse represents a cluster's replicated log
type LogResponse struct {
	ClusterID string             `json:"cluster_id"`
	Entries   []LogEntryResponse `json:"entries"`
	Count     int                `json:"count"`
}

// ProposeRequest represents a proposal submission. Value is
// base64-encoded in transit.
type ProposeRequest struct {
	Value      []byte `json:"value"`
	ProposerID string `json:"proposer_id"`
}

// ProposalResponse represents a decided proposal
type ProposalResponse struct {
	ID          string    `json:"id"`
	ClusterID   string    `json:"cluster_id"`
	Value       []byte    `json:"value"`
	ProposerID  string    `json:"proposer_id"`
	Status      string    `json:"status"`
	OnlineCount int       `json:"online_count"`
	QuorumSize  int       `json:"quorum_size"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateCRDTRequest represents a counter creation request
type CreateCRDTRequest struct {
	Kind  string   `json:"kind"`
	Nodes []string `json:"nodes,omitempty"`
}

// CRDTStateResponse represents a counter's per-node contributions
type CRDTStateResponse struct {
	Kind     string           `json:"kind"`
	Positive map[string]int64 `json:"positive"`
	Negative map[string]int64 `json:"negative,omitempty"`
}

// CRDTResponse represents a replicated counter in API responses
type CRDTResponse struct {
	ID        string            `json:"id"`
	Kind      string            `json:"kind"`
	Value     int64             `json:"value"`
	State     CRDTStateResponse `json:"state"`
	CreatedAt time.Time         `json:"created_at"`
}

// CRDTListResponse represents a counter listing
type CRDTListResponse struct {
	CRDTs []CRDTResponse `json:"crdts"`
	Count int            `json:"count"`
}

// CRDTOperationRequest represents an increment or decrement request
type CRDTOperationRequest struct {
	NodeID string `json:"node_id"`
	Amount int64  `json:"amount"`
}

// CRDTValueResponse represents a counter's current value
type CRDTValueResponse struct {
	ID    string `json:"id"`
	Value int64  `json:"value"`
}

// MergeCRDTRequest represents a merge of two counters
type MergeCRDTRequest struct {
	FirstID  string `json:"first_id"`
	SecondID string `json:"second_id"`
}

// SplitBrainResponse represents a partition analysis report
type SplitBrainResponse struct {
	ClusterID  string     `json:"cluster_id"`
	Detected   bool       `json:"detected"`
	Leaders    []string   `json:"leaders,omitempty"`
	Term       uint64     `json:"term"`
	Partitions [][]string `json:"partitions,omitempty"`
}

// ClusterMetricsResponse represents an on-demand cluster health summary
type ClusterMetricsResponse struct {
	ClusterID     string  `json:"cluster_id"`
	CurrentTerm   uint64  `json:"current_term"`
	QuorumHealth  float64 `json:"quorum_health"`
	OnlineMembers int     `json:"online_members"`
	TotalMembers  int     `json:"total_members"`
	LogLength     uint64  `json:"log_length"`
	HasLeader     bool    `json:"has_leader"`
}

// ReplicaStatusResponse represents one member's replication position
type ReplicaStatusResponse struct {
	NodeID     string `json:"node_id"`
	InSync     bool   `json:"in_sync"`
	LagEntries uint64 `json:"lag_entries"`
}

// ReplicationStatusResponse represents per-member replication lag
type ReplicationStatusResponse struct {
	ClusterID string                  `json:"cluster_id"`
	Replicas  []ReplicaStatusResponse `json:"replicas"`
}

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error string `json:"error"`
}

// Response mappers

func nodeToResponse(n *cluster.NodeInfo) NodeResponse {
	return NodeResponse{
		ID:           n.ID,
		Addr:         n.Addr,
		Region:       n.Region,
		Role:         n.Role.String(),
		Status:       n.Status.String(),
		Term:         n.Term,
		VotedFor:     n.VotedFor,
		Metadata:     n.Metadata,
		RegisteredAt: n.RegisteredAt,
	}
}

func clusterToResponse(c *cluster.ClusterInfo) ClusterResponse {
	return ClusterResponse{
		ID:                  c.ID,
		Name:                c.Name,
		Protocol:            c.Protocol.String(),
		Nodes:               c.Nodes,
		QuorumSize:          c.QuorumSize,
		ReplicationFactor:   c.ReplicationFactor,
		CurrentTerm:         c.CurrentTerm,
		LeaderID:            c.LeaderID,
		ElectionTimeoutMs:   c.ElectionTimeout.Milliseconds(),
		HeartbeatIntervalMs: c.HeartbeatInterval.Milliseconds(),
		CreatedAt:           c.CreatedAt,
	}
}

func electionToResponse(e *cluster.ElectionResult) ElectionResponse {
	return ElectionResponse{
		ClusterID:     e.ClusterID,
		QuorumReached: e.QuorumReached,
		WinnerID:      e.WinnerID,
		Term:          e.Term,
		OnlineCount:   e.OnlineCount,
		QuorumSize:    e.QuorumSize,
		Reason:        e.Reason,
		ElectedAt:     e.ElectedAt,
	}
}

func entryToResponse(entry *cluster.LogEntry) LogEntryResponse {
	return LogEntryResponse{
		Index:      entry.Index,
		Term:       entry.Term,
		Data:       entry.Data,
		Checksum:   entry.Checksum,
		AppendedAt: entry.AppendedAt,
	}
}

func proposalToResponse(p *cluster.Proposal) ProposalResponse {
	return ProposalResponse{
		ID:          p.ID,
		ClusterID:   p.ClusterID,
		Value:       p.Value,
		ProposerID:  p.ProposerID,
		Status:      p.Status.String(),
		OnlineCount: p.OnlineCount,
		QuorumSize:  p.QuorumSize,
		CreatedAt:   p.CreatedAt,
	}
}

func crdtToResponse(s crdt.Snapshot) CRDTResponse {
	return CRDTResponse{
		ID:    s.ID,
		Kind:  s.Kind.String(),
		Value: s.Value,
		State: CRDTStateResponse{
			Kind:     s.State.Kind.String(),
			Positive: s.State.Positive,
			Negative: s.State.Negative,
		},
		CreatedAt: s.CreatedAt,
	}
}

func metricsToResponse(m *cluster.ClusterMetrics) ClusterMetricsResponse {
	return ClusterMetricsResponse{
		ClusterID:     m.ClusterID,
		CurrentTerm:   m.CurrentTerm,
		QuorumHealth:  m.QuorumHealth,
		OnlineMembers: m.OnlineMembers,
		TotalMembers:  m.TotalMembers,
		LogLength:     m.LogLength,
		HasLeader:     m.HasLeader,
	}
}

func splitBrainToResponse(r *cluster.SplitBrainReport) SplitBrainResponse {
	return SplitBrainResponse{
		ClusterID:  r.ClusterID,
		Detected:   r.Detected,
		Leaders:    r.Leaders,
		Term:       r.Term,
		Partitions: r.Partitions,
	}
}

func replicationToResponse(clusterID string, replicas []cluster.ReplicaStatus) ReplicationStatusResponse {
	resp := ReplicationStatusResponse{
		ClusterID: clusterID,
		Replicas:  make([]ReplicaStatusResponse, 0, len(replicas)),
	}
	for _, r := range replicas {
		resp.Replicas = append(resp.Replicas, ReplicaStatusResponse{
			NodeID:     r.NodeID,
			InSync:     r.InSync,
			LagEntries: r.LagEntries,
		})
	}
	return resp
}
