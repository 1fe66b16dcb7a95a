package cluster

import (
	"strings"
	"time"
)

// Protocol identifies the consensus family a cluster is declared for
type Protocol int

const (
	// ProtocolRaft uses quorum-gated leader election and a replicated log
	ProtocolRaft Protocol = iota
	// ProtocolPaxos uses quorum-based proposal acceptance without a leader
	ProtocolPaxos
	// ProtocolCRDT uses convergent replicated state with no coordination
	ProtocolCRDT
)

// String returns the string representation of a Protocol
func (p Protocol) String() string {
	switch p {
	case ProtocolRaft:
		return "raft"
	case ProtocolPaxos:
		return "paxos"
	case ProtocolCRDT:
		return "crdt"
	default:
		return "unknown"
	}
}

// ParseProtocol converts a protocol string to a Protocol. The empty
// string maps to ProtocolRaft, the creation default.
func ParseProtocol(s string) (Protocol, error) {
	switch strings.ToLower(s) {
	case "", "raft":
		return ProtocolRaft, nil
	case "paxos":
		return ProtocolPaxos, nil
	case "crdt":
		return ProtocolCRDT, nil
	default:
		return ProtocolRaft, ErrUnknownProtocol
	}
}

// ClusterSpec defines the shape of a cluster at creation time.
// Membership is fixed once created; the spec may reference node IDs
// that have not registered yet.
type ClusterSpec struct {
	Name              string        // Human-readable cluster name
	Protocol          Protocol      // Consensus family
	Nodes             []string      // Member node IDs (ordered, unique)
	QuorumSize        int           // Minimum online members for a binding decision
	ReplicationFactor int           // Declared copies per log entry
	ElectionTimeout   time.Duration // Advisory re-election trigger interval
	HeartbeatInterval time.Duration // Advisory heartbeat interval
}

// Validate checks if the cluster spec is valid
func (s *ClusterSpec) Validate() error {
	if s.Name == "" {
		return ErrInvalidClusterName
	}
	if len(s.Nodes) == 0 {
		return ErrNoMembers
	}
	seen := make(map[string]bool, len(s.Nodes))
	for _, id := range s.Nodes {
		if id == "" {
			return ErrInvalidMemberID
		}
		if seen[id] {
			return ErrDuplicateMember
		}
		seen[id] = true
	}
	if s.QuorumSize < 1 {
		return ErrInvalidQuorumSize
	}
	if s.ReplicationFactor < 1 {
		return ErrInvalidReplicationFactor
	}
	return nil
}

// ClusterInfo is the stored state of a cluster. Membership is fixed;
// CurrentTerm and LeaderID mutate only through successful elections.
type ClusterInfo struct {
	ID                string        // Generated identifier (cluster_ prefix)
	Name              string        // Human-readable cluster name
	Protocol          Protocol      // Consensus family
	Nodes             []string      // Member node IDs (ordered, unique)
	QuorumSize        int           // Minimum online members for a binding decision
	ReplicationFactor int           // Declared copies per log entry
	CurrentTerm       uint64        // Election epoch, starts at 0
	LeaderID          string        // Elected leader, empty until first election
	ElectionTimeout   time.Duration // Advisory re-election trigger interval
	HeartbeatInterval time.Duration // Advisory heartbeat interval
	CreatedAt         time.Time     // When the cluster was created
}

// HasLeader returns true once an election has installed a leader
func (c *ClusterInfo) HasLeader() bool {
	return c.LeaderID != ""
}

// LogEntry is one ordered, checksummed record in a cluster's
// replicated log. Entries are append-only and never mutated.
type LogEntry struct {
	Index      uint64    // 0-based position, strictly increasing per cluster
	Term       uint64    // Leader's term at append time
	Data       []byte    // Opaque payload
	Checksum   string    // Hex BLAKE2b-256 of Data
	AppendedAt time.Time // When the entry was appended
}

// ProposalStatus represents the decided outcome of a proposal
type ProposalStatus int

const (
	// ProposalAccepted means a quorum of acceptors agreed to the value
	ProposalAccepted ProposalStatus = iota
	// ProposalCommitted means a confirming round made the value durable
	ProposalCommitted
	// ProposalRejected means quorum was not reachable
	ProposalRejected
)

// String returns the string representation of a ProposalStatus
func (s ProposalStatus) String() string {
	switch s {
	case ProposalAccepted:
		return "accepted"
	case ProposalCommitted:
		return "committed"
	case ProposalRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// ParseProposalStatus converts a status string to a ProposalStatus
func ParseProposalStatus(s string) (ProposalStatus, error) {
	switch strings.ToLower(s) {
	case "accepted":
		return ProposalAccepted, nil
	case "committed":
		return ProposalCommitted, nil
	case "rejected":
		return ProposalRejected, nil
	default:
		return ProposalRejected, ErrUnknownProposalStatus
	}
}

// Proposal records one quorum decision on a proposed value. Status is
// decided once at creation and immutable thereafter.
type Proposal struct {
	ID          string         // Generated identifier (prop_ prefix)
	ClusterID   string         // Cluster the value was proposed to
	Value       []byte         // Opaque proposed value
	ProposerID  string         // Node that proposed the value
	Status      ProposalStatus // Decided outcome
	OnlineCount int            // Online members at decision time
	QuorumSize  int            // Quorum requirement at decision time
	CreatedAt   time.Time      // When the proposal was decided
}

// ElectionResult reports the outcome of one election attempt. A
// failed quorum check is a normal outcome, not an error.
type ElectionResult struct {
	ClusterID     string    // Cluster the election ran on
	QuorumReached bool      // Whether enough members were online
	WinnerID      string    // Elected leader, empty on quorum failure
	Term          uint64    // Term after the election
	OnlineCount   int       // Online members at election time
	QuorumSize    int       // Quorum requirement
	Reason        string    // Caller-supplied trigger reason
	ElectedAt     time.Time // When the election ran
}

// SplitBrainReport is the observational result of partition analysis.
// Detection is heuristic; the engine does not attempt to resolve the
// conflict.
type SplitBrainReport struct {
	ClusterID  string     // Cluster analyzed
	Detected   bool       // Whether conflicting leadership views exist
	Leaders    []string   // All members currently claiming leadership, sorted
	Term       uint64     // Cluster's current term at analysis time
	Partitions [][]string // Member groups sharing a (leader, term) view
}

// ClusterMetrics is an on-demand health summary for one cluster.
// QuorumHealth is the raw online/quorum ratio; values above 1 indicate
// healthy slack, at or below 1 quorum is at risk or broken.
type ClusterMetrics struct {
	ClusterID     string  // Cluster measured
	CurrentTerm   uint64  // Election epoch
	QuorumHealth  float64 // Online member count / quorum size, uncapped
	OnlineMembers int     // Registered members currently online
	TotalMembers  int     // Declared cluster membership size
	LogLength     uint64  // Entries in the replicated log
	HasLeader     bool    // Whether a leader is installed
}

// ReplicaStatus reports one member's replication position relative to
// the cluster log
type ReplicaStatus struct {
	NodeID     string // Member node ID
	InSync     bool   // True when the member has applied every entry
	LagEntries uint64 // Entries the member has not yet applied
}
