package cluster

import (
	"strings"
	"time"
)

// NodeRole represents the role of a node in its cluster
type NodeRole int

const (
	// RoleFollower is a node replicating from the current leader
	RoleFollower NodeRole = iota
	// RoleCandidate is a node in the process of election
	RoleCandidate
	// RoleLeader is the elected leader that accepts writes
	RoleLeader
)

// String returns the string representation of a NodeRole
func (r NodeRole) String() string {
	switch r {
	case RoleFollower:
		return "follower"
	case RoleCandidate:
		return "candidate"
	case RoleLeader:
		return "leader"
	default:
		return "unknown"
	}
}

// ParseRole converts a role string to a NodeRole. The empty string
// maps to RoleFollower, the registration default.
func ParseRole(s string) (NodeRole, error) {
	switch strings.ToLower(s) {
	case "", "follower":
		return RoleFollower, nil
	case "candidate":
		return RoleCandidate, nil
	case "leader":
		return RoleLeader, nil
	default:
		return RoleFollower, ErrUnknownRole
	}
}

// NodeStatus represents whether a node is reachable. Transitions are
// driven explicitly by the caller; the engine never flips status on
// its own.
type NodeStatus int

const (
	// StatusOnline is a node that counts toward quorum
	StatusOnline NodeStatus = iota
	// StatusOffline is a node excluded from quorum arithmetic
	StatusOffline
)

// String returns the string representation of a NodeStatus
func (s NodeStatus) String() string {
	switch s {
	case StatusOnline:
		return "online"
	case StatusOffline:
		return "offline"
	default:
		return "unknown"
	}
}

// ParseStatus converts a status string to a NodeStatus. The empty
// string maps to StatusOnline, the registration default.
func ParseStatus(s string) (NodeStatus, error) {
	switch strings.ToLower(s) {
	case "", "online":
		return StatusOnline, nil
	case "offline":
		return StatusOffline, nil
	default:
		return StatusOnline, ErrUnknownStatus
	}
}

// NodeInfo contains the consensus-relevant state of a registered node
type NodeInfo struct {
	ID           string            // Unique node identifier
	Addr         string            // Network address (host:port)
	Region       string            // Deployment region label
	Role         NodeRole          // Current role in cluster
	Status       NodeStatus        // Online/offline per external health feed
	Term         uint64            // Last election term observed
	VotedFor     string            // Candidate voted for in current term
	Metadata     map[string]string // Caller-supplied labels
	RegisteredAt time.Time         // When the node was registered
}

// IsOnline returns true if the node counts toward quorum
func (n *NodeInfo) IsOnline() bool {
	return n.Status == StatusOnline
}
