package cluster

import "errors"

// Lookup errors
var (
	ErrNodeNotFound     = errors.New("node not found in registry")
	ErrClusterNotFound  = errors.New("cluster not found in registry")
	ErrProposalNotFound = errors.New("proposal not found")
	ErrNoElections      = errors.New("no elections have run for this cluster")
)

// Registration errors
var (
	ErrDuplicateNode         = errors.New("node already registered")
	ErrInvalidNodeID         = errors.New("node ID cannot be empty")
	ErrUnknownRole           = errors.New("unknown node role")
	ErrUnknownStatus         = errors.New("unknown node status")
	ErrUnknownProtocol       = errors.New("unknown cluster protocol")
	ErrUnknownProposalStatus = errors.New("unknown proposal status")
)

// Cluster creation errors
var (
	ErrInvalidClusterName       = errors.New("cluster name cannot be empty")
	ErrNoMembers                = errors.New("cluster requires at least one member node")
	ErrDuplicateMember          = errors.New("cluster member IDs must be unique")
	ErrInvalidMemberID          = errors.New("cluster member ID cannot be empty")
	ErrInvalidQuorumSize        = errors.New("quorum size must be at least 1")
	ErrInvalidReplicationFactor = errors.New("replication factor must be at least 1")
)

// Replication errors
var (
	ErrNoLeader = errors.New("cluster has no elected leader")
)

// Engine configuration errors
var (
	ErrElectionTimeoutTooSmall = errors.New("election timeout must be greater than heartbeat interval")
	ErrInvalidHeartbeat        = errors.New("heartbeat interval must be positive")
)

// Snapshot errors
var (
	ErrSnapshotTooShort  = errors.New("snapshot shorter than header")
	ErrSnapshotBadMagic  = errors.New("snapshot magic mismatch")
	ErrSnapshotVersion   = errors.New("unsupported snapshot version")
	ErrSnapshotTruncated = errors.New("snapshot payload truncated")
	ErrSnapshotChecksum  = errors.New("snapshot checksum mismatch")
)
