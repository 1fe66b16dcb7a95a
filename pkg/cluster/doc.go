// Package cluster implements the consensus decision engine.
//
// This package handles:
//   - Node and cluster registries (identity, role, term, vote, status)
//   - Quorum-gated leader election with configurable winner selection
//   - Ordered, checksummed log replication with per-member cursors
//   - Single-round quorum proposals
//   - Split-brain detection, cluster metrics and replication status
//
// The engine models decision logic only. There is no network transport
// and no persistence: every operation is a synchronous, in-memory state
// transition, suitable for wiring to a real transport layer later.
package cluster
