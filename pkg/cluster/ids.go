package cluster

import "github.com/google/uuid"

// Generated IDs carry a kind prefix so log lines and traces identify
// what they reference at a glance. The exact format is not a
// compatibility contract.

// newClusterID returns a fresh cluster identifier
func newClusterID() string {
	return "cluster_" + uuid.New().String()
}

// newProposalID returns a fresh proposal identifier
func newProposalID() string {
	return "prop_" + uuid.New().String()
}
