package cluster

import (
	"fmt"
	"sort"
)

// DetectSplitBrain analyzes a cluster's registered members for
// conflicting leadership views. Detection fires when more than one
// member claims leadership for the same term, or when two distinct
// vote targets each command a quorum-sized following, which implies
// two incompatible majorities.
//
// Members are grouped into partitions by the leader they follow: a
// leader's view is itself, a follower's view is its recorded vote.
// The report is observational; the engine does not resolve conflicts.
func (e *Engine) DetectSplitBrain(clusterID string) (*SplitBrainReport, error) {
	info, err := e.clusters.Get(clusterID)
	if err != nil {
		return nil, err
	}

	members := e.nodes.Members(info.Nodes)

	leadersByTerm := make(map[uint64][]string)
	votesFor := make(map[string]int)
	leaders := make([]string, 0)

	for i := range members {
		member := &members[i]
		if member.Role == RoleLeader {
			leadersByTerm[member.Term] = append(leadersByTerm[member.Term], member.ID)
			leaders = append(leaders, member.ID)
		}
		if member.VotedFor != "" {
			votesFor[member.VotedFor]++
		}
	}
	sort.Strings(leaders)

	detected := false
	for _, ids := range leadersByTerm {
		if len(ids) > 1 {
			detected = true
			break
		}
	}
	if !detected {
		quorumBacked := 0
		for _, supporters := range votesFor {
			if supporters >= info.QuorumSize {
				quorumBacked++
			}
		}
		detected = quorumBacked >= 2
	}

	report := &SplitBrainReport{
		ClusterID:  clusterID,
		Detected:   detected,
		Leaders:    leaders,
		Term:       info.CurrentTerm,
		Partitions: partitionMembers(members),
	}

	if e.metricsRegistry != nil {
		value := 0.0
		if detected {
			value = 1.0
		}
		e.metricsRegistry.SplitBrainDetected.WithLabelValues(clusterID).Set(value)
	}

	return report, nil
}

// partitionMembers groups members by their (leader view, term) tuple
// and returns the groups in a deterministic order
func partitionMembers(members []NodeInfo) [][]string {
	groups := make(map[string][]string)
	for i := range members {
		member := &members[i]

		view := member.VotedFor
		if member.Role == RoleLeader {
			view = member.ID
		}

		key := fmt.Sprintf("%s/%d", view, member.Term)
		groups[key] = append(groups[key], member.ID)
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	partitions := make([][]string, 0, len(groups))
	for _, key := range keys {
		ids := groups[key]
		sort.Strings(ids)
		partitions = append(partitions, ids)
	}

	return partitions
}
