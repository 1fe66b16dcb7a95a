package cluster

import (
	"time"

	"github.com/dd0wney/cluso-consensus/pkg/logging"
)

// Candidate is one eligible node presented to a WinnerPolicy
type Candidate struct {
	NodeID  string // Node identifier
	Term    uint64 // Node's last observed term
	Applied uint64 // Entries applied from the cluster log
}

// WinnerPolicy selects the election winner among eligible candidates.
// Policies must be deterministic and return the ID of one of the given
// candidates; candidates is never empty.
type WinnerPolicy func(candidates []Candidate) string

// LongestLogPolicy elects the candidate with the most applied log
// entries, breaking ties by lexicographically greatest node ID. This
// favors the replica that would discard the least history on takeover.
func LongestLogPolicy(candidates []Candidate) string {
	winner := candidates[0]
	for _, c := range candidates[1:] {
		if c.Applied > winner.Applied {
			winner = c
			continue
		}
		if c.Applied == winner.Applied && c.NodeID > winner.NodeID {
			winner = c
		}
	}
	return winner.NodeID
}

// LexicographicPolicy elects the candidate whose node ID sorts
// greatest, ignoring log position entirely
func LexicographicPolicy(candidates []Candidate) string {
	winner := candidates[0].NodeID
	for _, c := range candidates[1:] {
		if c.NodeID > winner {
			winner = c.NodeID
		}
	}
	return winner
}

// TriggerElection runs one quorum-gated leader election on a cluster.
//
// Members that are registered and online are the eligible voters and
// candidates. If fewer than QuorumSize are eligible, the election
// fails without mutating anything: the term is unchanged, no roles
// move, and the result reports QuorumReached false. That is a normal
// cluster condition, not an error.
//
// On success the cluster's term advances by exactly one, the policy
// winner becomes leader, every other registered member becomes a
// follower on the new term, and online members record their vote for
// the winner. Repeated calls re-elect, advancing the term each time;
// a node never observes a decreasing term.
func (e *Engine) TriggerElection(clusterID, reason string) (*ElectionResult, error) {
	lock := e.clusterLock(clusterID)
	lock.Lock()
	defer lock.Unlock()

	started := time.Now()

	info, err := e.clusters.Get(clusterID)
	if err != nil {
		return nil, err
	}

	online := e.nodes.OnlineMembers(info.Nodes)

	result := &ElectionResult{
		ClusterID:   clusterID,
		Term:        info.CurrentTerm,
		OnlineCount: len(online),
		QuorumSize:  info.QuorumSize,
		Reason:      reason,
		ElectedAt:   started,
	}

	if len(online) < info.QuorumSize {
		e.recordElection(result)

		if e.metricsRegistry != nil {
			e.metricsRegistry.ElectionsTotal.WithLabelValues("no_quorum").Inc()
		}
		e.logger.Warn("election failed quorum check",
			logging.ClusterID(clusterID),
			logging.Int("online", len(online)),
			logging.Int("quorum_size", info.QuorumSize),
			logging.String("reason", reason))

		return result, nil
	}

	newTerm := info.CurrentTerm + 1

	candidates := make([]Candidate, 0, len(online))
	e.mu.RLock()
	cursors := e.applied[clusterID]
	for _, node := range online {
		candidates = append(candidates, Candidate{
			NodeID:  node.ID,
			Term:    node.Term,
			Applied: cursors[node.ID],
		})
	}
	e.mu.RUnlock()

	winner := e.winnerPolicy(candidates)
	if !isCandidate(candidates, winner) {
		winner = LongestLogPolicy(candidates)
	}

	e.nodes.applyElection(info.Nodes, winner, newTerm)
	if err := e.clusters.setLeader(clusterID, winner, newTerm); err != nil {
		return nil, err
	}

	result.QuorumReached = true
	result.WinnerID = winner
	result.Term = newTerm
	e.recordElection(result)

	if e.metricsRegistry != nil {
		e.metricsRegistry.ElectionsTotal.WithLabelValues("won").Inc()
		e.metricsRegistry.ElectionDuration.Observe(time.Since(started).Seconds())
		e.metricsRegistry.ClusterTerm.WithLabelValues(clusterID).Set(float64(newTerm))
	}
	e.logger.Info("leader elected",
		logging.ClusterID(clusterID),
		logging.NodeID(winner),
		logging.Term(newTerm),
		logging.String("reason", reason))

	return result, nil
}

// LastElection returns the most recent election outcome for a cluster
func (e *Engine) LastElection(clusterID string) (*ElectionResult, error) {
	if _, err := e.clusters.Get(clusterID); err != nil {
		return nil, err
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	result, exists := e.elections[clusterID]
	if !exists {
		return nil, ErrNoElections
	}

	resultCopy := *result
	return &resultCopy, nil
}

// recordElection stores the outcome as the cluster's latest election
func (e *Engine) recordElection(result *ElectionResult) {
	e.mu.Lock()
	defer e.mu.Unlock()

	resultCopy := *result
	e.elections[result.ClusterID] = &resultCopy
}

// isCandidate reports whether nodeID is one of the candidates
func isCandidate(candidates []Candidate, nodeID string) bool {
	for _, c := range candidates {
		if c.NodeID == nodeID {
			return true
		}
	}
	return false
}
