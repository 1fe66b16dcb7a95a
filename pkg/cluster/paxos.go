package cluster

import (
	"time"

	"github.com/dd0wney/cluso-consensus/pkg/logging"
)

// Propose runs a single-round quorum decision on a value, independent
// of any elected leader. If the cluster's registered online members
// meet QuorumSize, the value is accepted, modeling a majority of
// acceptors answering the ballot; otherwise it is rejected. Rejection
// is a normal outcome, not an error.
//
// This is a deliberate single-round simplification: there are no
// ballot numbers and no confirming round, so it keeps quorum safety
// for one value but is not a general multi-round Paxos. The decision
// is made once and the proposal is immutable afterward.
func (e *Engine) Propose(clusterID string, value []byte, proposerID string) (*Proposal, error) {
	lock := e.clusterLock(clusterID)
	lock.Lock()
	defer lock.Unlock()

	info, err := e.clusters.Get(clusterID)
	if err != nil {
		return nil, err
	}

	online := e.nodes.OnlineMembers(info.Nodes)

	status := ProposalRejected
	if len(online) >= info.QuorumSize {
		status = ProposalAccepted
	}

	proposal := &Proposal{
		ID:          newProposalID(),
		ClusterID:   clusterID,
		Value:       append([]byte(nil), value...),
		ProposerID:  proposerID,
		Status:      status,
		OnlineCount: len(online),
		QuorumSize:  info.QuorumSize,
		CreatedAt:   time.Now(),
	}

	e.mu.Lock()
	e.proposals[proposal.ID] = proposal
	e.mu.Unlock()

	if e.metricsRegistry != nil {
		e.metricsRegistry.ProposalsTotal.WithLabelValues(status.String()).Inc()
	}
	e.logger.Debug("proposal decided",
		logging.ClusterID(clusterID),
		logging.ProposalID(proposal.ID),
		logging.String("status", status.String()),
		logging.Int("online", len(online)))

	snapshot := cloneProposal(proposal)
	return &snapshot, nil
}

// GetProposal returns a snapshot of a decided proposal
func (e *Engine) GetProposal(proposalID string) (*Proposal, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	proposal, exists := e.proposals[proposalID]
	if !exists {
		return nil, ErrProposalNotFound
	}

	snapshot := cloneProposal(proposal)
	return &snapshot, nil
}

// cloneProposal returns a deep copy of a proposal
func cloneProposal(p *Proposal) Proposal {
	proposalCopy := *p
	proposalCopy.Value = append([]byte(nil), p.Value...)
	return proposalCopy
}
