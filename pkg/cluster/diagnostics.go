package cluster

// GetClusterMetrics computes an on-demand health summary for a
// cluster. QuorumHealth is the raw ratio of online members to quorum
// size: above 1 means healthy slack, at or below 1 means quorum is at
// risk or broken.
func (e *Engine) GetClusterMetrics(clusterID string) (*ClusterMetrics, error) {
	info, err := e.clusters.Get(clusterID)
	if err != nil {
		return nil, err
	}

	online := e.nodes.OnlineMembers(info.Nodes)

	e.mu.RLock()
	logLength := uint64(len(e.logs[clusterID]))
	e.mu.RUnlock()

	quorumHealth := float64(len(online)) / float64(info.QuorumSize)

	if e.metricsRegistry != nil {
		e.metricsRegistry.ClusterQuorumHealth.WithLabelValues(clusterID).Set(quorumHealth)
	}

	return &ClusterMetrics{
		ClusterID:     clusterID,
		CurrentTerm:   info.CurrentTerm,
		QuorumHealth:  quorumHealth,
		OnlineMembers: len(online),
		TotalMembers:  len(info.Nodes),
		LogLength:     logLength,
		HasLeader:     info.HasLeader(),
	}, nil
}

// GetReplicationStatus reports each member's replication position,
// one entry per member in cluster order. A member is in sync when its
// cursor has reached the full log; offline and never-registered
// members show the lag their cursor implies.
func (e *Engine) GetReplicationStatus(clusterID string) ([]ReplicaStatus, error) {
	info, err := e.clusters.Get(clusterID)
	if err != nil {
		return nil, err
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	logLength := uint64(len(e.logs[clusterID]))
	cursors := e.applied[clusterID]

	statuses := make([]ReplicaStatus, 0, len(info.Nodes))
	for _, nodeID := range info.Nodes {
		lag := logLength - cursors[nodeID]
		statuses = append(statuses, ReplicaStatus{
			NodeID:     nodeID,
			InSync:     lag == 0,
			LagEntries: lag,
		})
	}

	return statuses, nil
}
