package api

import "net/http"

// getSplitBrain runs partition analysis on a cluster. Detection is a
// normal report, not an error status.
func (s *Server) getSplitBrain(w http.ResponseWriter, _ *http.Request, clusterID string) {
	report, err := s.engine.DetectSplitBrain(clusterID)
	if err != nil {
		s.respondEngineError(w, "split-brain analysis", err)
		return
	}
	s.respondJSON(w, http.StatusOK, splitBrainToResponse(report))
}

// getClusterMetrics returns an on-demand health summary for a cluster
func (s *Server) getClusterMetrics(w http.ResponseWriter, _ *http.Request, clusterID string) {
	m, err := s.engine.GetClusterMetrics(clusterID)
	if err != nil {
		s.respondEngineError(w, "cluster metrics", err)
		return
	}
	s.respondJSON(w, http.StatusOK, metricsToResponse(m))
}

// getReplicationStatus returns per-member replication lag for a cluster
func (s *Server) getReplicationStatus(w http.ResponseWriter, _ *http.Request, clusterID string) {
	replicas, err := s.engine.GetReplicationStatus(clusterID)
	if err != nil {
		s.respondEngineError(w, "replication status", err)
		return
	}
	s.respondJSON(w, http.StatusOK, replicationToResponse(clusterID, replicas))
}
