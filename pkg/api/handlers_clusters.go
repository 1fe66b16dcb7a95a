package api

import (
	"net/http"
	"time"

	"github.com/dd0wney/cluso-consensus/pkg/cluster"
)

// handleClusters handles cluster collection requests
func (s *Server) handleClusters(w http.ResponseWriter, r *http.Request) {
	s.newMethodRouter(w, r).
		Get(func() { s.listClusters(w, r) }).
		Post(func() { s.createCluster(w, r) }).
		NotAllowed()
}

// handleClusterSubpath dispatches /clusters/{id} and its subresources
func (s *Server) handleClusterSubpath(w http.ResponseWriter, r *http.Request) {
	id, subresource, ok := s.newPathExtractor(w, r).ExtractParts("/clusters/")
	if !ok {
		return
	}

	switch subresource {
	case "":
		s.newMethodRouter(w, r).
			Get(func() { s.getCluster(w, r, id) }).
			NotAllowed()
	case "elections":
		s.newMethodRouter(w, r).
			Get(func() { s.getLastElection(w, r, id) }).
			Post(func() { s.triggerElection(w, r, id) }).
			NotAllowed()
	case "log":
		s.newMethodRouter(w, r).
			Get(func() { s.getLog(w, r, id) }).
			Post(func() { s.appendEntry(w, r, id) }).
			NotAllowed()
	case "proposals":
		s.newMethodRouter(w, r).
			Post(func() { s.propose(w, r, id) }).
			NotAllowed()
	case "split-brain":
		s.newMethodRouter(w, r).
			Get(func() { s.getSplitBrain(w, r, id) }).
			NotAllowed()
	case "metrics":
		s.newMethodRouter(w, r).
			Get(func() { s.getClusterMetrics(w, r, id) }).
			NotAllowed()
	case "replication":
		s.newMethodRouter(w, r).
			Get(func() { s.getReplicationStatus(w, r, id) }).
			NotAllowed()
	case "snapshot":
		s.newMethodRouter(w, r).
			Get(func() { s.exportSnapshot(w, r, id) }).
			NotAllowed()
	default:
		s.respondError(w, http.StatusNotFound, "Unknown resource path")
	}
}

func (s *Server) listClusters(w http.ResponseWriter, _ *http.Request) {
	clusters := s.engine.ListClusters()

	resp := ClusterListResponse{
		Clusters: make([]ClusterResponse, 0, len(clusters)),
		Count:    len(clusters),
	}
	for i := range clusters {
		resp.Clusters = append(resp.Clusters, clusterToResponse(&clusters[i]))
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) createCluster(w http.ResponseWriter, r *http.Request) {
	var req CreateClusterRequest
	if s.newRequestDecoder(w, r).
		DecodeJSON(&req).
		ValidateCluster(&req).
		RespondError() {
		return
	}

	protocol, err := cluster.ParseProtocol(req.Protocol)
	if err != nil {
		s.respondEngineError(w, "cluster creation", err)
		return
	}

	info, err := s.engine.CreateCluster(cluster.ClusterSpec{
		Name:              req.Name,
		Protocol:          protocol,
		Nodes:             req.Nodes,
		QuorumSize:        req.QuorumSize,
		ReplicationFactor: req.ReplicationFactor,
		ElectionTimeout:   time.Duration(req.ElectionTimeoutMs) * time.Millisecond,
		HeartbeatInterval: time.Duration(req.HeartbeatIntervalMs) * time.Millisecond,
	})
	if err != nil {
		s.respondEngineError(w, "cluster creation", err)
		return
	}

	s.respondJSON(w, http.StatusCreated, clusterToResponse(info))
}

func (s *Server) getCluster(w http.ResponseWriter, _ *http.Request, clusterID string) {
	info, err := s.engine.GetCluster(clusterID)
	if err != nil {
		s.respondEngineError(w, "cluster lookup", err)
		return
	}
	s.respondJSON(w, http.StatusOK, clusterToResponse(info))
}
