package api

import (
	"net/http"

	"github.com/dd0wney/cluso-consensus/pkg/cluster"
)

// handleNodes handles node collection requests
func (s *Server) handleNodes(w http.ResponseWriter, r *http.Request) {
	s.newMethodRouter(w, r).
		Get(func() { s.listNodes(w, r) }).
		Post(func() { s.registerNode(w, r) }).
		NotAllowed()
}

// handleNodeSubpath handles /nodes/{id} and /nodes/{id}/status
func (s *Server) handleNodeSubpath(w http.ResponseWriter, r *http.Request) {
	id, subresource, ok := s.newPathExtractor(w, r).ExtractParts("/nodes/")
	if !ok {
		return
	}

	switch subresource {
	case "":
		s.newMethodRouter(w, r).
			Get(func() { s.getNode(w, r, id) }).
			NotAllowed()
	case "status":
		s.newMethodRouter(w, r).
			Put(func() { s.updateNodeStatus(w, r, id) }).
			NotAllowed()
	default:
		s.respondError(w, http.StatusNotFound, "Unknown resource path")
	}
}

func (s *Server) listNodes(w http.ResponseWriter, _ *http.Request) {
	nodes := s.engine.ListNodes()

	resp := NodeListResponse{
		Nodes: make([]NodeResponse, 0, len(nodes)),
		Count: len(nodes),
	}
	for i := range nodes {
		resp.Nodes = append(resp.Nodes, nodeToResponse(&nodes[i]))
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) registerNode(w http.ResponseWriter, r *http.Request) {
	var req RegisterNodeRequest
	if s.newRequestDecoder(w, r).
		DecodeJSON(&req).
		ValidateNode(&req).
		RespondError() {
		return
	}

	role, err := cluster.ParseRole(req.Role)
	if err != nil {
		s.respondEngineError(w, "node registration", err)
		return
	}
	status, err := cluster.ParseStatus(req.Status)
	if err != nil {
		s.respondEngineError(w, "node registration", err)
		return
	}

	node, err := s.engine.RegisterNode(cluster.NodeInfo{
		ID:       req.ID,
		Addr:     req.Addr,
		Region:   req.Region,
		Role:     role,
		Status:   status,
		Term:     req.Term,
		Metadata: req.Metadata,
	})
	if err != nil {
		s.respondEngineError(w, "node registration", err)
		return
	}

	s.respondJSON(w, http.StatusCreated, nodeToResponse(node))
}

func (s *Server) getNode(w http.ResponseWriter, _ *http.Request, nodeID string) {
	node, err := s.engine.GetNode(nodeID)
	if err != nil {
		s.respondEngineError(w, "node lookup", err)
		return
	}
	s.respondJSON(w, http.StatusOK, nodeToResponse(node))
}

func (s *Server) updateNodeStatus(w http.ResponseWriter, r *http.Request, nodeID string) {
	var req UpdateNodeStatusRequest
	if s.newRequestDecoder(w, r).DecodeJSON(&req).RespondError() {
		return
	}
	if req.Status == "" {
		s.respondError(w, http.StatusBadRequest, "status is required")
		return
	}

	status, err := cluster.ParseStatus(req.Status)
	if err != nil {
		s.respondEngineError(w, "node status update", err)
		return
	}

	node, err := s.engine.SetNodeStatus(nodeID, status)
	if err != nil {
		s.respondEngineError(w, "node status update", err)
		return
	}

	s.respondJSON(w, http.StatusOK, nodeToResponse(node))
}
