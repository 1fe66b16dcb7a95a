package api

import (
	"net/http"

	"github.com/dd0wney/cluso-consensus/pkg/crdt"
)

// handleCRDTs handles counter collection requests
func (s *Server) handleCRDTs(w http.ResponseWriter, r *http.Request) {
	s.newMethodRouter(w, r).
		Get(func() { s.listCRDTs(w, r) }).
		Post(func() { s.createCRDT(w, r) }).
		NotAllowed()
}

// handleMergeCRDTs handles /crdts/merge
func (s *Server) handleMergeCRDTs(w http.ResponseWriter, r *http.Request) {
	s.newMethodRouter(w, r).
		Post(func() { s.mergeCRDTs(w, r) }).
		NotAllowed()
}

// handleCRDTSubpath dispatches /crdts/{id} and its subresources
func (s *Server) handleCRDTSubpath(w http.ResponseWriter, r *http.Request) {
	id, subresource, ok := s.newPathExtractor(w, r).ExtractParts("/crdts/")
	if !ok {
		return
	}

	switch subresource {
	case "":
		s.newMethodRouter(w, r).
			Get(func() { s.getCRDT(w, r, id) }).
			NotAllowed()
	case "value":
		s.newMethodRouter(w, r).
			Get(func() { s.getCRDTValue(w, r, id) }).
			NotAllowed()
	case "increment":
		s.newMethodRouter(w, r).
			Post(func() { s.incrementCRDT(w, r, id) }).
			NotAllowed()
	case "decrement":
		s.newMethodRouter(w, r).
			Post(func() { s.decrementCRDT(w, r, id) }).
			NotAllowed()
	default:
		s.respondError(w, http.StatusNotFound, "Unknown resource path")
	}
}

func (s *Server) listCRDTs(w http.ResponseWriter, _ *http.Request) {
	snapshots := s.engine.ListCRDTs()

	resp := CRDTListResponse{
		CRDTs: make([]CRDTResponse, 0, len(snapshots)),
		Count: len(snapshots),
	}
	for _, snapshot := range snapshots {
		resp.CRDTs = append(resp.CRDTs, crdtToResponse(snapshot))
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) createCRDT(w http.ResponseWriter, r *http.Request) {
	var req CreateCRDTRequest
	if s.newRequestDecoder(w, r).DecodeJSON(&req).RespondError() {
		return
	}

	kind, err := crdt.ParseKind(req.Kind)
	if err != nil {
		s.respondEngineError(w, "counter creation", err)
		return
	}

	snapshot, err := s.engine.CreateCRDT(kind, req.Nodes)
	if err != nil {
		s.respondEngineError(w, "counter creation", err)
		return
	}
	s.respondJSON(w, http.StatusCreated, crdtToResponse(snapshot))
}

func (s *Server) mergeCRDTs(w http.ResponseWriter, r *http.Request) {
	var req MergeCRDTRequest
	if s.newRequestDecoder(w, r).DecodeJSON(&req).RespondError() {
		return
	}
	if req.FirstID == "" || req.SecondID == "" {
		s.respondError(w, http.StatusBadRequest, "first_id and second_id are required")
		return
	}

	snapshot, err := s.engine.MergeCRDTs(req.FirstID, req.SecondID)
	if err != nil {
		s.respondEngineError(w, "counter merge", err)
		return
	}
	s.respondJSON(w, http.StatusCreated, crdtToResponse(snapshot))
}

func (s *Server) getCRDT(w http.ResponseWriter, _ *http.Request, crdtID string) {
	snapshot, err := s.engine.GetCRDT(crdtID)
	if err != nil {
		s.respondEngineError(w, "counter lookup", err)
		return
	}
	s.respondJSON(w, http.StatusOK, crdtToResponse(snapshot))
}

func (s *Server) getCRDTValue(w http.ResponseWriter, _ *http.Request, crdtID string) {
	value, err := s.engine.CRDTValue(crdtID)
	if err != nil {
		s.respondEngineError(w, "counter value", err)
		return
	}
	s.respondJSON(w, http.StatusOK, CRDTValueResponse{ID: crdtID, Value: value})
}

func (s *Server) incrementCRDT(w http.ResponseWriter, r *http.Request, crdtID string) {
	var req CRDTOperationRequest
	if s.newRequestDecoder(w, r).DecodeJSON(&req).RespondError() {
		return
	}

	value, err := s.engine.CRDTIncrement(crdtID, req.NodeID, req.Amount)
	if err != nil {
		s.respondEngineError(w, "counter increment", err)
		return
	}
	s.respondJSON(w, http.StatusOK, CRDTValueResponse{ID: crdtID, Value: value})
}

func (s *Server) decrementCRDT(w http.ResponseWriter, r *http.Request, crdtID string) {
	var req CRDTOperationRequest
	if s.newRequestDecoder(w, r).DecodeJSON(&req).RespondError() {
		return
	}

	value, err := s.engine.CRDTDecrement(crdtID, req.NodeID, req.Amount)
	if err != nil {
		s.respondEngineError(w, "counter decrement", err)
		return
	}
	s.respondJSON(w, http.StatusOK, CRDTValueResponse{ID: crdtID, Value: value})
}
