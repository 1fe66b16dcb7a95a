package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/dd0wney/cluso-consensus/pkg/logging"
	"github.com/dd0wney/cluso-consensus/pkg/validation"
)

// getLastElection returns the most recent election outcome for a cluster
func (s *Server) getLastElection(w http.ResponseWriter, _ *http.Request, clusterID string) {
	result, err := s.engine.LastElection(clusterID)
	if err != nil {
		s.respondEngineError(w, "election lookup", err)
		return
	}
	s.respondJSON(w, http.StatusOK, electionToResponse(result))
}

// triggerElection runs an election round. The request body is
// optional; an empty body triggers with no recorded reason. A quorum
// failure is a normal outcome reported with quorum_reached=false.
func (s *Server) triggerElection(w http.ResponseWriter, r *http.Request, clusterID string) {
	var req TriggerElectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := s.engine.TriggerElection(clusterID, req.Reason)
	if err != nil {
		s.respondEngineError(w, "election", err)
		return
	}
	s.respondJSON(w, http.StatusOK, electionToResponse(result))
}

// getLog returns a cluster's replicated log
func (s *Server) getLog(w http.ResponseWriter, _ *http.Request, clusterID string) {
	entries, err := s.engine.Log(clusterID)
	if err != nil {
		s.respondEngineError(w, "log read", err)
		return
	}

	resp := LogResponse{
		ClusterID: clusterID,
		Entries:   make([]LogEntryResponse, 0, len(entries)),
		Count:     len(entries),
	}
	for i := range entries {
		resp.Entries = append(resp.Entries, entryToResponse(&entries[i]))
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// appendEntry appends an opaque payload to the replicated log
func (s *Server) appendEntry(w http.ResponseWriter, r *http.Request, clusterID string) {
	var req AppendEntryRequest
	if s.newRequestDecoder(w, r).
		DecodeJSON(&req).
		ValidatePayload(req.Data).
		RespondError() {
		return
	}

	entry, err := s.engine.AppendEntry(clusterID, req.Data)
	if err != nil {
		s.respondEngineError(w, "log append", err)
		return
	}
	s.respondJSON(w, http.StatusCreated, entryToResponse(entry))
}

// propose submits a value for a single-round quorum decision.
// Rejection is a normal outcome carried in the proposal status.
func (s *Server) propose(w http.ResponseWriter, r *http.Request, clusterID string) {
	var req ProposeRequest
	if s.newRequestDecoder(w, r).
		DecodeJSON(&req).
		ValidatePayload(req.Value).
		RespondError() {
		return
	}
	if err := validation.ValidateID(req.ProposerID); err != nil {
		s.respondError(w, http.StatusBadRequest, "proposer_id: "+err.Error())
		return
	}

	proposal, err := s.engine.Propose(clusterID, req.Value, req.ProposerID)
	if err != nil {
		s.respondEngineError(w, "proposal", err)
		return
	}
	s.respondJSON(w, http.StatusCreated, proposalToResponse(proposal))
}

// handleProposalByID handles /proposals/{id}
func (s *Server) handleProposalByID(w http.ResponseWriter, r *http.Request) {
	id, ok := s.newPathExtractor(w, r).ExtractID("/proposals/")
	if !ok {
		return
	}
	s.newMethodRouter(w, r).
		Get(func() { s.getProposal(w, r, id) }).
		NotAllowed()
}

func (s *Server) getProposal(w http.ResponseWriter, _ *http.Request, proposalID string) {
	proposal, err := s.engine.GetProposal(proposalID)
	if err != nil {
		s.respondEngineError(w, "proposal lookup", err)
		return
	}
	s.respondJSON(w, http.StatusOK, proposalToResponse(proposal))
}

// exportSnapshot streams a cluster's binary snapshot
func (s *Server) exportSnapshot(w http.ResponseWriter, _ *http.Request, clusterID string) {
	data, err := s.engine.ExportSnapshot(clusterID)
	if err != nil {
		s.respondEngineError(w, "snapshot export", err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Error("snapshot write failed",
			logging.ClusterID(clusterID),
			logging.Error(err))
	}
}
