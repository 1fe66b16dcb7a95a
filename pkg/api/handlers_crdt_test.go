package api

import (
	"net/http"
	"testing"
)

// createCounter is a test helper that creates a counter and returns its ID
func createCounter(t *testing.T, server *Server, kind string, nodes []string) string {
	t.Helper()

	rr := doRequest(t, server.handleCRDTs, http.MethodPost, "/crdts",
		CreateCRDTRequest{Kind: kind, Nodes: nodes})
	if rr.Code != http.StatusCreated {
		t.Fatalf("Counter creation failed: %d, body: %s", rr.Code, rr.Body.String())
	}

	var resp CRDTResponse
	decodeResponse(t, rr, &resp)
	if resp.ID == "" {
		t.Fatal("Expected a generated counter ID")
	}
	return resp.ID
}

func TestCreateCRDT(t *testing.T) {
	server := setupTestServer(t)

	rr := doRequest(t, server.handleCRDTs, http.MethodPost, "/crdts",
		CreateCRDTRequest{Kind: "pncounter", Nodes: []string{"node-1", "node-2"}})
	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d, body: %s", rr.Code, rr.Body.String())
	}

	var resp CRDTResponse
	decodeResponse(t, rr, &resp)

	if resp.Kind != "pncounter" {
		t.Errorf("Expected pncounter, got %q", resp.Kind)
	}
	if resp.Value != 0 {
		t.Errorf("Expected initial value 0, got %d", resp.Value)
	}
	if len(resp.State.Positive) != 2 {
		t.Errorf("Expected 2 initialized members, got %v", resp.State.Positive)
	}
}

func TestCreateCRDT_UnknownKind(t *testing.T) {
	server := setupTestServer(t)

	for _, kind := range []string{"", "lww-register"} {
		rr := doRequest(t, server.handleCRDTs, http.MethodPost, "/crdts",
			CreateCRDTRequest{Kind: kind})
		if rr.Code != http.StatusBadRequest {
			t.Errorf("Kind %q: expected 400, got %d", kind, rr.Code)
		}
	}
}

func TestCRDTIncrementAndValue(t *testing.T) {
	server := setupTestServer(t)
	id := createCounter(t, server, "gcounter", []string{"node-1", "node-2"})

	rr := doRequest(t, server.handleCRDTSubpath, http.MethodPost,
		"/crdts/"+id+"/increment", CRDTOperationRequest{NodeID: "node-1", Amount: 5})
	if rr.Code != http.StatusOK {
		t.Fatalf("Increment failed: %d, body: %s", rr.Code, rr.Body.String())
	}

	var resp CRDTValueResponse
	decodeResponse(t, rr, &resp)
	if resp.Value != 5 {
		t.Errorf("Expected value 5, got %d", resp.Value)
	}

	doRequest(t, server.handleCRDTSubpath, http.MethodPost,
		"/crdts/"+id+"/increment", CRDTOperationRequest{NodeID: "node-2", Amount: 3})

	rr = doRequest(t, server.handleCRDTSubpath, http.MethodGet, "/crdts/"+id+"/value", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Value read failed: %d", rr.Code)
	}
	decodeResponse(t, rr, &resp)
	if resp.Value != 8 {
		t.Errorf("Expected combined value 8, got %d", resp.Value)
	}
}

func TestCRDTDecrement(t *testing.T) {
	server := setupTestServer(t)
	id := createCounter(t, server, "pncounter", []string{"node-1"})

	doRequest(t, server.handleCRDTSubpath, http.MethodPost,
		"/crdts/"+id+"/increment", CRDTOperationRequest{NodeID: "node-1", Amount: 10})

	rr := doRequest(t, server.handleCRDTSubpath, http.MethodPost,
		"/crdts/"+id+"/decrement", CRDTOperationRequest{NodeID: "node-1", Amount: 4})
	if rr.Code != http.StatusOK {
		t.Fatalf("Decrement failed: %d, body: %s", rr.Code, rr.Body.String())
	}

	var resp CRDTValueResponse
	decodeResponse(t, rr, &resp)
	if resp.Value != 6 {
		t.Errorf("Expected value 6, got %d", resp.Value)
	}
}

func TestCRDTDecrement_GCounter(t *testing.T) {
	server := setupTestServer(t)
	id := createCounter(t, server, "gcounter", []string{"node-1"})

	rr := doRequest(t, server.handleCRDTSubpath, http.MethodPost,
		"/crdts/"+id+"/decrement", CRDTOperationRequest{NodeID: "node-1", Amount: 1})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422 decrementing a grow-only counter, got %d", rr.Code)
	}
}

func TestCRDTOperation_Errors(t *testing.T) {
	server := setupTestServer(t)
	id := createCounter(t, server, "pncounter", []string{"node-1"})

	tests := []struct {
		name       string
		path       string
		body       CRDTOperationRequest
		wantStatus int
	}{
		{
			name:       "negative amount",
			path:       "/crdts/" + id + "/increment",
			body:       CRDTOperationRequest{NodeID: "node-1", Amount: -2},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "empty node ID",
			path:       "/crdts/" + id + "/increment",
			body:       CRDTOperationRequest{Amount: 1},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown counter",
			path:       "/crdts/crdt_ghost/increment",
			body:       CRDTOperationRequest{NodeID: "node-1", Amount: 1},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, server.handleCRDTSubpath, http.MethodPost, tt.path, tt.body)
			if rr.Code != tt.wantStatus {
				t.Errorf("Expected %d, got %d, body: %s", tt.wantStatus, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestListCRDTs(t *testing.T) {
	server := setupTestServer(t)
	createCounter(t, server, "gcounter", []string{"node-1"})
	createCounter(t, server, "pncounter", []string{"node-1"})

	rr := doRequest(t, server.handleCRDTs, http.MethodGet, "/crdts", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}

	var resp CRDTListResponse
	decodeResponse(t, rr, &resp)
	if resp.Count != 2 {
		t.Errorf("Expected 2 counters, got %d", resp.Count)
	}
}

func TestGetCRDT(t *testing.T) {
	server := setupTestServer(t)
	id := createCounter(t, server, "gcounter", []string{"node-1"})

	rr := doRequest(t, server.handleCRDTSubpath, http.MethodGet, "/crdts/"+id, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}

	var resp CRDTResponse
	decodeResponse(t, rr, &resp)
	if resp.ID != id {
		t.Errorf("Expected %s, got %q", id, resp.ID)
	}
}

func TestGetCRDT_NotFound(t *testing.T) {
	server := setupTestServer(t)

	rr := doRequest(t, server.handleCRDTSubpath, http.MethodGet, "/crdts/crdt_ghost", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rr.Code)
	}
}

func TestMergeCRDTs(t *testing.T) {
	server := setupTestServer(t)
	first := createCounter(t, server, "gcounter", []string{"node-1"})
	second := createCounter(t, server, "gcounter", []string{"node-2"})

	doRequest(t, server.handleCRDTSubpath, http.MethodPost,
		"/crdts/"+first+"/increment", CRDTOperationRequest{NodeID: "node-1", Amount: 7})
	doRequest(t, server.handleCRDTSubpath, http.MethodPost,
		"/crdts/"+second+"/increment", CRDTOperationRequest{NodeID: "node-2", Amount: 11})

	rr := doRequest(t, server.handleMergeCRDTs, http.MethodPost, "/crdts/merge",
		MergeCRDTRequest{FirstID: first, SecondID: second})
	if rr.Code != http.StatusCreated {
		t.Fatalf("Merge failed: %d, body: %s", rr.Code, rr.Body.String())
	}

	var resp CRDTResponse
	decodeResponse(t, rr, &resp)

	if resp.Value != 18 {
		t.Errorf("Expected merged value 18, got %d", resp.Value)
	}
	if resp.ID == first || resp.ID == second {
		t.Error("Merge must produce a new counter, not mutate an input")
	}
}

func TestMergeCRDTs_Errors(t *testing.T) {
	server := setupTestServer(t)
	gID := createCounter(t, server, "gcounter", []string{"node-1"})
	pnID := createCounter(t, server, "pncounter", []string{"node-1"})

	tests := []struct {
		name       string
		req        MergeCRDTRequest
		wantStatus int
	}{
		{
			name:       "missing IDs",
			req:        MergeCRDTRequest{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown counter",
			req:        MergeCRDTRequest{FirstID: gID, SecondID: "crdt_ghost"},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "kind mismatch",
			req:        MergeCRDTRequest{FirstID: gID, SecondID: pnID},
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, server.handleMergeCRDTs, http.MethodPost, "/crdts/merge", tt.req)
			if rr.Code != tt.wantStatus {
				t.Errorf("Expected %d, got %d, body: %s", tt.wantStatus, rr.Code, rr.Body.String())
			}
		})
	}
}
