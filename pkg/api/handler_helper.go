package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/dd0wney/cluso-consensus/pkg/logging"
	"github.com/dd0wney/cluso-consensus/pkg/validation"
)

// sanitizeError converts an internal error to a user-safe message.
// The full error is logged; the client sees only the operation name.
func (s *Server) sanitizeError(operation string, err error) string {
	if err == nil {
		return ""
	}
	s.logger.Error("request failed",
		logging.String("operation", operation),
		logging.Error(err))
	return fmt.Sprintf("%s failed", operation)
}

// requestDecoder decodes and validates request bodies.
// It provides a fluent interface for common request handling patterns.
type requestDecoder struct {
	r          *http.Request
	w          http.ResponseWriter
	server     *Server
	err        error
	statusCode int
}

// newRequestDecoder creates a decoder for the given request
func (s *Server) newRequestDecoder(w http.ResponseWriter, r *http.Request) *requestDecoder {
	return &requestDecoder{
		r:      r,
		w:      w,
		server: s,
	}
}

// DecodeJSON decodes the request body into the provided struct.
// Returns the decoder for chaining. Check HasError() after calling.
func (rd *requestDecoder) DecodeJSON(v any) *requestDecoder {
	if rd.err != nil {
		return rd
	}
	if err := json.NewDecoder(rd.r.Body).Decode(v); err != nil {
		rd.err = fmt.Errorf("invalid request body: %w", err)
		rd.statusCode = http.StatusBadRequest
	}
	return rd
}

// ValidateNode validates a node registration request.
// Returns the decoder for chaining.
func (rd *requestDecoder) ValidateNode(req *RegisterNodeRequest) *requestDecoder {
	if rd.err != nil {
		return rd
	}
	validationReq := validation.NodeRequest{
		ID:       req.ID,
		Addr:     req.Addr,
		Region:   req.Region,
		Metadata: req.Metadata,
	}
	if err := validation.ValidateNodeRequest(&validationReq); err != nil {
		rd.err = err
		rd.statusCode = http.StatusBadRequest
	}
	return rd
}

// ValidateCluster validates a cluster creation request.
// Returns the decoder for chaining.
func (rd *requestDecoder) ValidateCluster(req *CreateClusterRequest) *requestDecoder {
	if rd.err != nil {
		return rd
	}
	validationReq := validation.ClusterRequest{
		Name:              req.Name,
		Protocol:          req.Protocol,
		Nodes:             req.Nodes,
		QuorumSize:        req.QuorumSize,
		ReplicationFactor: req.ReplicationFactor,
	}
	if err := validation.ValidateClusterRequest(&validationReq); err != nil {
		rd.err = err
		rd.statusCode = http.StatusBadRequest
	}
	return rd
}

// ValidatePayload validates an opaque payload's size.
// Returns the decoder for chaining.
func (rd *requestDecoder) ValidatePayload(payload []byte) *requestDecoder {
	if rd.err != nil {
		return rd
	}
	if err := validation.ValidatePayloadSize(len(payload)); err != nil {
		rd.err = err
		rd.statusCode = http.StatusBadRequest
	}
	return rd
}

// HasError returns true if any error occurred during decoding/validation.
func (rd *requestDecoder) HasError() bool {
	return rd.err != nil
}

// Error returns the error if any occurred.
func (rd *requestDecoder) Error() error {
	return rd.err
}

// RespondError sends the error response and returns true if there was an error.
// Returns false if no error occurred.
func (rd *requestDecoder) RespondError() bool {
	if rd.err == nil {
		return false
	}
	rd.server.respondError(rd.w, rd.statusCode, rd.err.Error())
	return true
}

// pathExtractor extracts identifiers from URL paths.
type pathExtractor struct {
	w      http.ResponseWriter
	server *Server
	path   string
}

// newPathExtractor creates a path extractor for the given request
func (s *Server) newPathExtractor(w http.ResponseWriter, r *http.Request) *pathExtractor {
	return &pathExtractor{
		w:      w,
		server: s,
		path:   r.URL.Path,
	}
}

// ExtractID extracts a single identifier after the given prefix.
// Returns the ID and true on success, or "" and false on error
// (error response sent). Trailing subpath segments are rejected.
func (pe *pathExtractor) ExtractID(prefix string) (string, bool) {
	id, rest, ok := pe.split(prefix)
	if !ok {
		return "", false
	}
	if rest != "" {
		pe.server.respondError(pe.w, http.StatusNotFound, "Unknown resource path")
		return "", false
	}
	return id, true
}

// ExtractParts extracts an identifier and an optional subresource
// after the given prefix. Returns ok=false on error (response sent).
func (pe *pathExtractor) ExtractParts(prefix string) (id, subresource string, ok bool) {
	id, rest, ok := pe.split(prefix)
	if !ok {
		return "", "", false
	}
	if strings.Contains(rest, "/") {
		pe.server.respondError(pe.w, http.StatusNotFound, "Unknown resource path")
		return "", "", false
	}
	return id, rest, true
}

func (pe *pathExtractor) split(prefix string) (id, rest string, ok bool) {
	if !strings.HasPrefix(pe.path, prefix) {
		pe.server.respondError(pe.w, http.StatusBadRequest, "Invalid path")
		return "", "", false
	}
	remainder := strings.TrimSuffix(pe.path[len(prefix):], "/")
	id, rest, _ = strings.Cut(remainder, "/")
	if id == "" {
		pe.server.respondError(pe.w, http.StatusBadRequest, "Missing identifier")
		return "", "", false
	}
	return id, rest, true
}

// methodRouter routes requests based on HTTP method.
// Provides a cleaner alternative to switch statements for method routing.
type methodRouter struct {
	w       http.ResponseWriter
	r       *http.Request
	server  *Server
	handled bool
}

// newMethodRouter creates a method router for the given request
func (s *Server) newMethodRouter(w http.ResponseWriter, r *http.Request) *methodRouter {
	return &methodRouter{
		w:      w,
		r:      r,
		server: s,
	}
}

// Get handles GET requests with the provided handler.
func (mr *methodRouter) Get(handler func()) *methodRouter {
	if !mr.handled && mr.r.Method == http.MethodGet {
		handler()
		mr.handled = true
	}
	return mr
}

// Post handles POST requests with the provided handler.
func (mr *methodRouter) Post(handler func()) *methodRouter {
	if !mr.handled && mr.r.Method == http.MethodPost {
		handler()
		mr.handled = true
	}
	return mr
}

// Put handles PUT requests with the provided handler.
func (mr *methodRouter) Put(handler func()) *methodRouter {
	if !mr.handled && mr.r.Method == http.MethodPut {
		handler()
		mr.handled = true
	}
	return mr
}

// NotAllowed sends a 405 response if no method matched.
func (mr *methodRouter) NotAllowed() {
	if !mr.handled {
		mr.server.respondError(mr.w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
