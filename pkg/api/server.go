package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dd0wney/cluso-consensus/pkg/auth"
	"github.com/dd0wney/cluso-consensus/pkg/cluster"
	"github.com/dd0wney/cluso-consensus/pkg/crdt"
	"github.com/dd0wney/cluso-consensus/pkg/health"
	"github.com/dd0wney/cluso-consensus/pkg/logging"
	"github.com/dd0wney/cluso-consensus/pkg/metrics"
)

// Construction errors
var (
	ErrNilEngine    = errors.New("api: engine cannot be nil")
	ErrAuthDisabled = errors.New("api: authentication is not enabled")
)

const defaultMaxBodyBytes = 1 << 20 // 1MB

// Server is the HTTP front end of the consensus engine. It owns no
// consensus state of its own; every request is translated into an
// engine call and the result mapped back to a response type.
type Server struct {
	engine          *cluster.Engine
	logger          logging.Logger
	metricsRegistry *metrics.Registry
	healthChecker   *health.HealthChecker
	jwtManager      *auth.JWTManager
	maxBodyBytes    int64
	startTime       time.Time

	metricsStopCh   chan struct{}
	metricsStopOnce sync.Once
	metricsWg       sync.WaitGroup
}

// Options configures the API server. Zero values select safe
// defaults; auth is disabled unless AuthSecret is set.
type Options struct {
	Logger       logging.Logger    // Structured logger (nil uses a no-op logger)
	Metrics      *metrics.Registry // Metrics registry (nil creates a fresh one)
	AuthSecret   string            // HMAC secret; empty disables authentication
	TokenTTL     time.Duration     // Issued token lifetime (default 1h)
	MaxBodyBytes int64             // Request body cap in bytes (default 1MB)
}

// NewServer creates an API server wrapping the given engine
func NewServer(engine *cluster.Engine, opts Options) (*Server, error) {
	if engine == nil {
		return nil, ErrNilEngine
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	registry := opts.Metrics
	if registry == nil {
		registry = metrics.NewRegistry()
	}

	var jwtManager *auth.JWTManager
	if opts.AuthSecret != "" {
		ttl := opts.TokenTTL
		if ttl <= 0 {
			ttl = time.Hour
		}
		manager, err := auth.NewJWTManager(opts.AuthSecret, ttl)
		if err != nil {
			return nil, err
		}
		jwtManager = manager
	}

	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}

	s := &Server{
		engine:          engine,
		logger:          logger,
		metricsRegistry: registry,
		healthChecker:   health.NewHealthChecker(),
		jwtManager:      jwtManager,
		maxBodyBytes:    maxBody,
		startTime:       time.Now(),
		metricsStopCh:   make(chan struct{}),
	}
	s.registerHealthChecks()

	return s, nil
}

// registerHealthChecks wires the engine probes into the health
// checker. Liveness only proves the process responds; readiness and
// the full report inspect engine state.
func (s *Server) registerHealthChecks() {
	s.healthChecker.RegisterLivenessCheck("api", func() health.Check {
		return health.SimpleCheck("api")
	})

	engineCheck := health.EngineCheck(func() (int, int) {
		return len(s.engine.ListNodes()), len(s.engine.ListClusters())
	})
	s.healthChecker.RegisterReadinessCheck("engine", engineCheck)
	s.healthChecker.RegisterCheck("engine", engineCheck)

	quorumCheck := health.QuorumCheck(func() (int, int) {
		clusters := s.engine.ListClusters()
		quorate := 0
		for i := range clusters {
			m, err := s.engine.GetClusterMetrics(clusters[i].ID)
			if err != nil {
				continue
			}
			if m.QuorumHealth >= 1 {
				quorate++
			}
		}
		return len(clusters), quorate
	})
	s.healthChecker.RegisterReadinessCheck("quorum", quorumCheck)
	s.healthChecker.RegisterCheck("quorum", quorumCheck)

	s.healthChecker.RegisterCheck("split_brain", health.SplitBrainCheck(func() (int, int) {
		clusters := s.engine.ListClusters()
		detected := 0
		for i := range clusters {
			report, err := s.engine.DetectSplitBrain(clusters[i].ID)
			if err != nil {
				continue
			}
			if report.Detected {
				detected++
			}
		}
		return len(clusters), detected
	}))

	s.healthChecker.RegisterCheck("memory", health.MemoryCheck(func() (uint64, uint64) {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		return m.Alloc, m.Sys
	}))
}

// Handler returns the fully assembled HTTP handler. Health and
// metrics endpoints are always open; the consensus API requires a
// bearer token when auth is configured.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.healthChecker.HTTPHandler())
	mux.HandleFunc("/health/ready", s.healthChecker.ReadinessHandler())
	mux.HandleFunc("/health/live", s.healthChecker.LivenessHandler())
	mux.Handle("/metrics", promhttp.HandlerFor(
		s.metricsRegistry.GetPrometheusRegistry(),
		promhttp.HandlerOpts{},
	))

	mux.HandleFunc("/nodes", s.requireAuth(s.handleNodes))
	mux.HandleFunc("/nodes/", s.requireAuth(s.handleNodeSubpath))
	mux.HandleFunc("/clusters", s.requireAuth(s.handleClusters))
	mux.HandleFunc("/clusters/", s.requireAuth(s.handleClusterSubpath))
	mux.HandleFunc("/proposals/", s.requireAuth(s.handleProposalByID))
	mux.HandleFunc("/crdts", s.requireAuth(s.handleCRDTs))
	mux.HandleFunc("/crdts/merge", s.requireAuth(s.handleMergeCRDTs))
	mux.HandleFunc("/crdts/", s.requireAuth(s.handleCRDTSubpath))

	var handler http.HandlerFunc = mux.ServeHTTP
	handler = s.metricsMiddleware(handler)
	handler = s.bodySizeLimitMiddleware(handler)
	handler = s.corsMiddleware(handler)
	handler = s.loggingMiddleware(handler)
	handler = s.panicRecoveryMiddleware(handler)
	return handler
}

// AuthEnabled reports whether the server requires bearer tokens
func (s *Server) AuthEnabled() bool {
	return s.jwtManager != nil
}

// IssueToken generates a token for the given subject and role. It
// fails when auth is disabled.
func (s *Server) IssueToken(subject, role string) (string, error) {
	if s.jwtManager == nil {
		return "", ErrAuthDisabled
	}
	return s.jwtManager.GenerateToken(subject, role)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("response encoding failed", logging.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, ErrorResponse{Error: message})
}

// respondEngineError translates engine sentinels into HTTP status
// codes. Unclassified errors are sanitized before leaving the server.
func (s *Server) respondEngineError(w http.ResponseWriter, operation string, err error) {
	switch {
	case isNotFoundError(err):
		s.respondError(w, http.StatusNotFound, err.Error())
	case isConflictError(err):
		s.respondError(w, http.StatusConflict, err.Error())
	case isUnprocessableError(err):
		s.respondError(w, http.StatusUnprocessableEntity, err.Error())
	case isBadRequestError(err):
		s.respondError(w, http.StatusBadRequest, err.Error())
	default:
		s.respondError(w, http.StatusInternalServerError, s.sanitizeError(operation, err))
	}
}

func isNotFoundError(err error) bool {
	return errors.Is(err, cluster.ErrNodeNotFound) ||
		errors.Is(err, cluster.ErrClusterNotFound) ||
		errors.Is(err, cluster.ErrProposalNotFound) ||
		errors.Is(err, cluster.ErrNoElections) ||
		errors.Is(err, crdt.ErrNotFound)
}

func isConflictError(err error) bool {
	return errors.Is(err, cluster.ErrDuplicateNode) ||
		errors.Is(err, cluster.ErrNoLeader)
}

func isUnprocessableError(err error) bool {
	return errors.Is(err, crdt.ErrInvalidAmount) ||
		errors.Is(err, crdt.ErrUnsupportedOperation) ||
		errors.Is(err, crdt.ErrKindMismatch)
}

func isBadRequestError(err error) bool {
	return errors.Is(err, cluster.ErrUnknownRole) ||
		errors.Is(err, cluster.ErrUnknownStatus) ||
		errors.Is(err, cluster.ErrUnknownProtocol) ||
		errors.Is(err, cluster.ErrInvalidNodeID) ||
		errors.Is(err, cluster.ErrInvalidClusterName) ||
		errors.Is(err, cluster.ErrNoMembers) ||
		errors.Is(err, cluster.ErrDuplicateMember) ||
		errors.Is(err, cluster.ErrInvalidMemberID) ||
		errors.Is(err, cluster.ErrInvalidQuorumSize) ||
		errors.Is(err, cluster.ErrInvalidReplicationFactor) ||
		errors.Is(err, crdt.ErrUnknownKind) ||
		errors.Is(err, crdt.ErrInvalidNodeID)
}
