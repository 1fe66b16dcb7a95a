package api

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/dd0wney/cluso-consensus/pkg/logging"
)

// panicRecoveryMiddleware recovers from handler panics and responds
// with a generic 500 instead of tearing down the connection
func (s *Server) panicRecoveryMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered",
					logging.String("method", r.Method),
					logging.String("path", r.URL.Path),
					logging.String("panic", fmt.Sprintf("%v", rec)),
					logging.String("stack", string(debug.Stack())))
				s.respondError(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next(w, r)
	}
}

// loggingMiddleware logs each request with its duration
func (s *Server) loggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next(w, r)
		s.logger.Debug("request handled",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Duration("duration", time.Since(start)))
	}
}

// corsMiddleware adds CORS headers and short-circuits preflight requests
func (s *Server) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

// bodySizeLimitMiddleware rejects oversized requests early and caps
// reads for requests without a declared length
func (s *Server) bodySizeLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > s.maxBodyBytes {
			s.respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Request body exceeds %d bytes", s.maxBodyBytes))
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
		next(w, r)
	}
}
