package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dd0wney/cluso-consensus/pkg/auth"
)

type contextKey string

const claimsContextKey contextKey = "auth_claims"

// ClaimsFromContext returns the validated claims attached by
// requireAuth, if any
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*auth.Claims)
	return claims, ok
}

// requireAuth validates the bearer token and attaches its claims to
// the request context. When auth is disabled the request passes
// through untouched. Viewers are limited to read-only methods;
// operators and admins may mutate.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.jwtManager == nil {
			next(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			s.respondError(w, http.StatusUnauthorized, "Authorization header required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			s.respondError(w, http.StatusUnauthorized, "Authorization header must be a bearer token")
			return
		}

		claims, err := s.jwtManager.ValidateToken(parts[1])
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				s.respondError(w, http.StatusUnauthorized, "Token expired")
				return
			}
			s.respondError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		if claims.Role == auth.RoleViewer && r.Method != http.MethodGet {
			s.respondError(w, http.StatusForbidden, "Role does not permit write operations")
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		next(w, r.WithContext(ctx))
	}
}
