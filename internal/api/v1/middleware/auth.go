package middleware

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/office671/nawader/internal/services/session"
	"github.com/office671/nawader/pkg/httpext"
)

type contextKey string

const (
	sessionClaimsKey contextKey = "sessionClaims"
)

// RequireSession rejects requests without a valid session token and stores
// the claims in the request context.
func RequireSession(sessionService *session.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := sessionService.ValidateSession(r)
			if err != nil {
				log.Warn().
					Err(err).
					Str("path", r.URL.Path).
					Msg("Session token rejected")
				httpext.JsonError(w, "Invalid session", http.StatusUnauthorized)
				return
			}
			if claims == nil {
				httpext.JsonError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), sessionClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSessionClaims retrieves the session claims from the request context
func GetSessionClaims(r *http.Request) *session.SessionClaims {
	if claims, ok := r.Context().Value(sessionClaimsKey).(*session.SessionClaims); ok {
		return claims
	}
	return nil
}

// WithSessionClaims is used by tests to bypass token validation
func WithSessionClaims(r *http.Request, claims *session.SessionClaims) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), sessionClaimsKey, claims))
}
