package middleware

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/office671/nawader/internal/config"
	"github.com/office671/nawader/pkg/httpext"
	"github.com/office671/nawader/pkg/ratelimit"
)

func RateLimit(limitKey string) func(http.Handler) http.Handler {
	cfg := config.GetRateLimitConfig(limitKey)
	return RateLimitWith(limitKey, cfg)
}

// RateLimitWith applies an explicit configuration; RateLimit reads it from the environment
func RateLimitWith(limitKey string, cfg config.RateLimitConfig) func(http.Handler) http.Handler {
	limiter := ratelimit.NewLimiter(cfg.Window, cfg.MaxHits)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			key := callerKey(r)
			if !limiter.Allow(key) {
				log.Warn().
					Str("caller", key).
					Str("limit", limitKey).
					Msg("Rate limit exceeded")
				w.Header().Set("Retry-After", strconv.Itoa(int(cfg.Window.Seconds())))
				httpext.JsonError(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(limiter.Remaining(key)))
			next.ServeHTTP(w, r)
		})
	}
}

// callerKey prefers the session so users behind one NAT do not share a budget
func callerKey(r *http.Request) string {
	if claims := GetSessionClaims(r); claims != nil {
		return "session:" + claims.SessionID
	}

	// Use X-Forwarded-For if behind proxy, otherwise remote address
	ip := r.Header.Get("X-Forwarded-For")
	if ip == "" {
		ip = r.RemoteAddr
	}
	return "ip:" + ip
}
