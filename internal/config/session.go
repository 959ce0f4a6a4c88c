package config

import (
	"sync"
	"time"
)

const defaultSessionCookieName = "nawader_session"

var (
	cookieNameMu       sync.RWMutex
	cookieNameOverride string
)

// GetSessionCookieName returns SESSION_COOKIE_NAME, defaulting to "nawader_session"
func GetSessionCookieName() string {
	cookieNameMu.RLock()
	override := cookieNameOverride
	cookieNameMu.RUnlock()
	if override != "" {
		return override
	}
	return GetEnvOrDefault("SESSION_COOKIE_NAME", defaultSessionCookieName)
}

// SetSessionCookieName pins the cookie name until the returned restore function is called
func SetSessionCookieName(name string) func() {
	cookieNameMu.Lock()
	previous := cookieNameOverride
	cookieNameOverride = name
	cookieNameMu.Unlock()

	return func() {
		cookieNameMu.Lock()
		cookieNameOverride = previous
		cookieNameMu.Unlock()
	}
}

// GetSessionTTL is how long an idle assistant session survives
func GetSessionTTL() time.Duration {
	return parseEnvDuration("ASSISTANT_SESSION_TTL", time.Hour)
}
