package config

import (
	"crypto/rand"
	"errors"
	"os"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrJWTSecretMissing is returned by RequireJWTSecret when JWT_SECRET is unset
var ErrJWTSecretMissing = errors.New("JWT_SECRET is not set")

var (
	jwtSecretMu       sync.RWMutex
	jwtSecretOverride []byte

	ephemeralOnce   sync.Once
	ephemeralSecret []byte
)

// GetJWTSecret returns the key that signs session tokens. JWT_SECRET is read on
// every call so values loaded from .env after startup apply. Without it a random
// per-process key is used and tokens stop validating after a restart.
func GetJWTSecret() []byte {
	jwtSecretMu.RLock()
	override := jwtSecretOverride
	jwtSecretMu.RUnlock()
	if override != nil {
		return override
	}

	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		return []byte(secret)
	}
	return ephemeralJWTSecret()
}

// RequireJWTSecret fails when JWT_SECRET is absent from the environment
func RequireJWTSecret() error {
	if os.Getenv("JWT_SECRET") == "" {
		return ErrJWTSecretMissing
	}
	return nil
}

// SetJWTSecret pins the signing key until the returned restore function is called
func SetJWTSecret(secret []byte) func() {
	jwtSecretMu.Lock()
	previous := jwtSecretOverride
	jwtSecretOverride = secret
	jwtSecretMu.Unlock()

	return func() {
		jwtSecretMu.Lock()
		jwtSecretOverride = previous
		jwtSecretMu.Unlock()
	}
}

func ephemeralJWTSecret() []byte {
	ephemeralOnce.Do(func() {
		secret := make([]byte, 32)
		// crypto/rand.Read never fails as of Go 1.24
		_, _ = rand.Read(secret)
		ephemeralSecret = secret
		log.Warn().Msg("JWT_SECRET not set - signing sessions with a random per-process key")
	})
	return ephemeralSecret
}
