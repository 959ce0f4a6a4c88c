package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetEnv clears key for the duration of the test
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestGetEnvOrDefault(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		want         string
	}{
		{"returns default when env not set", "NAWADER_TEST_KEY_1", "default", "", "default"},
		{"returns env value when set", "NAWADER_TEST_KEY_2", "default", "custom", "custom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				t.Setenv(tt.key, tt.envValue)
			}
			assert.Equal(t, tt.want, GetEnvOrDefault(tt.key, tt.defaultValue))
		})
	}
}

func TestGetJWTSecretReadsEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")

	assert.Equal(t, []byte("from-env"), GetJWTSecret())
	assert.NoError(t, RequireJWTSecret())
}

func TestLoadDotEnvAppliesToSessionSettings(t *testing.T) {
	unsetEnv(t, "JWT_SECRET")
	unsetEnv(t, "SESSION_COOKIE_NAME")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("JWT_SECRET=from-dotenv\nSESSION_COOKIE_NAME=dotenv_session\n"), 0o600))

	LoadDotEnv(path)

	assert.Equal(t, []byte("from-dotenv"), GetJWTSecret())
	assert.Equal(t, "dotenv_session", GetSessionCookieName())
	assert.NoError(t, RequireJWTSecret())
}

func TestMissingJWTSecret(t *testing.T) {
	unsetEnv(t, "JWT_SECRET")

	assert.ErrorIs(t, RequireJWTSecret(), ErrJWTSecretMissing)

	first := GetJWTSecret()
	assert.Len(t, first, 32)
	assert.Equal(t, first, GetJWTSecret(), "fallback key must be stable within the process")
	assert.NotEqual(t, []byte("your-256-bit-secret"), first)
}

func TestSetJWTSecretOverridesAndRestores(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")

	restore := SetJWTSecret([]byte("pinned"))
	assert.Equal(t, []byte("pinned"), GetJWTSecret())

	restore()
	assert.Equal(t, []byte("from-env"), GetJWTSecret())
}

func TestJWTSecretConcurrentAccess(t *testing.T) {
	restore := SetJWTSecret([]byte("concurrent"))
	defer restore()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, []byte("concurrent"), GetJWTSecret())
		}()
	}
	wg.Wait()
}

func TestSessionCookieName(t *testing.T) {
	unsetEnv(t, "SESSION_COOKIE_NAME")
	assert.Equal(t, "nawader_session", GetSessionCookieName())

	t.Setenv("SESSION_COOKIE_NAME", "custom_session")
	assert.Equal(t, "custom_session", GetSessionCookieName())

	restore := SetSessionCookieName("pinned_session")
	assert.Equal(t, "pinned_session", GetSessionCookieName())
	restore()
	assert.Equal(t, "custom_session", GetSessionCookieName())
}
