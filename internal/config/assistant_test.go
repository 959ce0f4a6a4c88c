package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAssistantConfigDefaults(t *testing.T) {
	t.Setenv("ASSISTANT_PROVIDER", "")
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := LoadAssistantConfig()
	require.NoError(t, err)

	assert.Equal(t, ProviderGemini, cfg.Provider)
	assert.Equal(t, DefaultGeminiModel, cfg.Model)
	assert.Equal(t, "test-key", cfg.APIKey)
	assert.Equal(t, "en", cfg.Locale)
	assert.Equal(t, 10, cfg.MaxUploadMB)
	assert.Equal(t, 5000*time.Millisecond, cfg.NotifyTTL)
	assert.Equal(t, DefaultAcceptedTypes, cfg.AcceptedTypes)
	assert.False(t, cfg.EnforceAccept)
}

func TestLoadAssistantConfigOverrides(t *testing.T) {
	t.Setenv("ASSISTANT_PROVIDER", "openai")
	t.Setenv("OPENAI_KEY", "sk-test")
	t.Setenv("ASSISTANT_LOCALE", "ar")
	t.Setenv("ASSISTANT_MAX_UPLOAD_MB", "5")
	t.Setenv("NOTIFY_TTL_MS", "250")
	t.Setenv("ATTACHMENT_ACCEPT", "image/*, text/plain")
	t.Setenv("ATTACHMENT_ENFORCE_ACCEPT", "true")

	cfg, err := LoadAssistantConfig()
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, DefaultOpenAIModel, cfg.Model)
	assert.Equal(t, "sk-test", cfg.APIKey)
	assert.Equal(t, "ar", cfg.Locale)
	assert.Equal(t, 5, cfg.MaxUploadMB)
	assert.Equal(t, 250*time.Millisecond, cfg.NotifyTTL)
	assert.Equal(t, []string{"image/*", "text/plain"}, cfg.AcceptedTypes)
	assert.True(t, cfg.EnforceAccept)
}

func TestLoadAssistantConfigMissingKey(t *testing.T) {
	t.Setenv("ASSISTANT_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "")

	_, err := LoadAssistantConfig()
	assert.Error(t, err)
}

func TestLoadAssistantConfigRejectsUnknownProvider(t *testing.T) {
	t.Setenv("ASSISTANT_PROVIDER", "carrier-pigeon")
	t.Setenv("GEMINI_API_KEY", "test-key")

	_, err := LoadAssistantConfig()
	assert.Error(t, err)
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("NAWADER_DOTENV_A=from-file\nNAWADER_DOTENV_B=from-file\n"), 0o600))

	t.Setenv("NAWADER_DOTENV_A", "from-env")
	os.Unsetenv("NAWADER_DOTENV_B")
	defer os.Unsetenv("NAWADER_DOTENV_B")

	LoadDotEnv(path, filepath.Join(dir, "missing.env"))

	assert.Equal(t, "from-env", os.Getenv("NAWADER_DOTENV_A"))
	assert.Equal(t, "from-file", os.Getenv("NAWADER_DOTENV_B"))
}

func TestGetRateLimitConfig(t *testing.T) {
	t.Setenv("RATELIMIT_ENABLED", "true")
	t.Setenv("RATELIMIT_ASSISTANT_SUBMIT", "3")

	cfg := GetRateLimitConfig("assistant_submit")
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 3, cfg.MaxHits)
	assert.Equal(t, time.Minute, cfg.Window)

	assert.False(t, GetRateLimitConfig("unknown").Enabled)
}
