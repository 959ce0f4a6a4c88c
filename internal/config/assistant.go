package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	DefaultGeminiModel = "gemini-3-pro-preview"
	DefaultOpenAIModel = "gpt-4o"
)

// DefaultAcceptedTypes is the upload filter hint offered to clients
var DefaultAcceptedTypes = []string{
	"image/*",
	"application/pdf",
	"text/plain",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// AssistantConfig holds everything the assistant pipeline reads at startup
type AssistantConfig struct {
	Provider        string        `validate:"oneof=gemini openai"`
	Model           string        `validate:"required"`
	APIKey          string        `validate:"required"`
	BaseURL         string        `validate:"omitempty,url"`
	Locale          string        `validate:"oneof=en ar"`
	MaxUploadMB     int           `validate:"min=1,max=100"`
	AcceptedTypes   []string      `validate:"min=1,dive,required"`
	EnforceAccept   bool
	NotifyTTL       time.Duration `validate:"gt=0"`
	DispatchTimeout time.Duration `validate:"gt=0"`
	CatalogPath     string
}

// GetProviderAPIKey returns the credential for provider.
// The key is read once at startup; an empty result is a fatal configuration error for the caller.
func GetProviderAPIKey(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return GetEnvOrDefault("OPENAI_KEY", "")
	default:
		if v := GetEnvOrDefault("GEMINI_API_KEY", ""); v != "" {
			return v
		}
		return GetEnvOrDefault("API_KEY", "")
	}
}

// LoadAssistantConfig reads and validates the assistant configuration
func LoadAssistantConfig() (*AssistantConfig, error) {
	provider := GetEnvOrDefault("ASSISTANT_PROVIDER", ProviderGemini)

	defaultModel := DefaultGeminiModel
	if provider == ProviderOpenAI {
		defaultModel = DefaultOpenAIModel
	}

	cfg := &AssistantConfig{
		Provider:        provider,
		Model:           GetEnvOrDefault("ASSISTANT_MODEL", defaultModel),
		APIKey:          GetProviderAPIKey(provider),
		BaseURL:         GetEnvOrDefault("ASSISTANT_BASE_URL", ""),
		Locale:          GetEnvOrDefault("ASSISTANT_LOCALE", "en"),
		MaxUploadMB:     parseEnvInt("ASSISTANT_MAX_UPLOAD_MB", 10),
		AcceptedTypes:   DefaultAcceptedTypes,
		EnforceAccept:   parseEnvBool("ATTACHMENT_ENFORCE_ACCEPT", false),
		NotifyTTL:       parseEnvMillis("NOTIFY_TTL_MS", 5000*time.Millisecond),
		DispatchTimeout: parseEnvDuration("DISPATCH_TIMEOUT", 120*time.Second),
		CatalogPath:     GetEnvOrDefault("ASSISTANT_CATALOG_PATH", ""),
	}

	if accepted := splitList(GetEnvOrDefault("ATTACHMENT_ACCEPT", "")); len(accepted) > 0 {
		cfg.AcceptedTypes = accepted
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid assistant configuration: %w", err)
	}

	log.Info().
		Str("provider", cfg.Provider).
		Str("model", cfg.Model).
		Str("locale", cfg.Locale).
		Int("max_upload_mb", cfg.MaxUploadMB).
		Msg("Assistant configuration loaded")

	return cfg, nil
}
