package config

import (
	"time"

	"github.com/rs/zerolog/log"
)

type RateLimitConfig struct {
	Enabled bool
	MaxHits int
	Window  time.Duration
}

func GetRateLimitConfig(key string) RateLimitConfig {
	enabled := parseEnvBool("RATELIMIT_ENABLED", false)

	configs := map[string]RateLimitConfig{
		"session_create": {
			Enabled: enabled,
			MaxHits: parseEnvInt("RATELIMIT_SESSION_CREATE", 30), // 30 sessions per minute per IP
			Window:  time.Minute,
		},
		"assistant_upload": {
			Enabled: enabled,
			MaxHits: parseEnvInt("RATELIMIT_ASSISTANT_UPLOAD", 30),
			Window:  time.Minute,
		},
		"assistant_submit": {
			Enabled: enabled,
			MaxHits: parseEnvInt("RATELIMIT_ASSISTANT_SUBMIT", 20), // 20 generations per minute
			Window:  time.Minute,
		},
	}

	if config, exists := configs[key]; exists {
		return config
	}

	log.Warn().Str("key", key).Msg("No rate limit config found")
	return RateLimitConfig{Enabled: false}
}
