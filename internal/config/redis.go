package config

import (
	"github.com/rs/zerolog/log"
)

func GetRedisURL() string {
	value := GetEnvOrDefault("REDIS_URL", "")
	if value == "" {
		log.Warn().Msg("REDIS_URL not set - falling back to in-memory stores")
	} else {
		log.Debug().Msg("Redis URL successfully loaded")
	}
	return value
}

func GetRedisPassword() string {
	return GetEnvOrDefault("REDIS_PASSWORD", "")
}
