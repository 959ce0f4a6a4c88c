package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// LoadDotEnv loads variables from the given .env files (default ".env") without
// overriding values already present in the process environment.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			log.Warn().Err(err).Str("file", f).Msg("Failed to load env file")
			continue
		}
		log.Debug().Str("file", f).Msg("Loaded env file")
	}
}

// GetEnvOrDefault returns the value of an environment variable or a default value
func GetEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func parseEnvInt(key string, defaultValue int) int {
	val := GetEnvOrDefault(key, "")
	if val == "" {
		return defaultValue
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		log.Warn().Str("key", key).Int("default", defaultValue).Msg("Invalid integer value, using default")
		return defaultValue
	}

	return parsed
}

func parseEnvBool(key string, defaultValue bool) bool {
	val := strings.ToLower(GetEnvOrDefault(key, ""))
	switch val {
	case "":
		return defaultValue
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	}
	log.Warn().Str("key", key).Bool("default", defaultValue).Msg("Invalid boolean value, using default")
	return defaultValue
}

func parseEnvMillis(key string, defaultValue time.Duration) time.Duration {
	ms := parseEnvInt(key, -1)
	if ms < 0 {
		return defaultValue
	}
	return time.Duration(ms) * time.Millisecond
}

func parseEnvDuration(key string, defaultValue time.Duration) time.Duration {
	val := GetEnvOrDefault(key, "")
	if val == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		log.Warn().Str("key", key).Dur("default", defaultValue).Msg("Invalid duration value, using default")
		return defaultValue
	}
	return d
}

// splitList splits a comma separated value and drops empty entries
func splitList(value string) []string {
	result := make([]string, 0)
	for _, s := range strings.Split(value, ",") {
		if s = strings.TrimSpace(s); s != "" {
			result = append(result, s)
		}
	}
	return result
}
