package config

// GetAllowedOrigins lists origins allowed to open snapshot streams.
// An empty list allows any origin.
func GetAllowedOrigins() []string {
	return splitList(GetEnvOrDefault("WS_ALLOWED_ORIGINS", ""))
}
