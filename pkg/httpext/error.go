package httpext

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// ErrorResponse represents a standardised JSON error response
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
	Code             string `json:"code,omitempty"`
}

// JsonError writes a JSON error response with the specified status code
func JsonError(w http.ResponseWriter, message string, code int) {
	JsonErrorWithDetails(w, code, ErrorResponse{Error: message})
}

// JsonErrorWithDetails writes a detailed JSON error response with an optional description and machine code
func JsonErrorWithDetails(w http.ResponseWriter, code int, err ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if encErr := json.NewEncoder(w).Encode(err); encErr != nil {
		log.Error().Err(encErr).Int("status", code).Msg("Failed to encode error response")
		http.Error(w, "{\"error\":\"Internal Server Error\"}", http.StatusInternalServerError)
	}
}

// JsonResponse writes v as a JSON body with the given status code
func JsonResponse(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Int("status", code).Msg("Failed to encode response")
	}
}
