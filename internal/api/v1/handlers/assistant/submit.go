package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/office671/nawader/internal/domain/assistant/models"
	"github.com/office671/nawader/internal/services"
	"github.com/office671/nawader/internal/services/assistant"
	"github.com/office671/nawader/pkg/httpext"
)

// SubmitRequest is the collaborator's submit trigger
type SubmitRequest struct {
	Action string `json:"action" validate:"omitempty,oneof=summarize analyze_services refine_text generic"`
	Prompt string `json:"prompt" validate:"max=20000"`
}

// use a single instance of Validate, it caches struct info
var validate = validator.New(validator.WithRequiredStructEnabled())

// HandleSubmit runs the pipeline for the current session. By default it waits for
// the run to settle; with ?async=true it returns 202 immediately.
func HandleSubmit(svc *services.Services, w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(svc, w, r)
	if !ok {
		return
	}

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn().Err(err).Msg("Client sent malformed JSON request")
		httpext.JsonError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	if err := validate.Struct(req); err != nil {
		log.Warn().Err(err).Msg("Request validation failed")
		httpext.JsonError(w, fmt.Sprintf("Invalid request: %v", err), http.StatusBadRequest)
		return
	}

	messages := svc.GetMessages()

	// the run must outlive a client that disconnects while waiting
	runCtx := context.WithoutCancel(r.Context())
	done, err := sess.Submit(runCtx, assistant.Submission{
		Action: models.ParseAction(req.Action),
		Text:   req.Prompt,
	})
	switch {
	case errors.Is(err, assistant.ErrInputMissing):
		httpext.JsonErrorWithDetails(w, http.StatusBadRequest, httpext.ErrorResponse{
			Error:            "Input missing",
			ErrorDescription: messages.InputMissing,
			Code:             "input_missing",
		})
		return
	case errors.Is(err, assistant.ErrBusy):
		httpext.JsonErrorWithDetails(w, http.StatusConflict, httpext.ErrorResponse{
			Error:            "Request in progress",
			ErrorDescription: messages.Busy,
			Code:             "busy",
		})
		return
	case errors.Is(err, assistant.ErrClosed):
		httpext.JsonError(w, "Session closed", http.StatusGone)
		return
	case err != nil:
		log.Error().Err(err).Msg("Failed to submit request")
		httpext.JsonError(w, "Failed to submit request", http.StatusInternalServerError)
		return
	}

	log.Info().
		Str("session_id", sess.ID).
		Str("action", req.Action).
		Int("prompt_chars", len(req.Prompt)).
		Msg("Received assistant submission")

	if r.URL.Query().Get("async") == "true" {
		httpext.JsonResponse(w, http.StatusAccepted, sess.Snapshot())
		return
	}

	select {
	case <-done:
	case <-r.Context().Done():
		log.Debug().Str("session_id", sess.ID).Msg("Client left before the run settled")
		return
	}

	httpext.JsonResponse(w, http.StatusOK, sess.Snapshot())
}
