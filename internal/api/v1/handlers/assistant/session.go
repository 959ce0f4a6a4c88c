package assistant

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/office671/nawader/internal/api/v1/middleware"
	"github.com/office671/nawader/internal/services"
	"github.com/office671/nawader/internal/services/assistant"
	"github.com/office671/nawader/pkg/httpext"
)

// CreateSessionResponse carries the token for clients that cannot rely on cookies
type CreateSessionResponse struct {
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"expires_at"`
	Session   assistant.Snapshot `json:"session"`
}

// HandleCreateSession starts a new assistant session and issues its token
func HandleCreateSession(svc *services.Services, w http.ResponseWriter, r *http.Request) {
	token, claims, err := svc.GetSessionService().CreateSession(r.Context(), w)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create session")
		httpext.JsonError(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	sess := svc.GetRegistry().Create(r.Context(), claims.SessionID)

	log.Info().
		Str("session_id", claims.SessionID).
		Str("client_ip", r.RemoteAddr).
		Msg("Assistant session created")

	httpext.JsonResponse(w, http.StatusCreated, CreateSessionResponse{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		Session:   sess.Snapshot(),
	})
}

// HandleGetSession returns the current snapshot
func HandleGetSession(svc *services.Services, w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(svc, w, r)
	if !ok {
		return
	}
	httpext.JsonResponse(w, http.StatusOK, sess.Snapshot())
}

// HandleDeleteSession tears the session down and clears the cookie
func HandleDeleteSession(svc *services.Services, w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetSessionClaims(r)
	if claims == nil {
		httpext.JsonError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	svc.GetRegistry().Delete(claims.SessionID)
	closed := svc.GetConnectionManager().CloseSession(claims.SessionID)
	svc.GetSessionService().ClearSession(w, r)

	log.Info().
		Str("session_id", claims.SessionID).
		Int("streams_closed", closed).
		Msg("Assistant session deleted")

	w.WriteHeader(http.StatusNoContent)
}

// HandleResetResult returns a settled session to idle
func HandleResetResult(svc *services.Services, w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(svc, w, r)
	if !ok {
		return
	}
	if !sess.Reset() {
		httpext.JsonErrorWithDetails(w, http.StatusConflict, httpext.ErrorResponse{
			Error: "Nothing to reset",
			Code:  "not_settled",
		})
		return
	}
	httpext.JsonResponse(w, http.StatusOK, sess.Snapshot())
}

// HandleDismissNotification removes one notification before it expires
func HandleDismissNotification(svc *services.Services, id string, w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(svc, w, r)
	if !ok {
		return
	}
	if !sess.Dismiss(id) {
		httpext.JsonError(w, "Notification not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// currentSession resolves the caller's session, recreating it when a valid
// token outlives the in-process state
func currentSession(svc *services.Services, w http.ResponseWriter, r *http.Request) (*assistant.Session, bool) {
	claims := middleware.GetSessionClaims(r)
	if claims == nil {
		log.Error().Str("path", r.URL.Path).Msg("Session claims missing from request context")
		httpext.JsonError(w, "Unauthorized", http.StatusUnauthorized)
		return nil, false
	}
	return svc.GetRegistry().GetOrCreate(r.Context(), claims.SessionID), true
}
