package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/office671/nawader/internal/api/v1/handlers"
	"github.com/office671/nawader/internal/api/v1/handlers/assistant"
	"github.com/office671/nawader/internal/api/v1/handlers/catalog"
	"github.com/office671/nawader/internal/api/v1/handlers/credential"
	"github.com/office671/nawader/internal/api/v1/handlers/websocket"
	"github.com/office671/nawader/internal/api/v1/middleware"
	"github.com/office671/nawader/internal/services"
)

// RegisterRoutes mounts the health check and the v1 assistant API on r
func RegisterRoutes(r *mux.Router, svc *services.Services) {
	requireSession := middleware.RequireSession(svc.GetSessionService())

	// authed wraps a handler with session auth and, when limitKey is set, rate limiting
	authed := func(limitKey string, h http.HandlerFunc) http.Handler {
		var next http.Handler = h
		if limitKey != "" {
			next = middleware.RateLimit(limitKey)(next)
		}
		return requireSession(next)
	}

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		handlers.HandleHealth(svc, w, r)
	}).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()

	v1.Handle("/sessions", middleware.RateLimit("session_create")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assistant.HandleCreateSession(svc, w, r)
	}))).Methods(http.MethodPost)

	v1.Handle("/sessions/current", authed("", func(w http.ResponseWriter, r *http.Request) {
		assistant.HandleGetSession(svc, w, r)
	})).Methods(http.MethodGet)

	v1.Handle("/sessions/current", authed("", func(w http.ResponseWriter, r *http.Request) {
		assistant.HandleDeleteSession(svc, w, r)
	})).Methods(http.MethodDelete)

	v1.Handle("/sessions/current/attachment", authed("assistant_upload", func(w http.ResponseWriter, r *http.Request) {
		assistant.HandleSelectAttachment(svc, w, r)
	})).Methods(http.MethodPut)

	v1.Handle("/sessions/current/attachment", authed("", func(w http.ResponseWriter, r *http.Request) {
		assistant.HandleClearAttachment(svc, w, r)
	})).Methods(http.MethodDelete)

	v1.Handle("/sessions/current/submit", authed("assistant_submit", func(w http.ResponseWriter, r *http.Request) {
		assistant.HandleSubmit(svc, w, r)
	})).Methods(http.MethodPost)

	v1.Handle("/sessions/current/result", authed("", func(w http.ResponseWriter, r *http.Request) {
		assistant.HandleResetResult(svc, w, r)
	})).Methods(http.MethodDelete)

	v1.Handle("/sessions/current/notifications/{id}", authed("", func(w http.ResponseWriter, r *http.Request) {
		assistant.HandleDismissNotification(svc, mux.Vars(r)["id"], w, r)
	})).Methods(http.MethodDelete)

	v1.Handle("/sessions/current/ws", authed("", func(w http.ResponseWriter, r *http.Request) {
		websocket.HandleSessionStream(svc, w, r)
	})).Methods(http.MethodGet)

	v1.HandleFunc("/catalog", func(w http.ResponseWriter, r *http.Request) {
		catalog.HandleListCatalog(svc.GetCatalogService(), w, r)
	}).Methods(http.MethodGet)

	v1.Handle("/credential/selection", authed("", func(w http.ResponseWriter, r *http.Request) {
		credential.HandleMarkSelected(svc.GetCredentialHost(), w, r)
	})).Methods(http.MethodPost)
}
