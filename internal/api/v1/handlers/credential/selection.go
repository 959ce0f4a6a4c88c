package credential

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/office671/nawader/internal/services/credential"
	"github.com/office671/nawader/pkg/httpext"
)

// HandleMarkSelected is called by the host once the user has picked a credential
func HandleMarkSelected(host *credential.RedisHost, w http.ResponseWriter, r *http.Request) {
	if host == nil {
		httpext.JsonErrorWithDetails(w, http.StatusNotFound, httpext.ErrorResponse{
			Error: "Credential host not configured",
			Code:  "no_host",
		})
		return
	}

	if err := host.MarkSelected(r.Context()); err != nil {
		log.Error().Err(err).Msg("Failed to record credential selection")
		httpext.JsonError(w, "Failed to record credential selection", http.StatusInternalServerError)
		return
	}

	log.Info().Msg("Credential selection recorded")
	w.WriteHeader(http.StatusNoContent)
}
