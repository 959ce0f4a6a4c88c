package catalog

import (
	"net/http"

	"github.com/office671/nawader/internal/domain/assistant/models"
	"github.com/office671/nawader/internal/services/catalog"
	"github.com/office671/nawader/pkg/httpext"
)

type ListResponse struct {
	Services []models.ReferenceItem `json:"services"`
}

// HandleListCatalog returns the reference catalog the analyze action matches against
func HandleListCatalog(catalogService *catalog.Service, w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=300")
	httpext.JsonResponse(w, http.StatusOK, ListResponse{Services: catalogService.Items()})
}
