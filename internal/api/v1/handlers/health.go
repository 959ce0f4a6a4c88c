package handlers

import (
	"net/http"

	"github.com/office671/nawader/internal/services"
	"github.com/office671/nawader/pkg/httpext"
)

type HealthResponse struct {
	Status      string `json:"status"`
	Backend     string `json:"backend"`
	Redis       bool   `json:"redis"`
	Sessions    int    `json:"sessions"`
	Connections int    `json:"connections"`
}

// HandleHealth reports liveness. Redis is optional, so its absence is not a failure.
func HandleHealth(svc *services.Services, w http.ResponseWriter, r *http.Request) {
	redisUp := false
	if rs := svc.GetRedisService(); rs != nil {
		redisUp = rs.Ping(r.Context()) == nil
	}

	httpext.JsonResponse(w, http.StatusOK, HealthResponse{
		Status:      "ok",
		Backend:     svc.GetDispatcher().String(),
		Redis:       redisUp,
		Sessions:    svc.GetRegistry().Len(),
		Connections: svc.GetConnectionManager().GetConnectionCount(),
	})
}
