package handler

import (
	"net/http"

	"orderdesk/internal/service"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	healthService *service.HealthChecker
}

// NewHealthHandler creates a new HealthHandler instance
func NewHealthHandler(healthService *service.HealthChecker) *HealthHandler {
	return &HealthHandler{
		healthService: healthService,
	}
}

// HandleHealth handles GET requests to the /health endpoint
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	// Perform health check
	healthStatus := h.healthService.CheckHealth(r.Context())

	// Determine HTTP status code based on health status; degraded still serves traffic
	status := http.StatusOK
	switch healthStatus.Status {
	case service.StatusHealthy, service.StatusDegraded:
	case service.StatusUnhealthy:
		status = http.StatusServiceUnavailable
	default:
		status = http.StatusInternalServerError
	}

	// Encode and send health status response
	WriteJSON(w, status, healthStatus)
}
