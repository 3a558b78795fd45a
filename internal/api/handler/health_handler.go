package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oddscope/clvserver/internal/service"
)

// HealthHandler serves the health endpoint.
type HealthHandler struct {
	healthSvc *service.HealthService
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(healthSvc *service.HealthService) *HealthHandler {
	return &HealthHandler{healthSvc: healthSvc}
}

// Health godoc
// GET /health
// Always answers 200; the snapshot's status field carries the condition.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, h.healthSvc.Snapshot(c.Request.Context()))
}
