package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/oddscope/clvserver/internal/service"
)

// AdminHandler serves the cache and league-mapping maintenance endpoints.
type AdminHandler struct {
	mappingSvc *service.MappingService
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(mappingSvc *service.MappingService) *AdminHandler {
	return &AdminHandler{mappingSvc: mappingSvc}
}

// ClearCache godoc
// DELETE /api/clear-cache?retention_days=7
// Without retention_days the whole cache is cleared.
func (h *AdminHandler) ClearCache(c *gin.Context) {
	retentionDays := 0
	if raw := c.Query("retention_days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(c, http.StatusBadRequest, "ERR_VALIDATION", "retention_days must be a non-negative integer")
			return
		}
		retentionDays = n
	}

	cleared, err := h.mappingSvc.ClearCache(c.Request.Context(), retentionDays)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not clear cache")
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{
		"cleared":       cleared,
		"retentionDays": retentionDays,
	})
}

// CacheStats godoc
// GET /api/cache-stats
func (h *AdminHandler) CacheStats(c *gin.Context) {
	stats, err := h.mappingSvc.CacheStats(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not read cache stats")
		return
	}
	respondSuccess(c, http.StatusOK, stats)
}

// GetMappings godoc
// GET /api/league-mappings
func (h *AdminHandler) GetMappings(c *gin.Context) {
	view, err := h.mappingSvc.Mappings(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not read mappings")
		return
	}
	respondSuccess(c, http.StatusOK, view)
}

// UpdateMappings godoc
// POST /api/league-mappings
// Body: {"mappings": {"my local league": "england-premier-league"}}
func (h *AdminHandler) UpdateMappings(c *gin.Context) {
	var body struct {
		Mappings map[string]string `json:"mappings" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	merged, err := h.mappingSvc.MergeMappings(c.Request.Context(), body.Mappings)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not merge mappings")
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"merged": merged})
}
