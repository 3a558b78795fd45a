package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oddscope/clvserver/internal/api/handler"
	"github.com/oddscope/clvserver/internal/config"
	"github.com/oddscope/clvserver/internal/service"
)

// RouterDeps bundles every dependency needed to build the router.
// Populated once in main() and passed to SetupRouter.
type RouterDeps struct {
	JobSvc     *service.JobService
	MappingSvc *service.MappingService
	HealthSvc  *service.HealthService
	Cfg        *config.Config
}

// SetupRouter creates and configures the main Gin engine with all routes,
// middleware, and CORS rules.
func SetupRouter(deps RouterDeps) *gin.Engine {
	if deps.Cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	// ── CORS ─────────────────────────────────────────────────────────────────
	r.Use(corsMiddleware())

	// ── Handlers ─────────────────────────────────────────────────────────────
	jobH := handler.NewJobHandler(deps.JobSvc)
	adminH := handler.NewAdminHandler(deps.MappingSvc)
	healthH := handler.NewHealthHandler(deps.HealthSvc)

	// ── Health check ─────────────────────────────────────────────────────────
	r.GET("/health", healthH.Health)

	api := r.Group("/api")
	{
		api.POST("/batch-closing-odds", jobH.SubmitBatch)
		api.GET("/job-status/:jobID", jobH.JobStatus)

		api.DELETE("/clear-cache", adminH.ClearCache)
		api.GET("/cache-stats", adminH.CacheStats)

		api.GET("/league-mappings", adminH.GetMappings)
		api.POST("/league-mappings", adminH.UpdateMappings)
	}

	return r
}

// ── CORS helper ───────────────────────────────────────────────────────────────

// corsMiddleware sets permissive CORS headers. The service binds to loopback
// by default and is consumed by a local extension, so any origin is fine.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
