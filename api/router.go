package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/doc-tools/docsnap/api/handler"
	"github.com/doc-tools/docsnap/api/middleware"
	"github.com/doc-tools/docsnap/config"
	"github.com/doc-tools/docsnap/renderer"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
func NewRouter(rd *renderer.Renderer, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	// Health — no auth required.
	v1.GET("/health", handler.Health(rd, startTime))

	// Protected group — auth + rate limit. Auth is a pass-through when
	// disabled, so the chain shape never changes.
	protected := v1.Group("")
	protected.Use(middleware.Auth(cfg.Auth))
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	// Single-page render
	protected.POST("/render", handler.Render(rd))

	// Sidebar link extraction
	protected.POST("/links", handler.Links(rd, cfg.Sidebar))

	// Batch
	protected.POST("/batch/scrape", handler.PostBatch(rd, cfg.Batch))
	protected.GET("/batch/:id", handler.GetBatch())

	return r
}
