package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/doc-tools/docsnap/models"
	"github.com/doc-tools/docsnap/renderer"
)

const version = "0.1.0"

// degradedUtilization is the fraction of the page pool that may be busy
// before the service reports itself degraded. Past this point new renders
// queue on the pool and latency climbs sharply.
const degradedUtilization = 0.8

// Health returns a handler for GET /api/v1/health. It is mounted outside
// the auth group so monitoring probes always reach it.
func Health(rd *renderer.Renderer, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats := rd.Stats()
		c.JSON(http.StatusOK, models.HealthResponse{
			Status:    poolHealth(stats),
			Uptime:    time.Since(startTime).Round(time.Second).String(),
			PoolStats: stats,
			Version:   version,
		})
	}
}

// poolHealth grades the service by page-pool utilization.
func poolHealth(stats models.PoolStats) string {
	if stats.MaxPages > 0 &&
		float64(stats.ActivePages)/float64(stats.MaxPages) > degradedUtilization {
		return "degraded"
	}
	return "healthy"
}
