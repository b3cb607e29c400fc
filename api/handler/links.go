package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/doc-tools/docsnap/config"
	"github.com/doc-tools/docsnap/links"
	"github.com/doc-tools/docsnap/models"
	"github.com/doc-tools/docsnap/renderer"
)

// Links returns a handler for POST /api/v1/links: render the page, locate
// the sidebar, and return its links resolved against the base URL.
//
// A page without a sidebar is a valid degenerate case and yields an empty
// list, not an error.
func Links(rd *renderer.Renderer, sidebarCfg config.SidebarConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		var req models.LinksRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.LinksResponse{
				Success: false,
				Links:   []models.LinkDescriptor{},
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}

		renderReq := &models.RenderRequest{URL: req.URL, RenderOptions: req.Options}
		renderReq.Defaults()

		navStart := time.Now()
		page, err := rd.Render(c.Request.Context(), renderReq)
		navigationMs := time.Since(navStart).Milliseconds()

		if err != nil {
			respondRenderError(c, err, models.TimingInfo{
				TotalMs:      time.Since(totalStart).Milliseconds(),
				NavigationMs: navigationMs,
			})
			return
		}

		// Default the resolution base to where the page actually ended up.
		base := req.BaseURL
		if base == "" {
			base = page.FinalURL
		}

		extractStart := time.Now()
		found, err := links.NewExtractor(page, sidebarCfg.Selectors...).Links(base)
		extractionMs := time.Since(extractStart).Milliseconds()

		if err != nil {
			respondRenderError(c, err, models.TimingInfo{
				TotalMs:      time.Since(totalStart).Milliseconds(),
				NavigationMs: navigationMs,
				ExtractionMs: extractionMs,
			})
			return
		}

		c.JSON(http.StatusOK, models.LinksResponse{
			Success: true,
			URL:     page.FinalURL,
			Links:   found,
			Total:   len(found),
			Timing: models.TimingInfo{
				TotalMs:      time.Since(totalStart).Milliseconds(),
				NavigationMs: navigationMs,
				ExtractionMs: extractionMs,
			},
		})
	}
}
