package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/doc-tools/docsnap/models"
	"github.com/doc-tools/docsnap/renderer"
)

// Render returns a handler for POST /api/v1/render.
//
// Single-page renders fail fast and visibly: navigation and timeout errors
// propagate to the client as error responses, unlike batch entries where
// they are recorded per link.
func Render(rd *renderer.Renderer) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		var req models.RenderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.RenderResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		req.Defaults()

		navStart := time.Now()
		page, err := rd.Render(c.Request.Context(), &req)
		navigationMs := time.Since(navStart).Milliseconds()

		if err != nil {
			respondRenderError(c, err, models.TimingInfo{
				TotalMs:      time.Since(totalStart).Milliseconds(),
				NavigationMs: navigationMs,
			})
			return
		}

		c.JSON(http.StatusOK, models.RenderResponse{
			Success:      true,
			RequestedURL: page.RequestedURL,
			FinalURL:     page.FinalURL,
			HTML:         page.HTML,
			CapturedAt:   page.CapturedAt,
			Timing: models.TimingInfo{
				TotalMs:      time.Since(totalStart).Milliseconds(),
				NavigationMs: navigationMs,
			},
		})
	}
}

// respondRenderError maps a render failure to an HTTP status by error code.
func respondRenderError(c *gin.Context, err error, timing models.TimingInfo) {
	var re *models.RenderError
	if !errors.As(err, &re) {
		re = models.NewRenderError(models.ErrCodeInternal, err.Error(), err)
	}

	status := http.StatusBadGateway
	switch re.Code {
	case models.ErrCodeTimeout:
		status = http.StatusGatewayTimeout
	case models.ErrCodeInvalidInput, models.ErrCodeResolution:
		status = http.StatusBadRequest
	case models.ErrCodeInternal, models.ErrCodeBrowserCrash, models.ErrCodePersistence:
		status = http.StatusInternalServerError
	}

	c.JSON(status, models.RenderResponse{
		Success: false,
		Timing:  timing,
		Error:   re.ToDetail(),
	})
}
