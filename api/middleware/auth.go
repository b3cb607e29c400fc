// Package middleware provides the request guards for the docsnap API:
// API-key authentication and per-identity rate limiting.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/doc-tools/docsnap/config"
	"github.com/doc-tools/docsnap/models"
)

// identityKey is the gin context key under which the authenticated caller's
// identity is stored. The rate limiter buckets by this identity; for
// unauthenticated deployments it falls back to the client IP.
const identityKey = "docsnap_identity"

// Auth enforces the configured API keys. Credentials are accepted as
// `X-API-Key: <key>` or `Authorization: Bearer <key>`. When authentication
// is disabled (or no keys are configured) every request passes through.
func Auth(cfg config.AuthConfig) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(cfg.APIKeys))
	for _, k := range cfg.APIKeys {
		if k != "" {
			allowed[k] = struct{}{}
		}
	}

	if !cfg.Enabled || len(allowed) == 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		key := credentialFrom(c.Request.Header)
		if key == "" {
			deny(c, "missing API key: send X-API-Key or Authorization: Bearer")
			return
		}
		if _, ok := allowed[key]; !ok {
			deny(c, "invalid API key")
			return
		}

		c.Set(identityKey, key)
		c.Next()
	}
}

// credentialFrom pulls the API key out of the request headers, preferring
// the dedicated header over the Authorization form.
func credentialFrom(h http.Header) string {
	if key := h.Get("X-API-Key"); key != "" {
		return key
	}
	const bearer = "Bearer "
	if auth := h.Get("Authorization"); strings.HasPrefix(auth, bearer) {
		return strings.TrimSpace(strings.TrimPrefix(auth, bearer))
	}
	return ""
}

func deny(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": models.ErrorDetail{
			Code:    models.ErrCodeUnauthorized,
			Message: msg,
		},
	})
}
