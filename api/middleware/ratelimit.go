package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/doc-tools/docsnap/config"
	"github.com/doc-tools/docsnap/models"
)

// visitorTable holds one token bucket per caller identity.
type visitorTable struct {
	mu   sync.Mutex
	cfg  config.RateLimitConfig
	seen map[string]*visitor
}

type visitor struct {
	bucket  *rate.Limiter
	touched time.Time
}

func (t *visitorTable) allow(identity string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	v, ok := t.seen[identity]
	if !ok {
		v = &visitor{
			bucket: rate.NewLimiter(rate.Limit(t.cfg.RequestsPerSecond), t.cfg.Burst),
		}
		t.seen[identity] = v
	}
	v.touched = time.Now()
	return v.bucket.Allow()
}

// sweep drops buckets idle longer than olderThan so one-off callers do not
// accumulate forever.
func (t *visitorTable) sweep(olderThan time.Duration) {
	cutoff := time.Now().Add(-olderThan)
	t.mu.Lock()
	for id, v := range t.seen {
		if v.touched.Before(cutoff) {
			delete(t.seen, id)
		}
	}
	t.mu.Unlock()
}

// RateLimit applies a token bucket per caller identity (API key when
// authenticated, client IP otherwise). Renders are slow and hold a browser
// tab each, so the limit protects the page pool, not just the HTTP layer.
func RateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	table := &visitorTable{cfg: cfg, seen: make(map[string]*visitor)}

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			table.sweep(time.Hour)
		}
	}()

	return func(c *gin.Context) {
		if !table.allow(identityOf(c)) {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": models.ErrorDetail{
					Code:    models.ErrCodeRateLimited,
					Message: "rate limit exceeded, slow down",
				},
			})
			return
		}
		c.Next()
	}
}

// identityOf returns the authenticated identity, or the client IP when the
// request passed through without authentication.
func identityOf(c *gin.Context) string {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(string); ok && id != "" {
			return id
		}
	}
	return c.ClientIP()
}
