package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/doc-tools/docsnap/config"
)

func authRouter(cfg config.AuthConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Auth(cfg))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func TestAuth_DisabledPassesThrough(t *testing.T) {
	r := authRouter(config.AuthConfig{Enabled: false})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w.Code != http.StatusOK {
		t.Errorf("disabled auth should pass requests, got %d", w.Code)
	}
}

func TestAuth_EnforcesKeys(t *testing.T) {
	cfg := config.AuthConfig{Enabled: true, APIKeys: []string{"k1", "k2"}}
	r := authRouter(cfg)

	tests := []struct {
		name   string
		header string
		value  string
		want   int
	}{
		{"no credentials", "", "", http.StatusUnauthorized},
		{"valid api key header", "X-API-Key", "k1", http.StatusOK},
		{"valid bearer", "Authorization", "Bearer k2", http.StatusOK},
		{"wrong key", "X-API-Key", "nope", http.StatusUnauthorized},
		{"wrong bearer", "Authorization", "Bearer nope", http.StatusUnauthorized},
		{"malformed authorization", "Authorization", "Basic k1", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("got %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestCredentialFrom_PrefersDedicatedHeader(t *testing.T) {
	h := http.Header{}
	h.Set("X-API-Key", "direct")
	h.Set("Authorization", "Bearer other")

	if got := credentialFrom(h); got != "direct" {
		t.Errorf("expected the dedicated header to win, got %q", got)
	}
}
