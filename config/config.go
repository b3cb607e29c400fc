package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Renderer  RendererConfig
	Sidebar   SidebarConfig
	Batch     BatchConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// MaxPages is the page pool capacity (max concurrent tabs).
	MaxPages int // default: 8

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// UserAgent is sent with every navigation. Empty keeps Chrome's own.
	UserAgent string
}

// RendererConfig controls rendering behavior.
type RendererConfig struct {
	// DefaultTimeout is the per-render deadline when the request does not
	// set one.
	DefaultTimeout time.Duration // default: 60s

	// MaxTimeout is the maximum allowed timeout from the client.
	MaxTimeout time.Duration // default: 120s

	// SettleWindow is the quiet period that must elapse with no network
	// requests (or no DOM mutations) before the page counts as settled.
	SettleWindow time.Duration // default: 300ms

	// SettleDiff is the DOM-diff threshold for the mutation-settle wait.
	SettleDiff float64 // default: 0.1

	// PostRenderDelay is an extra fixed wait after the settle condition,
	// for sites that inject content on a timer.
	PostRenderDelay time.Duration // default: 0

	// BlockedResourceTypes lists resource types blocked during navigation
	// to speed up batch renders. default: ["Image", "Font", "Media"]
	BlockedResourceTypes []string

	// DomainMemoryTTL is how long the renderer remembers that a host
	// did (or did not) need the browser. default: 24h
	DomainMemoryTTL time.Duration
}

// SidebarConfig controls sidebar link extraction.
type SidebarConfig struct {
	// Selectors is the ordered list of CSS selectors tried when locating
	// the navigational region. The first selector with a match wins.
	Selectors []string
}

// BatchConfig controls batch scraping.
type BatchConfig struct {
	// DefaultConcurrency is the number of simultaneous renders per batch
	// when the request does not set one. 1 means sequential.
	DefaultConcurrency int // default: 1

	// MaxLinks caps the number of links accepted per batch.
	MaxLinks int // default: 500
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: false

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per API key.
	Burst int // default: 10
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// DefaultSidebarSelectors cover the common documentation frameworks:
// Docusaurus sidebars first, then generic aside/nav landmarks.
var DefaultSidebarSelectors = []string{
	"nav.theme-doc-sidebar-menu",
	"ul.theme-doc-sidebar-menu",
	"aside nav",
	"nav[aria-label]",
	"aside",
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("DOCSNAP_HOST", "0.0.0.0"),
			Port: envIntOr("DOCSNAP_PORT", 8080),
			Mode: envOr("DOCSNAP_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:   envBoolOr("DOCSNAP_HEADLESS", true),
			MaxPages:   envIntOr("DOCSNAP_MAX_PAGES", 8),
			NoSandbox:  envBoolOr("DOCSNAP_NO_SANDBOX", false),
			BrowserBin: os.Getenv("DOCSNAP_BROWSER_BIN"),
			UserAgent:  os.Getenv("DOCSNAP_USER_AGENT"),
		},
		Renderer: RendererConfig{
			DefaultTimeout:  envDurationOr("DOCSNAP_DEFAULT_TIMEOUT", 60*time.Second),
			MaxTimeout:      envDurationOr("DOCSNAP_MAX_TIMEOUT", 120*time.Second),
			SettleWindow:    envDurationOr("DOCSNAP_SETTLE_WINDOW", 300*time.Millisecond),
			SettleDiff:      envFloatOr("DOCSNAP_SETTLE_DIFF", 0.1),
			PostRenderDelay: envDurationOr("DOCSNAP_POST_RENDER_DELAY", 0),
			BlockedResourceTypes: envSliceOr("DOCSNAP_BLOCKED_RESOURCES", []string{
				"Image", "Font", "Media",
			}),
			DomainMemoryTTL: envDurationOr("DOCSNAP_DOMAIN_MEMORY_TTL", 24*time.Hour),
		},
		Sidebar: SidebarConfig{
			Selectors: envSliceOr("DOCSNAP_SIDEBAR_SELECTORS", DefaultSidebarSelectors),
		},
		Batch: BatchConfig{
			DefaultConcurrency: envIntOr("DOCSNAP_BATCH_CONCURRENCY", 1),
			MaxLinks:           envIntOr("DOCSNAP_BATCH_MAX_LINKS", 500),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("DOCSNAP_AUTH_ENABLED", false),
			APIKeys: envSliceOr("DOCSNAP_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("DOCSNAP_RATE_RPS", 5.0),
			Burst:             envIntOr("DOCSNAP_RATE_BURST", 10),
		},
		Log: LogConfig{
			Level:  envOr("DOCSNAP_LOG_LEVEL", "info"),
			Format: envOr("DOCSNAP_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
