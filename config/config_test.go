package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Server.Port != 8080 {
		t.Errorf("default port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Browser.MaxPages != 8 {
		t.Errorf("default max pages = %d, want 8", cfg.Browser.MaxPages)
	}
	if cfg.Renderer.DefaultTimeout != 60*time.Second {
		t.Errorf("default timeout = %v, want 60s", cfg.Renderer.DefaultTimeout)
	}
	if cfg.Renderer.MaxTimeout != 120*time.Second {
		t.Errorf("max timeout = %v, want 120s", cfg.Renderer.MaxTimeout)
	}
	if cfg.Renderer.SettleWindow != 300*time.Millisecond {
		t.Errorf("settle window = %v, want 300ms", cfg.Renderer.SettleWindow)
	}
	if cfg.Batch.DefaultConcurrency != 1 {
		t.Errorf("batch concurrency = %d, want 1 (sequential)", cfg.Batch.DefaultConcurrency)
	}
	if len(cfg.Sidebar.Selectors) == 0 {
		t.Error("sidebar selectors should have defaults")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DOCSNAP_PORT", "9090")
	t.Setenv("DOCSNAP_HEADLESS", "false")
	t.Setenv("DOCSNAP_DEFAULT_TIMEOUT", "30s")
	t.Setenv("DOCSNAP_SETTLE_DIFF", "0.25")
	t.Setenv("DOCSNAP_BLOCKED_RESOURCES", "Image, Media")
	t.Setenv("DOCSNAP_SIDEBAR_SELECTORS", "nav.docs-menu,aside")

	cfg := Load()

	if cfg.Server.Port != 9090 {
		t.Errorf("port override ignored: %d", cfg.Server.Port)
	}
	if cfg.Browser.Headless {
		t.Error("headless override ignored")
	}
	if cfg.Renderer.DefaultTimeout != 30*time.Second {
		t.Errorf("timeout override ignored: %v", cfg.Renderer.DefaultTimeout)
	}
	if cfg.Renderer.SettleDiff != 0.25 {
		t.Errorf("settle diff override ignored: %v", cfg.Renderer.SettleDiff)
	}
	if len(cfg.Renderer.BlockedResourceTypes) != 2 || cfg.Renderer.BlockedResourceTypes[1] != "Media" {
		t.Errorf("blocked resources override ignored: %v", cfg.Renderer.BlockedResourceTypes)
	}
	if len(cfg.Sidebar.Selectors) != 2 || cfg.Sidebar.Selectors[0] != "nav.docs-menu" {
		t.Errorf("selector override ignored: %v", cfg.Sidebar.Selectors)
	}
}

func TestLoad_MalformedEnvFallsBack(t *testing.T) {
	t.Setenv("DOCSNAP_PORT", "not-a-number")
	t.Setenv("DOCSNAP_DEFAULT_TIMEOUT", "soon")

	cfg := Load()

	if cfg.Server.Port != 8080 {
		t.Errorf("malformed port should fall back to default, got %d", cfg.Server.Port)
	}
	if cfg.Renderer.DefaultTimeout != 60*time.Second {
		t.Errorf("malformed duration should fall back to default, got %v", cfg.Renderer.DefaultTimeout)
	}
}
