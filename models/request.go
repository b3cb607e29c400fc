package models

// RenderOptions are the settings shared by every render, whether issued
// directly or as part of a batch.
type RenderOptions struct {
	// WaitForNetworkIdle selects the readiness condition: wait until the
	// page has had no in-flight network requests for the settle window
	// (true, default) or until DOM mutations stop (false).
	WaitForNetworkIdle *bool `json:"wait_for_network_idle,omitempty"`

	// Timeout is the maximum duration in seconds for the whole render
	// (navigation + settle + capture). Default: 60. Max: 120.
	Timeout int `json:"timeout,omitempty" binding:"omitempty,min=1,max=120"`

	// Stealth enables anti-bot-detection evasions before navigation.
	Stealth bool `json:"stealth,omitempty"`

	// StripScripts removes <script> and <style> elements from the captured
	// DOM so the snapshot carries document structure only. Default: true.
	StripScripts *bool `json:"strip_scripts,omitempty"`

	// FetchMode controls how the page is obtained.
	// "auto" (default): plain HTTP first, escalate to the browser when the
	// body looks like an unhydrated SPA shell.
	// "browser": always render in the headless browser.
	// "http": never launch the browser; fail if the page needs JS.
	FetchMode string `json:"fetch_mode,omitempty" binding:"omitempty,oneof=auto browser http"`
}

// Defaults applies default values to unset fields.
func (o *RenderOptions) Defaults() {
	if o.WaitForNetworkIdle == nil {
		t := true
		o.WaitForNetworkIdle = &t
	}
	if o.StripScripts == nil {
		t := true
		o.StripScripts = &t
	}
	if o.Timeout == 0 {
		o.Timeout = 60
	}
	if o.FetchMode == "" {
		o.FetchMode = "auto"
	}
}

// RenderRequest is the payload for POST /api/v1/render and the parameter
// struct for renderer.Render.
type RenderRequest struct {
	// URL is the page to render. Required, absolute.
	URL string `json:"url" binding:"required,url"`

	RenderOptions
}

// LinksRequest is the payload for POST /api/v1/links: render one page and
// extract its sidebar links in a single call.
type LinksRequest struct {
	// URL is the documentation page to render. Required.
	URL string `json:"url" binding:"required,url"`

	// BaseURL resolves relative sidebar hrefs. When empty, the final URL
	// of the rendered page is used.
	BaseURL string `json:"base_url,omitempty" binding:"omitempty,url"`

	// Options carries optional render settings (timeout, readiness, mode).
	Options RenderOptions `json:"options"`
}

// BatchRequest is the payload for POST /api/v1/batch/scrape.
type BatchRequest struct {
	// Links is the ordered link set: a bare array of URL strings or
	// {href,text} objects, or an object with a "links" key.
	Links LinkPayload `json:"links"`

	// BaseURL resolves relative hrefs. Required whenever any link is
	// relative; links that cannot be resolved become per-link errors.
	BaseURL string `json:"base_url,omitempty" binding:"omitempty,url"`

	// Concurrency bounds the number of simultaneously open pages.
	// Default: 1 (sequential).
	Concurrency int `json:"concurrency,omitempty" binding:"omitempty,min=1,max=20"`

	// Options carries shared render settings applied to every link.
	Options RenderOptions `json:"options"`
}

// Defaults applies default values to unset fields.
func (r *BatchRequest) Defaults() {
	if r.Concurrency == 0 {
		r.Concurrency = 1
	}
	r.Options.Defaults()
}
