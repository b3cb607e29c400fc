package models

import "time"

// RenderedPage is an immutable snapshot of a page's DOM after client-side
// rendering has settled. It is created per render call and owned by the
// caller; the renderer never caches it across calls.
type RenderedPage struct {
	// RequestedURL is the URL passed to the renderer.
	RequestedURL string `json:"requested_url"`

	// FinalURL is the URL after following all redirects. Always set,
	// even when equal to RequestedURL.
	FinalURL string `json:"final_url"`

	// HTML is the complete serialized DOM, never a partial capture.
	HTML string `json:"html"`

	// CapturedAt is the UTC instant at which the DOM was serialized.
	CapturedAt time.Time `json:"captured_at"`
}
