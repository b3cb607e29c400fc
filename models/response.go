package models

import "time"

// RenderResponse is the response for POST /api/v1/render.
type RenderResponse struct {
	// Success indicates whether the render completed without errors.
	Success bool `json:"success"`

	// RequestedURL echoes the input URL.
	RequestedURL string `json:"requested_url,omitempty"`

	// FinalURL is the URL after following all redirects.
	FinalURL string `json:"final_url,omitempty"`

	// HTML is the settled DOM serialization.
	HTML string `json:"html,omitempty"`

	// CapturedAt is the snapshot timestamp.
	CapturedAt time.Time `json:"captured_at,omitzero"`

	// Timing provides duration breakdowns for the operation.
	Timing TimingInfo `json:"timing"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// LinksResponse is the response for POST /api/v1/links.
type LinksResponse struct {
	Success bool             `json:"success"`
	URL     string           `json:"url,omitempty"`
	Links   []LinkDescriptor `json:"links"`
	Total   int              `json:"total"`
	Timing  TimingInfo       `json:"timing"`
	Error   *ErrorDetail     `json:"error,omitempty"`
}

// BatchResponse is the immediate response for POST /api/v1/batch/scrape.
type BatchResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Total  int    `json:"total"`
}

// BatchStatusResponse is the response for GET /api/v1/batch/:id.
// Results, when present, are positionally aligned with the submitted links.
type BatchStatusResponse struct {
	ID        string         `json:"id"`
	Status    string         `json:"status"`
	Completed int            `json:"completed"`
	Total     int            `json:"total"`
	Results   []ScrapeResult `json:"results,omitempty"`
}

// BatchJob tracks an in-progress batch scrape operation.
type BatchJob struct {
	ID        string
	Status    string // "processing", "completed", "failed", "partial"
	Total     int
	Completed int
	Results   []ScrapeResult
	CreatedAt int64 // unix timestamp
}

// TimingInfo breaks down the time spent in each phase.
type TimingInfo struct {
	// TotalMs is the end-to-end duration in milliseconds.
	TotalMs int64 `json:"total_ms"`

	// NavigationMs is the time spent navigating and rendering the page.
	NavigationMs int64 `json:"navigation_ms"`

	// ExtractionMs is the time spent locating the sidebar and collecting links.
	ExtractionMs int64 `json:"extraction_ms,omitempty"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status    string    `json:"status"` // "healthy" or "degraded"
	Uptime    string    `json:"uptime"`
	PoolStats PoolStats `json:"pool_stats"`
	Version   string    `json:"version"`
}

// PoolStats reports the state of the browser page pool.
type PoolStats struct {
	MaxPages    int `json:"max_pages"`
	ActivePages int `json:"active_pages"`
}
