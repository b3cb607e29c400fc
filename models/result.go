package models

import "encoding/json"

// Scrape result statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// ScrapeResult is the terminal outcome for one link in a batch. Exactly one
// of Page / ErrorDetail is set, depending on Status. Results are never
// mutated after being placed into the batch output slice.
type ScrapeResult struct {
	// URL is the absolute URL that was (or would have been) rendered.
	// For links that failed resolution it holds the original href.
	URL string

	// Status is StatusOK or StatusError.
	Status string

	// Page holds the snapshot when Status is StatusOK.
	Page *RenderedPage

	// ErrorDetail describes the failure when Status is StatusError.
	ErrorDetail string
}

// scrapeResultJSON is the flat on-disk shape: {url, status, html | error}.
type scrapeResultJSON struct {
	URL    string `json:"url"`
	Status string `json:"status"`
	HTML   string `json:"html,omitempty"`
	Error  string `json:"error,omitempty"`
}

// MarshalJSON flattens the result for the batch output file, embedding the
// page HTML for successes and the error detail for failures.
func (r ScrapeResult) MarshalJSON() ([]byte, error) {
	out := scrapeResultJSON{URL: r.URL, Status: r.Status, Error: r.ErrorDetail}
	if r.Page != nil {
		out.HTML = r.Page.HTML
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the flat shape back. A round-trip preserves the
// {url, status, html-or-error} tuple; renderer metadata beyond the HTML is
// not part of the file format.
func (r *ScrapeResult) UnmarshalJSON(data []byte) error {
	var in scrapeResultJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	r.URL = in.URL
	r.Status = in.Status
	r.ErrorDetail = in.Error
	r.Page = nil
	if in.Status == StatusOK {
		r.Page = &RenderedPage{RequestedURL: in.URL, FinalURL: in.URL, HTML: in.HTML}
	}
	return nil
}
