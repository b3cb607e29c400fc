package models

import (
	"encoding/json"
	"strings"
)

// LinkDescriptor is a navigational link discovered in a rendered page.
type LinkDescriptor struct {
	// Href is the anchor target exactly as found in the DOM; may be relative.
	Href string `json:"href"`

	// Text is the anchor label.
	Text string `json:"text,omitempty"`

	// ResolvedURL is the absolute, normalized form of Href. Empty until
	// resolution has happened (relative href with no base supplied).
	ResolvedURL string `json:"resolved_url,omitempty"`
}

// LinkPayload is the permissive batch input shape: either a bare JSON array
// of URL strings / {href,text} objects, or an object with a "links" key
// holding such an array. The shape is resolved once here, at the boundary;
// the rest of the pipeline only ever sees the canonical ordered slice.
type LinkPayload struct {
	Links []LinkDescriptor
}

// linkEntry accepts one array element: a bare string or an {href,text} object.
type linkEntry struct {
	Href string `json:"href"`
	Text string `json:"text,omitempty"`
}

// UnmarshalJSON accepts both payload shapes and rejects everything else
// with an INVALID_INPUT error.
func (p *LinkPayload) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimLeft(string(data), " \t\r\n")
	if trimmed == "" {
		return NewRenderError(ErrCodeInvalidInput, "empty link payload", nil)
	}

	var raw []json.RawMessage

	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(data, &raw); err != nil {
			return NewRenderError(ErrCodeInvalidInput, "malformed link array", err)
		}
	case '{':
		var wrapper struct {
			Links *[]json.RawMessage `json:"links"`
		}
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return NewRenderError(ErrCodeInvalidInput, "malformed link object", err)
		}
		if wrapper.Links == nil {
			return NewRenderError(ErrCodeInvalidInput,
				`link payload object is missing the "links" key`, nil)
		}
		raw = *wrapper.Links
	default:
		return NewRenderError(ErrCodeInvalidInput,
			`link payload must be a JSON array or an object with a "links" key`, nil)
	}

	// Every array element produces a descriptor, blank ones included: the
	// batch output is positionally aligned with the input, so a blank entry
	// must occupy its slot (it becomes a per-link error downstream).
	links := make([]LinkDescriptor, 0, len(raw))
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			links = append(links, LinkDescriptor{Href: strings.TrimSpace(s)})
			continue
		}

		var entry linkEntry
		if err := json.Unmarshal(item, &entry); err != nil {
			return NewRenderError(ErrCodeInvalidInput,
				"link entries must be URL strings or objects with an href field", err)
		}
		links = append(links, LinkDescriptor{
			Href: strings.TrimSpace(entry.Href),
			Text: entry.Text,
		})
	}

	p.Links = links
	return nil
}

// MarshalJSON always emits the canonical bare-array form.
func (p LinkPayload) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Links)
}
