package models

import (
	"encoding/json"
	"testing"
)

func TestLinkPayload_BareArrayOfStrings(t *testing.T) {
	var p LinkPayload
	if err := json.Unmarshal([]byte(`["https://x.test/a", "/docs/b"]`), &p); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(p.Links) != 2 {
		t.Fatalf("expected 2 links, got %d", len(p.Links))
	}
	if p.Links[0].Href != "https://x.test/a" || p.Links[1].Href != "/docs/b" {
		t.Errorf("unexpected hrefs: %+v", p.Links)
	}
}

func TestLinkPayload_ObjectFormMatchesBareForm(t *testing.T) {
	var bare, wrapped LinkPayload
	if err := json.Unmarshal([]byte(`["https://x.test/c"]`), &bare); err != nil {
		t.Fatalf("bare form failed: %v", err)
	}
	if err := json.Unmarshal([]byte(`{"links": ["https://x.test/c"]}`), &wrapped); err != nil {
		t.Fatalf("object form failed: %v", err)
	}
	if len(bare.Links) != 1 || len(wrapped.Links) != 1 {
		t.Fatalf("expected 1 link each, got %d and %d", len(bare.Links), len(wrapped.Links))
	}
	if bare.Links[0] != wrapped.Links[0] {
		t.Errorf("forms disagree: %+v vs %+v", bare.Links[0], wrapped.Links[0])
	}
}

func TestLinkPayload_DescriptorObjects(t *testing.T) {
	var p LinkPayload
	input := `[{"href": "/docs/a", "text": "Getting started"}, "https://x.test/b"]`
	if err := json.Unmarshal([]byte(input), &p); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(p.Links) != 2 {
		t.Fatalf("expected 2 links, got %d", len(p.Links))
	}
	if p.Links[0].Text != "Getting started" {
		t.Errorf("expected text to survive, got %q", p.Links[0].Text)
	}
}

func TestLinkPayload_BlankEntriesKeepTheirSlot(t *testing.T) {
	var p LinkPayload
	if err := json.Unmarshal([]byte(`["https://x.test/a", "", "  ", "/docs/b"]`), &p); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	// Blank entries stay in place so batch results align with the input.
	if len(p.Links) != 4 {
		t.Fatalf("expected 4 links, got %d", len(p.Links))
	}
	if p.Links[1].Href != "" || p.Links[2].Href != "" {
		t.Errorf("blank entries should decode to empty hrefs: %+v", p.Links)
	}
	if p.Links[3].Href != "/docs/b" {
		t.Errorf("entry after blanks out of position: %+v", p.Links[3])
	}
}

func TestLinkPayload_EmptyArray(t *testing.T) {
	var p LinkPayload
	if err := json.Unmarshal([]byte(`[]`), &p); err != nil {
		t.Fatalf("empty array is a valid payload: %v", err)
	}
	if len(p.Links) != 0 {
		t.Errorf("expected no links, got %d", len(p.Links))
	}
}

func TestLinkPayload_RejectsOtherShapes(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"bare string", `"https://x.test/a"`},
		{"number", `42`},
		{"object without links key", `{"urls": ["https://x.test/a"]}`},
		{"numeric entry", `[42]`},
		{"links key not an array", `{"links": "https://x.test/a"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p LinkPayload
			err := json.Unmarshal([]byte(tt.input), &p)
			if err == nil {
				t.Fatalf("expected error for %s", tt.input)
			}
			if ErrorCode(err) != ErrCodeInvalidInput {
				t.Errorf("expected %s, got %s (%v)", ErrCodeInvalidInput, ErrorCode(err), err)
			}
		})
	}
}

func TestLinkPayload_MarshalEmitsBareArray(t *testing.T) {
	p := LinkPayload{Links: []LinkDescriptor{{Href: "/docs/a"}}}
	out, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if out[0] != '[' {
		t.Errorf("expected bare array form, got %s", out)
	}
}
