package renderer

import (
	"strings"
	"testing"
)

// longText pads a fixture past the visible-text threshold.
var longText = strings.Repeat("Server rendered documentation content with real words. ", 12)

func TestNeedsBrowser(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{
			name: "react shell with empty root",
			body: `<html><body><div id="root"></div><script src="/bundle.js"></script></body></html>`,
			want: true,
		},
		{
			name: "docusaurus shell",
			body: `<html><body><div id="__docusaurus"></div></body></html>`,
			want: true,
		},
		{
			name: "noscript warning",
			body: `<html><body><noscript>Please enable JavaScript to view this site.</noscript>` +
				`<div id="content"></div></body></html>`,
			want: true,
		},
		{
			name: "barely any visible text",
			body: `<html><body><div class="spinner">Loading...</div></body></html>`,
			want: true,
		},
		{
			name: "server-rendered page",
			body: `<html><body><main><h1>Install guide</h1><p>` + longText + `</p></main></body></html>`,
			want: false,
		},
		{
			name: "script text does not count as content",
			body: `<html><body><script>` + longText + `</script><p>Tiny.</p></body></html>`,
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := needsBrowser([]byte(tt.body)); got != tt.want {
				t.Errorf("needsBrowser() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractVisibleText(t *testing.T) {
	body := `<html><head><title>Ignored</title><style>p{color:red}</style></head>
<body><h1>Guide</h1><script>var x = "invisible";</script><p>Real   content</p></body></html>`

	got := extractVisibleText([]byte(body))

	if strings.Contains(got, "invisible") {
		t.Errorf("script text leaked into visible text: %q", got)
	}
	if strings.Contains(got, "Ignored") {
		t.Errorf("head content leaked into visible text: %q", got)
	}
	if !strings.Contains(got, "Guide") || !strings.Contains(got, "Real") {
		t.Errorf("body text missing: %q", got)
	}
}

func TestIsHTMLContentType(t *testing.T) {
	tests := []struct {
		ct   string
		want bool
	}{
		{"text/html", true},
		{"text/html; charset=utf-8", true},
		{"application/xhtml+xml", true},
		{"application/json", false},
		{"text/plain", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := isHTMLContentType(tt.ct); got != tt.want {
			t.Errorf("isHTMLContentType(%q) = %v, want %v", tt.ct, got, tt.want)
		}
	}
}
