package renderer

import (
	"strings"
	"testing"
)

func TestStripScriptStyle(t *testing.T) {
	in := `<html><head>
<style>.menu { display: none; }</style>
<script src="/hydrate.js"></script>
</head><body>
<h1>Guide</h1>
<script>window.__DATA__ = {"a":1};</script>
<p>Keep this paragraph.</p>
</body></html>`

	out, err := stripScriptStyle(in)
	if err != nil {
		t.Fatalf("stripScriptStyle failed: %v", err)
	}

	if strings.Contains(out, "<script") || strings.Contains(out, "__DATA__") {
		t.Errorf("script content survived: %s", out)
	}
	if strings.Contains(out, "<style") || strings.Contains(out, "display: none") {
		t.Errorf("style content survived: %s", out)
	}
	if !strings.Contains(out, "<h1>Guide</h1>") || !strings.Contains(out, "Keep this paragraph.") {
		t.Errorf("document content lost: %s", out)
	}
}

func TestStripScriptStyle_PlainPageUnchangedContent(t *testing.T) {
	in := `<html><head></head><body><p>No scripts here.</p></body></html>`

	out, err := stripScriptStyle(in)
	if err != nil {
		t.Fatalf("stripScriptStyle failed: %v", err)
	}
	if !strings.Contains(out, "<p>No scripts here.</p>") {
		t.Errorf("content altered: %s", out)
	}
}
