package renderer

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// stripScriptStyle removes <script> and <style> elements from the captured
// DOM so the snapshot carries document structure only. The page has already
// executed its scripts by the time this runs; removing them keeps persisted
// snapshots from re-triggering hydration when opened locally.
func stripScriptStyle(rawHTML string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return "", err
	}

	doc.Find("script, style").Remove()

	return doc.Html()
}
