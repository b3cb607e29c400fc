package links

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/doc-tools/docsnap/config"
	"github.com/doc-tools/docsnap/models"
)

// Extractor pulls navigation links out of one rendered snapshot. It is
// constructed per page and read-only afterwards.
type Extractor struct {
	page      *models.RenderedPage
	selectors []string
}

// NewExtractor creates an Extractor for the given snapshot. When no sidebar
// selectors are supplied, the defaults covering Docusaurus-style sites are
// used. Selectors are tried in order; the first one with a match decides
// the region.
func NewExtractor(page *models.RenderedPage, selectors ...string) *Extractor {
	if len(selectors) == 0 {
		selectors = config.DefaultSidebarSelectors
	}
	return &Extractor{page: page, selectors: selectors}
}

// Links returns the sidebar anchors in document order, resolved against
// baseURL. A page without a recognizable sidebar yields an empty slice, not
// an error. When baseURL is empty, relative hrefs are returned with an empty
// ResolvedURL and resolution becomes the consumer's responsibility.
func (e *Extractor) Links(baseURL string) ([]models.LinkDescriptor, error) {
	region, err := e.sidebarRegion()
	if err != nil {
		return nil, err
	}
	if region == nil {
		return []models.LinkDescriptor{}, nil
	}

	out := make([]models.LinkDescriptor, 0, 32)

	goquery.NewDocumentFromNode(region).Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if skipHref(href) {
			return
		}

		// Consecutive duplicates collapse to the first occurrence;
		// the same href reappearing later in the sidebar is kept.
		if n := len(out); n > 0 && out[n-1].Href == href {
			return
		}

		link := models.LinkDescriptor{
			Href: href,
			Text: collapseWhitespace(a.Text()),
		}
		if resolved, resolveErr := Resolve(href, baseURL); resolveErr == nil {
			link.ResolvedURL = resolved
		}
		out = append(out, link)
	})

	return out, nil
}

// sidebarRegion parses the snapshot and returns the first DOM node matching
// the selector list, or nil when the page has no sidebar.
func (e *Extractor) sidebarRegion() (*html.Node, error) {
	doc, err := html.Parse(strings.NewReader(e.page.HTML))
	if err != nil {
		return nil, models.NewRenderError(models.ErrCodeInternal,
			"failed to parse rendered HTML", err)
	}

	for _, raw := range e.selectors {
		sel, err := cascadia.Parse(raw)
		if err != nil {
			return nil, models.NewRenderError(models.ErrCodeInvalidInput,
				"invalid sidebar selector "+raw, err)
		}
		if node := cascadia.Query(doc, sel); node != nil {
			return node, nil
		}
	}

	return nil, nil
}

// skipHref filters anchors that do not point at a page: empty hrefs,
// in-page fragments, and non-HTTP schemes.
func skipHref(href string) bool {
	if href == "" || strings.HasPrefix(href, "#") {
		return true
	}
	lower := strings.ToLower(href)
	return strings.HasPrefix(lower, "mailto:") ||
		strings.HasPrefix(lower, "tel:") ||
		strings.HasPrefix(lower, "javascript:")
}

// collapseWhitespace trims and folds runs of whitespace into single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
