// Package links locates the sidebar of a rendered documentation page and
// extracts its navigation targets as resolved link descriptors.
package links

import (
	"net/url"
	"path"
	"strings"

	"github.com/doc-tools/docsnap/models"
)

// Resolve turns href into an absolute, normalized URL. Absolute hrefs are
// kept (normalized); path-relative, root-relative, and protocol-relative
// hrefs are resolved against base per standard URL-resolution rules. A
// relative href with an empty base fails with a LINK_RESOLUTION_FAILED error.
func Resolve(href, base string) (string, error) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", models.NewRenderError(models.ErrCodeResolution,
			"empty href cannot be resolved", nil)
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", models.NewRenderError(models.ErrCodeResolution,
			"malformed href "+href, err)
	}

	if ref.IsAbs() {
		return normalize(ref), nil
	}

	if base == "" {
		return "", models.NewRenderError(models.ErrCodeResolution,
			"relative href "+href+" requires a base URL and none was supplied", nil)
	}

	baseURL, err := url.Parse(base)
	if err != nil || !baseURL.IsAbs() {
		return "", models.NewRenderError(models.ErrCodeResolution,
			"base URL "+base+" is not a valid absolute URL", err)
	}

	return normalize(baseURL.ResolveReference(ref)), nil
}

// normalize strips the fragment and cleans the path: no residual ".."
// segments, no duplicate separators. A meaningful trailing slash survives.
func normalize(u *url.URL) string {
	out := *u
	out.Fragment = ""

	if out.Path != "" && out.Path != "/" {
		trailing := strings.HasSuffix(out.Path, "/")
		cleaned := path.Clean(out.Path)
		if cleaned == "." {
			cleaned = ""
		}
		if trailing && cleaned != "/" {
			cleaned += "/"
		}
		out.Path = cleaned
	}

	return out.String()
}
