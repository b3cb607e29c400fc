package renderer

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/doc-tools/docsnap/models"
)

// Render navigates to req.URL, waits until client-side rendering has
// settled, and returns the snapshot. The call blocks the calling goroutine
// but suspends cooperatively on browser events, so any number of renders can
// be in flight concurrently up to the page-pool bound.
//
// Fetch-mode escalation: in "auto" mode a plain HTTP fetch is tried first;
// if the body looks like an unhydrated SPA shell, the renderer escalates to
// the browser and remembers the decision per host.
func (r *Renderer) Render(ctx context.Context, req *models.RenderRequest) (*models.RenderedPage, error) {
	req.Defaults()

	timeout := time.Duration(req.Timeout) * time.Second
	if timeout <= 0 {
		timeout = r.renderCfg.DefaultTimeout
	}
	if timeout > r.renderCfg.MaxTimeout {
		timeout = r.renderCfg.MaxTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if _, err := url.ParseRequestURI(req.URL); err != nil {
		return nil, models.NewRenderError(models.ErrCodeNavigation, "malformed URL", err)
	}

	page, err := r.fetch(ctx, req)
	if err != nil {
		return nil, err
	}

	if *req.StripScripts {
		stripped, stripErr := stripScriptStyle(page.HTML)
		if stripErr != nil {
			slog.Warn("script stripping failed, returning raw DOM",
				"url", req.URL, "error", stripErr)
		} else {
			page.HTML = stripped
		}
	}

	return page, nil
}

// fetch dispatches by fetch mode.
func (r *Renderer) fetch(ctx context.Context, req *models.RenderRequest) (*models.RenderedPage, error) {
	switch req.FetchMode {
	case "browser":
		return r.renderBrowser(ctx, req)

	case "http":
		body, finalURL, err := r.fetcher.fetch(ctx, req.URL)
		if err != nil {
			return nil, categorizeError(err, "HTTP fetch failed")
		}
		if needsBrowser(body) {
			return nil, models.NewRenderError(models.ErrCodeNavigation,
				"page requires JavaScript rendering and fetch_mode is http", nil)
		}
		return snapshotOf(req.URL, finalURL, string(body)), nil

	default: // "auto"
		host := hostOf(req.URL)
		if r.memory.NeedsBrowser(host) {
			return r.renderBrowser(ctx, req)
		}

		body, finalURL, err := r.fetcher.fetch(ctx, req.URL)
		if err == nil && !needsBrowser(body) {
			r.memory.Remember(host, false)
			return snapshotOf(req.URL, finalURL, string(body)), nil
		}
		if err != nil {
			slog.Debug("http-first fetch failed, escalating to browser",
				"url", req.URL, "error", err)
		}
		r.memory.Remember(host, true)
		return r.renderBrowser(ctx, req)
	}
}

// renderBrowser is the headless-browser path.
//
// Ordering constraints:
//   - stealth JS and the hijack router must be installed before Navigate;
//     they only apply to navigations that happen after they are mounted.
//   - the network-idle waiter must be armed before Navigate, or the
//     navigation's own requests go uncounted and the wait returns instantly.
//   - the cleanup defer uses the original page reference (without the
//     request context) so the tab is parked and returned to the pool even
//     when the request deadline has already expired.
func (r *Renderer) renderBrowser(ctx context.Context, req *models.RenderRequest) (*models.RenderedPage, error) {
	r.activePages.Add(1)
	defer r.activePages.Add(-1)

	page, acquireErr := r.pagePool.Get(func() (*rod.Page, error) {
		return r.browser.Page(proto.TargetCreateTarget{})
	})
	if acquireErr != nil {
		return nil, models.NewRenderError(
			models.ErrCodeBrowserCrash,
			"failed to acquire page from pool",
			acquireErr,
		)
	}

	defer func() {
		if navErr := page.Navigate("about:blank"); navErr != nil {
			slog.Warn("cleanup: failed to navigate to about:blank", "error", navErr)
		}
		r.pagePool.Put(page)
	}()

	if req.Stealth {
		if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
			slog.Warn("stealth injection failed, proceeding without stealth",
				"error", evalErr)
		}
	}

	if ua := r.browserCfg.UserAgent; ua != "" {
		_ = proto.NetworkSetExtraHTTPHeaders{
			Headers: proto.NetworkHeaders{"User-Agent": gson.New(ua)},
		}.Call(page)
	}

	router := setupHijack(page, r.renderCfg.BlockedResourceTypes)
	if router != nil {
		defer func() { _ = router.Stop() }()
	}

	p := page.Context(ctx)

	// The idle waiter must be armed before Navigate: WaitRequestIdle
	// registers its CDP listener at call time, so requests triggered by the
	// navigation itself are invisible to a waiter armed afterwards and the
	// quiet window would elapse instantly. It also drives the Fetch domain,
	// which conflicts with the hijack router on Chromium 145+, so renders
	// with resource blocking settle on DOM stability instead.
	var waitIdle func()
	if idleWaitUsable(*req.WaitForNetworkIdle, router != nil) {
		waitIdle = p.WaitRequestIdle(r.renderCfg.SettleWindow, nil, nil, nil)
	}

	if navErr := p.Navigate(req.URL); navErr != nil {
		return nil, categorizeError(navErr, "navigation to target URL failed")
	}

	if err := r.waitSettled(p, waitIdle); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, categorizeError(err, "page did not settle within the timeout")
		}
		slog.Debug("settle wait did not converge, proceeding with current DOM",
			"url", req.URL, "error", err)
	}

	if delay := r.renderCfg.PostRenderDelay; delay > 0 {
		select {
		case <-ctx.Done():
			return nil, categorizeError(ctx.Err(), "page did not settle within the timeout")
		case <-time.After(delay):
		}
	}

	rawHTML, htmlErr := p.HTML()
	if htmlErr != nil {
		return nil, categorizeError(htmlErr, "failed to capture page DOM")
	}

	finalURL := evalStringOrEmpty(p, `() => window.location.href`)
	if finalURL == "" {
		finalURL = req.URL
	}

	return snapshotOf(req.URL, finalURL, rawHTML), nil
}

// idleWaitUsable reports whether the network-idle predicate can be used:
// it must have been requested, and the hijack router must not be mounted
// (both drive the Fetch domain and cannot coexist).
func idleWaitUsable(networkIdle, hijacked bool) bool {
	return networkIdle && !hijacked
}

// waitSettled suspends until the readiness predicate holds: network idle for
// the settle window (waitIdle armed before navigation), or DOM mutations
// below the diff threshold for the same window. The bound comes from the
// context already attached to p.
func (r *Renderer) waitSettled(p *rod.Page, waitIdle func()) error {
	if waitIdle != nil {
		waitIdle()
		// WaitRequestIdle reports cancellation through the page context.
		return p.GetContext().Err()
	}
	return p.WaitDOMStable(r.renderCfg.SettleWindow, r.renderCfg.SettleDiff)
}

// snapshotOf assembles an immutable RenderedPage. FinalURL is always set,
// even when no redirect happened.
func snapshotOf(requested, final, html string) *models.RenderedPage {
	if final == "" {
		final = requested
	}
	return &models.RenderedPage{
		RequestedURL: requested,
		FinalURL:     final,
		HTML:         html,
		CapturedAt:   time.Now().UTC(),
	}
}

// evalStringOrEmpty evaluates a JS expression and returns the string result,
// swallowing any errors (used for optional metadata only).
func evalStringOrEmpty(page *rod.Page, js string) string {
	res, err := page.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

// categorizeError wraps raw errors into typed RenderErrors so callers can
// map them to batch result entries or HTTP status codes.
func categorizeError(err error, msg string) *models.RenderError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewRenderError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewRenderError(models.ErrCodeTimeout, "render canceled", err)
	default:
		return models.NewRenderError(models.ErrCodeNavigation, msg, err)
	}
}

// hostOf parses the hostname from a URL string.
func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Hostname()
}
