// Package batch traverses an ordered link set, rendering every page and
// collecting per-link results with failure isolation.
package batch

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/doc-tools/docsnap/links"
	"github.com/doc-tools/docsnap/models"
)

// Renderer is the one dependency a batch needs. *renderer.Renderer satisfies
// it; tests substitute a fake.
type Renderer interface {
	Render(ctx context.Context, req *models.RenderRequest) (*models.RenderedPage, error)
}

// Options configure one Scraper.
type Options struct {
	// BaseURL resolves relative hrefs. Links that stay unresolvable
	// become per-link error results, never a batch failure.
	BaseURL string

	// Concurrency bounds the number of simultaneously rendering pages.
	// Values below 1 mean sequential.
	Concurrency int

	// Render is the shared render configuration applied to every link.
	Render models.RenderOptions

	// OnProgress, when set, is invoked each time a link reaches a terminal
	// result, with the number of completed links so far. Calls may come
	// from concurrent render goroutines.
	OnProgress func(completed int)
}

// Scraper renders every link of a batch and aggregates the outcomes.
type Scraper struct {
	renderer Renderer
	opts     Options
}

// New creates a Scraper.
func New(r Renderer, opts Options) *Scraper {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	opts.Render.Defaults()
	return &Scraper{renderer: r, opts: opts}
}

// Scrape processes the links in order and returns one ScrapeResult per input
// link, positionally aligned with the input regardless of completion order.
// Navigation, timeout, and resolution failures are captured per link; a
// single bad page never aborts the batch.
func (s *Scraper) Scrape(ctx context.Context, linkSet []models.LinkDescriptor) []models.ScrapeResult {
	results := make([]models.ScrapeResult, len(linkSet))

	var done atomic.Int32
	progress := func() {
		n := int(done.Add(1))
		if s.opts.OnProgress != nil {
			s.opts.OnProgress(n)
		}
	}

	// Resolve everything up front so render slots are not wasted on
	// links that can never be fetched.
	targets := make([]string, len(linkSet))
	for i, link := range linkSet {
		target := link.ResolvedURL
		if target == "" {
			resolved, err := links.Resolve(link.Href, s.opts.BaseURL)
			if err != nil {
				results[i] = models.ScrapeResult{
					URL:         link.Href,
					Status:      models.StatusError,
					ErrorDetail: err.Error(),
				}
				progress()
				continue
			}
			target = resolved
		}
		targets[i] = target
	}

	if s.opts.Concurrency == 1 {
		for i, target := range targets {
			if target == "" {
				continue // resolution already failed
			}
			results[i] = s.scrapeOne(ctx, target)
			progress()
		}
	} else {
		s.scrapeConcurrent(ctx, targets, results, progress)
	}

	failed := 0
	for _, res := range results {
		if res.Status == models.StatusError {
			failed++
		}
	}
	slog.Info("batch finished",
		"total", len(linkSet),
		"ok", len(linkSet)-failed,
		"failed", failed,
		"concurrency", s.opts.Concurrency,
	)

	return results
}

// ScrapePayload runs Scrape over an already-decoded link payload.
func (s *Scraper) ScrapePayload(ctx context.Context, payload *models.LinkPayload) []models.ScrapeResult {
	return s.Scrape(ctx, payload.Links)
}

// scrapeConcurrent renders the targets with a semaphore bounding how many
// pages are open at once. Only the goroutine that owns index i writes
// results[i], so completion order never disturbs output order.
func (s *Scraper) scrapeConcurrent(ctx context.Context, targets []string, results []models.ScrapeResult, progress func()) {
	sem := make(chan struct{}, s.opts.Concurrency)
	var wg sync.WaitGroup

	for i, target := range targets {
		if target == "" {
			continue
		}
		wg.Add(1)
		go func(idx int, url string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results[idx] = s.scrapeOne(ctx, url)
			progress()
		}(i, target)
	}

	wg.Wait()
}

// scrapeOne renders a single resolved URL into a terminal ScrapeResult.
func (s *Scraper) scrapeOne(ctx context.Context, url string) models.ScrapeResult {
	req := &models.RenderRequest{URL: url, RenderOptions: s.opts.Render}

	page, err := s.renderer.Render(ctx, req)
	if err != nil {
		return models.ScrapeResult{
			URL:         url,
			Status:      models.StatusError,
			ErrorDetail: err.Error(),
		}
	}

	return models.ScrapeResult{
		URL:    url,
		Status: models.StatusOK,
		Page:   page,
	}
}
