package batch

import (
	"context"
	"encoding/json"
	"errors"
	"os"

	"github.com/doc-tools/docsnap/fsutil"
	"github.com/doc-tools/docsnap/models"
)

// ScrapeToJSON reads a link payload from inputPath, scrapes every link, and
// persists the full result sequence as a JSON array to outputPath. The
// output write is atomic, so the file never holds a truncated array. The
// results are also returned for in-memory reuse.
//
// Input shape errors abort before any rendering starts; output write errors
// surface after the batch completed.
func (s *Scraper) ScrapeToJSON(ctx context.Context, inputPath, outputPath string) ([]models.ScrapeResult, error) {
	// An unreadable input file is an input problem, like a malformed
	// payload; PERSISTENCE_FAILED is reserved for the output path.
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, models.NewRenderError(
			models.ErrCodeInvalidInput,
			"failed to read link file "+inputPath,
			err,
		)
	}

	payload, err := DecodeLinks(data)
	if err != nil {
		return nil, err
	}

	results := s.Scrape(ctx, payload.Links)

	encoded, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return nil, models.NewRenderError(models.ErrCodeInternal,
			"failed to encode batch results", err)
	}
	if err := fsutil.WriteFileAtomic(outputPath, encoded, 0o644); err != nil {
		return nil, models.NewRenderError(
			models.ErrCodePersistence,
			"failed to write batch results to "+outputPath,
			err,
		)
	}

	return results, nil
}

// DecodeLinks parses raw JSON into the canonical link payload, rejecting
// unsupported shapes with an INVALID_INPUT error. An empty array is a valid
// payload and yields an empty batch, not an error.
func DecodeLinks(data []byte) (*models.LinkPayload, error) {
	var payload models.LinkPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		var re *models.RenderError
		if errors.As(err, &re) {
			return nil, re
		}
		return nil, models.NewRenderError(models.ErrCodeInvalidInput,
			"malformed link payload", err)
	}
	return &payload, nil
}
