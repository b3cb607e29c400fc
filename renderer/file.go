package renderer

import (
	"context"

	"github.com/doc-tools/docsnap/fsutil"
	"github.com/doc-tools/docsnap/models"
)

// RenderToFile renders req.URL and persists the captured HTML to path,
// creating parent directories as needed. The write is atomic: the file is
// either fully written or absent. The snapshot is also returned so callers
// can reuse it in memory.
func (r *Renderer) RenderToFile(ctx context.Context, req *models.RenderRequest, path string) (*models.RenderedPage, error) {
	page, err := r.Render(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := fsutil.WriteFileAtomic(path, []byte(page.HTML), 0o644); err != nil {
		return nil, models.NewRenderError(
			models.ErrCodePersistence,
			"failed to write rendered HTML to "+path,
			err,
		)
	}

	return page, nil
}
