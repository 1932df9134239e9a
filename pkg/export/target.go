package export

import (
	"context"
	"image"

	"golang.org/x/sync/semaphore"

	"github.com/matzehuels/storeshots/pkg/compose"
	"github.com/matzehuels/storeshots/pkg/errors"
	"github.com/matzehuels/storeshots/pkg/raster"
)

// Target is the off-screen render target shared by every export of one
// process. Only one job may occupy it at a time, from rendering through
// capture.
type Target struct {
	sem *semaphore.Weighted

	// Rasterize draws a tree. Nil means raster.Rasterize.
	Rasterize func(*compose.Tree) (*image.NRGBA, error)
}

// NewTarget returns an idle target.
func NewTarget() *Target {
	return &Target{sem: semaphore.NewWeighted(1)}
}

// Acquire blocks until the target is free or ctx is done.
func (t *Target) Acquire(ctx context.Context) error {
	if err := t.sem.Acquire(ctx, 1); err != nil {
		return errors.FromContext(err, "wait for render target")
	}
	return nil
}

// Release frees the target.
func (t *Target) Release() { t.sem.Release(1) }

// Capture rasterizes tree at device-pixel ratio 1. The caller must hold
// the target. The result is exactly tree.Width×tree.Height.
func (t *Target) Capture(tree *compose.Tree) (*image.NRGBA, error) {
	draw := t.Rasterize
	if draw == nil {
		draw = raster.Rasterize
	}
	img, err := draw(tree)
	if err != nil {
		return nil, err
	}
	if img == nil || img.Bounds().Dx() != tree.Width || img.Bounds().Dy() != tree.Height {
		return nil, errors.New(errors.ErrCodeEncodingFailed, "capture produced no drawable buffer at %dx%d", tree.Width, tree.Height)
	}
	return img, nil
}
