// Package pipeline runs exports with caching for the CLI and the HTTP API.
//
// A [Runner] wraps an [export.Exporter] with an artifact cache. Each
// export goes through three stages:
//
//  1. Render: lay the project out into a visual tree
//  2. Capture: rasterize the tree on the shared render target
//  3. Encode: write PNG or JPEG bytes
//
// Encoded bytes are cached under a key derived from the project content,
// the content hashes of its images, and the export settings. A cache hit
// skips all three stages.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, exporter, logger)
//	opts := pipeline.Options{Size: "app-store-6.7", Format: "png"}
//	result, err := runner.Export(ctx, project, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, a := range result.Artifacts {
//	    os.WriteFile(a.Name, a.Data, 0o644)
//	}
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/storeshots/pkg/cache"
	"github.com/matzehuels/storeshots/pkg/catalog"
	"github.com/matzehuels/storeshots/pkg/errors"
	"github.com/matzehuels/storeshots/pkg/export"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultSize is the export size used when neither a size id nor
	// explicit dimensions are given.
	DefaultSize = catalog.DefaultSizeID

	// DefaultFormat is the default encoding.
	DefaultFormat = export.FormatPNG

	// DefaultQuality is the default JPEG quality.
	DefaultQuality = export.DefaultQuality
)

// =============================================================================
// Options - Export Configuration
// =============================================================================

// Options configure one export. They decode from API requests as JSON.
type Options struct {
	// Size is a catalog size id. Width and Height, when both set, take
	// precedence.
	Size   string `json:"size,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`

	Format  string  `json:"format,omitempty"`
	Quality float64 `json:"quality,omitempty"`

	// Variant restricts a paired export to one half. Empty exports both.
	Variant string `json:"variant,omitempty"`

	Placeholders bool `json:"placeholders,omitempty"`

	// Refresh bypasses cache reads. Results are still written.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`

	// Progress receives batch progress from ExportAll.
	Progress func(done, total int) `json:"-"`

	format    export.Format
	variant   catalog.Variant
	validated bool
}

// ValidateAndSetDefaults checks the options and fills defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	switch {
	case o.Width != 0 || o.Height != 0:
		if _, err := catalog.CustomSize(o.Width, o.Height); err != nil {
			return err
		}
		if o.Size == "" {
			o.Size = "custom"
		}
	default:
		if o.Size == "" {
			o.Size = DefaultSize
		}
		s, err := catalog.GetSize(o.Size)
		if err != nil {
			return err
		}
		o.Width, o.Height = s.Width, s.Height
	}

	f, err := export.ParseFormat(o.Format)
	if err != nil {
		return err
	}
	o.format, o.Format = f, string(f)

	if o.Quality == 0 {
		o.Quality = DefaultQuality
	}
	if err := errors.ValidateQuality(o.Quality); err != nil {
		return err
	}

	v, err := catalog.ParseVariant(o.Variant)
	if err != nil {
		return err
	}
	o.variant, o.Variant = v, string(v)

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// Settings returns the exporter settings. Call ValidateAndSetDefaults
// first.
func (o *Options) Settings() export.Settings {
	return export.Settings{
		Width:        o.Width,
		Height:       o.Height,
		Format:       o.format,
		Quality:      o.Quality,
		Placeholders: o.Placeholders,
		Progress:     o.Progress,
	}
}

// ArtifactKeyOpts returns the cache key options for one variant.
func (o *Options) ArtifactKeyOpts(v catalog.Variant, calibration string) cache.ArtifactKeyOpts {
	q := 0.0
	if o.format == export.FormatJPEG {
		q = o.Quality
	}
	return cache.ArtifactKeyOpts{
		Width:        o.Width,
		Height:       o.Height,
		Format:       string(o.format),
		Quality:      q,
		Variant:      string(v),
		Placeholders: o.Placeholders,
		Calibration:  calibration,
	}
}

// =============================================================================
// Results
// =============================================================================

// Result is the output of Runner.Export.
type Result struct {
	// Artifacts are the exported files: one, or left and right for a
	// paired layout.
	Artifacts []export.Artifact

	// ProjectHash is the content hash used for cache keys.
	ProjectHash string

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats describe one export run.
type Stats struct {
	Artifacts int
	Bytes     int
	Duration  time.Duration
}

// CacheInfo reports which artifacts came from the cache.
type CacheInfo struct {
	// Hits counts artifacts read from the cache.
	Hits int

	// Hit is true when every artifact came from the cache.
	Hit bool
}
