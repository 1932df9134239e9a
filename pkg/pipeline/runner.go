package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/storeshots/pkg/cache"
	"github.com/matzehuels/storeshots/pkg/catalog"
	"github.com/matzehuels/storeshots/pkg/compose"
	"github.com/matzehuels/storeshots/pkg/export"
	"github.com/matzehuels/storeshots/pkg/imagesrc"
	"github.com/matzehuels/storeshots/pkg/project"
)

// Runner executes exports with caching. It holds no per-export state, so
// one Runner can serve concurrent requests; captures still queue on the
// exporter's shared target.
type Runner struct {
	Cache    cache.Cache
	Keyer    cache.Keyer
	Logger   *log.Logger
	Exporter *export.Exporter

	// Images fingerprints image sources for cache keys. Nil uses the
	// renderer's resolver.
	Images imagesrc.Resolver

	// ArtifactTTL bounds cached artifacts. Zero means cache.TTLArtifact.
	ArtifactTTL time.Duration
}

// NewRunner creates a runner. A nil cache disables caching and a nil
// keyer uses cache.DefaultKeyer.
func NewRunner(c cache.Cache, keyer cache.Keyer, exporter *export.Exporter, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	var images imagesrc.Resolver
	if exporter != nil && exporter.Renderer != nil {
		images = exporter.Renderer.Images
	}
	return &Runner{
		Cache:    c,
		Keyer:    keyer,
		Logger:   logger,
		Exporter: exporter,
		Images:   images,
	}
}

// Export exports p: one artifact, or a left and a right artifact for a
// paired layout unless opts.Variant picks one half.
func (r *Runner) Export(ctx context.Context, p project.Project, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	start := time.Now()

	hash, err := r.ProjectHash(ctx, p)
	if err != nil {
		return nil, err
	}
	cal := r.calibrationKey()
	ts := export.Timestamp(r.now())
	variants := exportVariants(p, opts.variant)

	result := &Result{ProjectHash: hash, Artifacts: make([]export.Artifact, len(variants))}
	var missing []int
	for i, v := range variants {
		if opts.Refresh {
			missing = append(missing, i)
			continue
		}
		key := r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(v, cal))
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil {
			r.Logger.Warn("cache read failed", "key", key, "err", err)
		}
		if !hit {
			missing = append(missing, i)
			continue
		}
		result.Artifacts[i] = export.Artifact{
			Name:    export.FileName(export.BaseName(v, ts), opts.format),
			Format:  opts.format,
			Width:   opts.Width,
			Height:  opts.Height,
			Variant: string(v),
			Data:    data,
		}
		result.CacheInfo.Hits++
	}

	settings := opts.Settings()
	for n, i := range missing {
		if n > 0 {
			if err := export.Sleep(ctx, r.Exporter.PairDelay); err != nil {
				return nil, err
			}
		}
		v := variants[i]
		a, _, err := r.Exporter.Export(ctx, export.Request{
			Project:      p,
			Width:        settings.Width,
			Height:       settings.Height,
			Format:       settings.Format,
			Quality:      settings.Quality,
			Variant:      v,
			BaseName:     export.BaseName(v, ts),
			Placeholders: settings.Placeholders,
		})
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", p.ID, err)
		}
		result.Artifacts[i] = a

		key := r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(v, cal))
		if err := r.Cache.Set(ctx, key, a.Data, r.artifactTTL()); err != nil {
			r.Logger.Warn("cache write failed", "key", key, "err", err)
		}
	}

	for _, a := range result.Artifacts {
		result.Stats.Bytes += len(a.Data)
	}
	result.Stats.Artifacts = len(result.Artifacts)
	result.Stats.Duration = time.Since(start)
	result.CacheInfo.Hit = len(missing) == 0

	r.Logger.Debug("export finished",
		"project", p.ID,
		"artifacts", result.Stats.Artifacts,
		"cache_hits", result.CacheInfo.Hits,
		"duration", result.Stats.Duration)
	return result, nil
}

// ExportAll exports the projects with the given ids in order, or every
// project of the store when ids is empty. An id the store does not hold
// fails with ELEMENT_NOT_FOUND for that item only. opts.Variant is
// ignored: paired projects always export both halves.
func (r *Runner) ExportAll(ctx context.Context, store *project.Store, ids []string, opts Options) (export.BatchResult, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return export.BatchResult{}, fmt.Errorf("invalid options: %w", err)
	}

	var items []export.Item
	if len(ids) == 0 {
		for _, p := range store.List() {
			items = append(items, export.Item{ID: p.ID, Project: &p})
		}
	} else {
		for _, id := range ids {
			it := export.Item{ID: id}
			if p, ok := store.Get(id); ok {
				it.Project = &p
			}
			items = append(items, it)
		}
	}
	return r.Exporter.Batch(ctx, items, opts.Settings())
}

// Composition lays p out without rasterizing it.
func (r *Runner) Composition(ctx context.Context, p project.Project, width, height int, opts compose.Options) (*compose.Tree, error) {
	return r.Exporter.Renderer.Render(ctx, p.Clone(), width, height, opts)
}

// CompositionJSON returns the JSON encoding of p's visual tree and whether
// it came from the cache.
func (r *Runner) CompositionJSON(ctx context.Context, p project.Project, width, height int, v catalog.Variant, refresh bool) ([]byte, bool, error) {
	hash, err := r.ProjectHash(ctx, p)
	if err != nil {
		return nil, false, err
	}
	key := r.Keyer.CompositionKey(hash, cache.CompositionKeyOpts{
		Width:       width,
		Height:      height,
		Variant:     string(v),
		Calibration: r.calibrationKey(),
	})
	if !refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			return data, true, nil
		}
	}

	tree, err := r.Composition(ctx, p, width, height, compose.Options{Variant: v})
	if err != nil {
		return nil, false, err
	}
	data, err := json.Marshal(tree)
	if err != nil {
		return nil, false, fmt.Errorf("encode composition: %w", err)
	}
	if err := r.Cache.Set(ctx, key, data, cache.TTLComposition); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "err", err)
	}
	return data, false, nil
}

// ProjectHash hashes everything that affects how p renders: its content
// without identity, timestamps and the editor's phone selection, plus the content hash of every image
// it references. Duplicated projects therefore share cache entries.
func (r *Runner) ProjectHash(ctx context.Context, p project.Project) (string, error) {
	p = p.Clone()
	p.ID = ""
	p.CreatedAt = time.Time{}
	p.UpdatedAt = time.Time{}
	p.SelectedPhoneIndex = nil

	var images [2]string
	for i := range images {
		images[i] = r.fingerprint(ctx, p.PhoneImage(i))
	}
	h, err := cache.HashJSON(struct {
		Project project.Project `json:"project"`
		Images  [2]string       `json:"images"`
	}{p, images})
	if err != nil {
		return "", fmt.Errorf("hash project: %w", err)
	}
	return h, nil
}

type fingerprinter interface {
	Fingerprint(ctx context.Context, src string) (string, error)
}

// fingerprint returns the content hash of src. Unreadable sources hash
// as empty, matching how the renderer treats them.
func (r *Runner) fingerprint(ctx context.Context, src string) string {
	if src == "" || r.Images == nil {
		return ""
	}
	if f, ok := r.Images.(fingerprinter); ok {
		fp, err := f.Fingerprint(ctx, src)
		if err != nil {
			return ""
		}
		return fp
	}
	img, err := r.Images.Resolve(ctx, src)
	if err != nil || img == nil {
		return ""
	}
	return img.Fingerprint
}

func (r *Runner) calibrationKey() string {
	if r.Exporter == nil || r.Exporter.Renderer == nil {
		return ""
	}
	h, _ := cache.HashJSON(r.Exporter.Renderer.Calibration)
	return h
}

func (r *Runner) artifactTTL() time.Duration {
	if r.ArtifactTTL > 0 {
		return r.ArtifactTTL
	}
	return cache.TTLArtifact
}

func (r *Runner) now() time.Time {
	if r.Exporter != nil && r.Exporter.Now != nil {
		return r.Exporter.Now()
	}
	return time.Now()
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func exportVariants(p project.Project, v catalog.Variant) []catalog.Variant {
	switch {
	case !p.IsPaired():
		return []catalog.Variant{catalog.VariantNone}
	case v != catalog.VariantNone:
		return []catalog.Variant{v}
	default:
		return []catalog.Variant{catalog.VariantLeft, catalog.VariantRight}
	}
}
