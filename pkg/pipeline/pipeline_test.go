package pipeline

import (
	"context"
	"encoding/json"
	"image"
	"slices"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/storeshots/pkg/cache"
	"github.com/matzehuels/storeshots/pkg/catalog"
	"github.com/matzehuels/storeshots/pkg/compose"
	"github.com/matzehuels/storeshots/pkg/errors"
	"github.com/matzehuels/storeshots/pkg/export"
	"github.com/matzehuels/storeshots/pkg/geometry"
	"github.com/matzehuels/storeshots/pkg/imagesrc"
	"github.com/matzehuels/storeshots/pkg/project"
)

func TestValidateAndSetDefaults(t *testing.T) {
	tests := []struct {
		name       string
		opts       Options
		wantW      int
		wantH      int
		wantFormat string
		wantErr    errors.Code
	}{
		{"defaults", Options{}, 1080, 1920, "png", ""},
		{"size id", Options{Size: "app-store-6.7"}, 1290, 2796, "png", ""},
		{"explicit dimensions win", Options{Size: "play-store", Width: 300, Height: 600}, 300, 600, "png", ""},
		{"jpg alias", Options{Format: "jpg"}, 1080, 1920, "jpeg", ""},
		{"unknown size", Options{Size: "watch"}, 0, 0, "", errors.ErrCodeInvalidSize},
		{"half dimensions", Options{Width: 300}, 0, 0, "", errors.ErrCodeInvalidSize},
		{"bad format", Options{Format: "gif"}, 0, 0, "", errors.ErrCodeInvalidFormat},
		{"bad quality", Options{Quality: 2}, 0, 0, "", errors.ErrCodeInvalidInput},
		{"bad variant", Options{Variant: "middle"}, 0, 0, "", errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := tt.opts
			err := o.ValidateAndSetDefaults()
			if tt.wantErr != "" {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ValidateAndSetDefaults() error = %v, want %s", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateAndSetDefaults() error: %v", err)
			}
			if o.Width != tt.wantW || o.Height != tt.wantH || o.Format != tt.wantFormat {
				t.Errorf("got %dx%d %s, want %dx%d %s", o.Width, o.Height, o.Format, tt.wantW, tt.wantH, tt.wantFormat)
			}
			if o.Quality != DefaultQuality {
				t.Errorf("Quality = %v, want %v", o.Quality, DefaultQuality)
			}
			if err := o.ValidateAndSetDefaults(); err != nil {
				t.Errorf("second ValidateAndSetDefaults() error: %v", err)
			}
		})
	}
}

type countingRaster struct{ calls atomic.Int32 }

func (c *countingRaster) rasterize(tree *compose.Tree) (*image.NRGBA, error) {
	c.calls.Add(1)
	return image.NewNRGBA(image.Rect(0, 0, tree.Width, tree.Height)), nil
}

func newTestRunner(t *testing.T) (*Runner, *countingRaster) {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}
	r := compose.NewRenderer(geometry.DefaultCalibration(), imagesrc.NewLoader(0), nil, nil)
	e := export.NewExporter(r, nil, nil)
	e.Now = func() time.Time { return time.UnixMilli(1700000000000) }
	raster := &countingRaster{}
	e.Target.Rasterize = raster.rasterize
	return NewRunner(c, nil, e, nil), raster
}

func smallOpts() Options { return Options{Width: 60, Height: 120} }

func TestRunnerExportCaches(t *testing.T) {
	ctx := context.Background()
	runner, raster := newTestRunner(t)
	p := project.New()

	first, err := runner.Export(ctx, p, smallOpts())
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	if first.CacheInfo.Hit || first.CacheInfo.Hits != 0 {
		t.Errorf("first CacheInfo = %+v, want miss", first.CacheInfo)
	}
	if len(first.Artifacts) != 1 || first.Artifacts[0].Name != "screenshot-1700000000000.png" {
		t.Fatalf("artifacts = %+v", first.Artifacts)
	}

	second, err := runner.Export(ctx, p, smallOpts())
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	if !second.CacheInfo.Hit {
		t.Error("second Export() missed the cache")
	}
	if second.Artifacts[0].Name != first.Artifacts[0].Name || len(second.Artifacts[0].Data) != len(first.Artifacts[0].Data) {
		t.Error("cached artifact differs from the rendered one")
	}
	if got := raster.calls.Load(); got != 1 {
		t.Errorf("captures = %d, want 1", got)
	}

	refresh := smallOpts()
	refresh.Refresh = true
	if res, _ := runner.Export(ctx, p, refresh); res.CacheInfo.Hits != 0 {
		t.Error("Refresh read from the cache")
	}
	if got := raster.calls.Load(); got != 2 {
		t.Errorf("captures after refresh = %d, want 2", got)
	}
}

func TestRunnerCacheKeyFollowsContent(t *testing.T) {
	ctx := context.Background()
	runner, _ := newTestRunner(t)
	p := project.New()

	h1, _ := runner.ProjectHash(ctx, p)

	dup := p.Clone()
	dup.ID = project.NewID()
	dup.UpdatedAt = dup.UpdatedAt.Add(time.Hour)
	h2, _ := runner.ProjectHash(ctx, dup)
	if h1 != h2 {
		t.Error("ProjectHash() depends on identity or timestamps")
	}

	retitled, _ := project.Apply(p, project.SetTitle("Other"))
	h3, _ := runner.ProjectHash(ctx, retitled)
	if h1 == h3 {
		t.Error("ProjectHash() ignores the title")
	}
}

func TestRunnerCacheIgnoresPhoneSelection(t *testing.T) {
	ctx := context.Background()
	runner, raster := newTestRunner(t)
	p := project.New()
	want, _ := runner.ProjectHash(ctx, p)

	for _, idx := range []int{0, 1} {
		sel := p.Clone()
		sel.SelectedPhoneIndex = &idx
		if got, _ := runner.ProjectHash(ctx, sel); got != want {
			t.Errorf("ProjectHash() with phone %d selected = %s, want %s", idx, got, want)
		}
	}

	if _, err := runner.Export(ctx, p, smallOpts()); err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	idx := 0
	sel := p.Clone()
	sel.SelectedPhoneIndex = &idx
	res, err := runner.Export(ctx, sel, smallOpts())
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	if !res.CacheInfo.Hit {
		t.Error("selecting a phone missed the artifact cache")
	}
	if got := raster.calls.Load(); got != 1 {
		t.Errorf("captures = %d, want 1", got)
	}
}

func TestRunnerExportPaired(t *testing.T) {
	ctx := context.Background()
	runner, _ := newTestRunner(t)
	p, _ := project.Apply(project.New(), project.SetLayout("split-pair"))

	res, err := runner.Export(ctx, p, smallOpts())
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	var names []string
	for _, a := range res.Artifacts {
		names = append(names, a.Name)
	}
	want := []string{"screenshot-left-1700000000000.png", "screenshot-right-1700000000000.png"}
	if !slices.Equal(names, want) {
		t.Errorf("names = %v, want %v", names, want)
	}

	one := smallOpts()
	one.Variant = "right"
	res, err = runner.Export(ctx, p, one)
	if err != nil {
		t.Fatalf("Export(right) error: %v", err)
	}
	if len(res.Artifacts) != 1 || res.Artifacts[0].Variant != "right" || !res.CacheInfo.Hit {
		t.Errorf("Export(right) = %+v, cache %+v", res.Artifacts, res.CacheInfo)
	}
}

func TestRunnerExportAll(t *testing.T) {
	ctx := context.Background()
	runner, _ := newTestRunner(t)
	store := project.NewStore(nil)
	a, _ := store.Add(project.SetTitle("A"))
	c, _ := store.Add(project.SetTitle("C"))

	res, err := runner.ExportAll(ctx, store, []string{a.ID, "missing", c.ID}, smallOpts())
	if err != nil {
		t.Fatalf("ExportAll() error: %v", err)
	}
	if len(res.Outcomes) != 3 {
		t.Fatalf("outcomes = %d, want 3", len(res.Outcomes))
	}
	if !errors.Is(res.Outcomes[1].Err, errors.ErrCodeElementNotFound) {
		t.Errorf("missing item error = %v", res.Outcomes[1].Err)
	}
	if len(res.Artifacts()) != 2 {
		t.Errorf("artifacts = %d, want 2", len(res.Artifacts()))
	}

	all, err := runner.ExportAll(ctx, store, nil, smallOpts())
	if err != nil {
		t.Fatalf("ExportAll(all) error: %v", err)
	}
	if len(all.Outcomes) != 2 || all.Outcomes[0].ProjectID != a.ID {
		t.Errorf("ExportAll(all) outcomes = %+v", all.Outcomes)
	}
}

func TestRunnerCompositionJSON(t *testing.T) {
	ctx := context.Background()
	runner, _ := newTestRunner(t)
	p := project.New()

	data, hit, err := runner.CompositionJSON(ctx, p, 400, 800, catalog.VariantNone, false)
	if err != nil {
		t.Fatalf("CompositionJSON() error: %v", err)
	}
	if hit {
		t.Error("first CompositionJSON() hit the cache")
	}
	var tree struct {
		Width  int               `json:"width"`
		Layers []json.RawMessage `json:"layers"`
	}
	if err := json.Unmarshal(data, &tree); err != nil {
		t.Fatalf("json.Unmarshal() error: %v", err)
	}
	if tree.Width != 400 || len(tree.Layers) == 0 {
		t.Errorf("tree = width %d, %d layers", tree.Width, len(tree.Layers))
	}

	if _, hit, _ := runner.CompositionJSON(ctx, p, 400, 800, catalog.VariantNone, false); !hit {
		t.Error("second CompositionJSON() missed the cache")
	}
}
