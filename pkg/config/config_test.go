package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/storeshots/pkg/cache"
	"github.com/matzehuels/storeshots/pkg/errors"
	"github.com/matzehuels/storeshots/pkg/geometry"
	"github.com/matzehuels/storeshots/pkg/project"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("Default().Validate() error: %v", err)
	}
	if c.Export.Size != "play-store" || c.Export.Format != "png" || c.Export.Quality != 0.92 || c.Export.Fit != "crop" {
		t.Errorf("export defaults = %+v", c.Export)
	}
	if c.Calibration() != geometry.DefaultCalibration() {
		t.Errorf("Calibration() = %+v, want default", c.Calibration())
	}
	if c.Render.PairDelay.Duration != 0 {
		t.Errorf("PairDelay = %v, want 0", c.Render.PairDelay)
	}

	again := c
	again.ApplyDefaults()
	if again != c {
		t.Error("ApplyDefaults() is not idempotent")
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[export]
size = "app-store-6.5"
format = "jpeg"
quality = 0.8

[render]
oversample = 3
pair_delay = "300ms"

[cache]
backend = "none"
`)
	c, err := Load(path, true)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if c.Export.Size != "app-store-6.5" || c.Export.Format != "jpeg" || c.Export.Quality != 0.8 {
		t.Errorf("export = %+v", c.Export)
	}
	if c.Export.Fit != "crop" {
		t.Errorf("Fit = %q, want default crop", c.Export.Fit)
	}
	if c.Calibration().Oversample != 3 || c.Calibration().ReserveMargin != 0.8 {
		t.Errorf("Calibration() = %+v", c.Calibration())
	}
	if c.Render.PairDelay.Duration != 300*time.Millisecond {
		t.Errorf("PairDelay = %v, want 300ms", c.Render.PairDelay)
	}
}

func TestLoadMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")
	c, err := Load(missing, false)
	if err != nil {
		t.Fatalf("Load(missing, optional) error: %v", err)
	}
	if c.Server.Addr != ":8080" {
		t.Errorf("Addr = %q, want :8080", c.Server.Addr)
	}
	if _, err := Load(missing, true); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Load(missing, required) error = %v, want NOT_FOUND", err)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		code errors.Code
	}{
		{"syntax", "[export\n", errors.ErrCodeInvalidFormat},
		{"unknown key", "[export]\ncolour = 1\n", errors.ErrCodeInvalidInput},
		{"unknown size", "[export]\nsize = \"watch\"\n", errors.ErrCodeInvalidInput},
		{"bad format", "[export]\nformat = \"gif\"\n", errors.ErrCodeInvalidInput},
		{"bad quality", "[export]\nquality = 1.5\n", errors.ErrCodeInvalidInput},
		{"bad fit", "[export]\nfit = \"stretch\"\n", errors.ErrCodeInvalidInput},
		{"bad duration", "[render]\npair_delay = \"soon\"\n", errors.ErrCodeInvalidFormat},
		{"bad cache", "[cache]\nbackend = \"memcached\"\n", errors.ErrCodeInvalidInput},
		{"mongo without uri", "[store]\nbackend = \"mongo\"\n", errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body), true)
			if !errors.Is(err, tt.code) {
				t.Errorf("Load() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestOpenCache(t *testing.T) {
	ctx := context.Background()
	c := Default()
	c.Cache.Dir = t.TempDir()

	fc, err := c.OpenCache(ctx, false)
	if err != nil {
		t.Fatalf("OpenCache() error: %v", err)
	}
	if err := fc.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if _, hit, _ := fc.Get(ctx, "k"); !hit {
		t.Error("file cache did not store the entry")
	}

	nc, _ := c.OpenCache(ctx, true)
	if _, ok := nc.(cache.NullCache); !ok {
		t.Errorf("OpenCache(noCache) = %T, want NullCache", nc)
	}
}

func TestKeyerPrefix(t *testing.T) {
	c := Default()
	plain := c.Keyer().ArtifactKey("h", cache.ArtifactKeyOpts{})
	c.Cache.Prefix = "tenant:"
	if got := c.Keyer().ArtifactKey("h", cache.ArtifactKeyOpts{}); got != "tenant:"+plain {
		t.Errorf("scoped key = %q", got)
	}
}

func TestOpenStore(t *testing.T) {
	c := Default()
	path := filepath.Join(t.TempDir(), "shots.yaml")
	b, err := c.OpenStore(context.Background(), path)
	if err != nil {
		t.Fatalf("OpenStore() error: %v", err)
	}
	fb, ok := b.(*project.FileBackend)
	if !ok || fb.Path() != path {
		t.Errorf("OpenStore() = %T, want file backend at %s", b, path)
	}
}
