package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/storeshots/pkg/cache"
	"github.com/matzehuels/storeshots/pkg/errors"
)

// newTestCLI returns a CLI whose config file is written to a temp dir.
func newTestCLI(t *testing.T, config string) *CLI {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(config), 0o644); err != nil {
		t.Fatal(err)
	}
	c := New(&bytes.Buffer{}, log.InfoLevel)
	c.ConfigPath = path
	return c
}

func TestCacheDirFromConfig(t *testing.T) {
	want := filepath.Join(t.TempDir(), "artifacts")
	c := newTestCLI(t, "[cache]\ndir = \""+filepath.ToSlash(want)+"\"\n")

	dir, err := c.cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if dir != filepath.ToSlash(want) {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirDefault(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)
	c := newTestCLI(t, "")

	dir, err := c.cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join(xdg, appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirRedis(t *testing.T) {
	c := newTestCLI(t, "[cache]\nbackend = \"redis\"\n")

	_, err := c.cacheDir()
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("cacheDir() error = %v, want UNSUPPORTED", err)
	}
}

func TestCacheClearCommand(t *testing.T) {
	dir := t.TempDir()
	c := newTestCLI(t, "[cache]\ndir = \""+filepath.ToSlash(dir)+"\"\n")

	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	for _, k := range []string{"a", "b", "c"} {
		if err := fc.Set(ctx, k, []byte(k), time.Hour); err != nil {
			t.Fatal(err)
		}
	}

	cmd := c.cacheClearCommand()
	cmd.SetArgs(nil)
	if err := cmd.ExecuteContext(ctx); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if _, ok, _ := fc.Get(ctx, k); ok {
			t.Errorf("entry %q survived cache clear", k)
		}
	}
}
