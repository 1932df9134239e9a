package cache

import (
	"context"
	stderrors "errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/storeshots/pkg/observability"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set() error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get() = %q, %v, %v, want miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete() error: %v", err)
	}
}

func TestHash(t *testing.T) {
	h1, h2, h3 := Hash([]byte("hello")), Hash([]byte("hello")), Hash([]byte("world"))
	if h1 != h2 {
		t.Error("Hash() is not deterministic")
	}
	if h1 == h3 {
		t.Error("Hash() collides for different inputs")
	}
	if len(h1) != 64 {
		t.Errorf("len(Hash()) = %d, want 64", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	base := ArtifactKeyOpts{Width: 1080, Height: 1920, Format: "png"}

	tests := []struct {
		name string
		opts ArtifactKeyOpts
	}{
		{"format", ArtifactKeyOpts{Width: 1080, Height: 1920, Format: "jpeg"}},
		{"size", ArtifactKeyOpts{Width: 1242, Height: 2688, Format: "png"}},
		{"variant", ArtifactKeyOpts{Width: 1080, Height: 1920, Format: "png", Variant: "left"}},
		{"quality", ArtifactKeyOpts{Width: 1080, Height: 1920, Format: "png", Quality: 0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if k.ArtifactKey("h", base) == k.ArtifactKey("h", tt.opts) {
				t.Errorf("ArtifactKey() ignores %s", tt.name)
			}
		})
	}

	key := k.ArtifactKey("h", base)
	if !strings.HasPrefix(key, "artifact:") || len(key) != len("artifact:")+64 {
		t.Errorf("ArtifactKey() = %q, want artifact:<sha256>", key)
	}
	if key != k.ArtifactKey("h", base) {
		t.Error("ArtifactKey() is not deterministic")
	}
	if k.ArtifactKey("h", base) == k.ArtifactKey("other", base) {
		t.Error("ArtifactKey() ignores the project hash")
	}
	if !strings.HasPrefix(k.CompositionKey("h", CompositionKeyOpts{Width: 1}), "composition:") {
		t.Error("CompositionKey() has the wrong prefix")
	}
}

func TestScopedKeyer(t *testing.T) {
	plain := NewDefaultKeyer().ArtifactKey("h", ArtifactKeyOpts{Format: "png"})
	scoped := NewScopedKeyer(nil, "prod:").ArtifactKey("h", ArtifactKeyOpts{Format: "png"})
	if scoped != "prod:"+plain {
		t.Errorf("ScopedKeyer.ArtifactKey() = %q, want prod:%s", scoped, plain)
	}
}

func TestKeyType(t *testing.T) {
	tests := []struct{ key, want string }{
		{"artifact:abc", "artifact"},
		{"prod:composition:abc", "composition"},
		{"plain", ""},
	}
	for _, tt := range tests {
		if got := KeyType(tt.key); got != tt.want {
			t.Errorf("KeyType(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}

	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("Get() on empty cache hit")
	}
	if err := c.Set(ctx, "k", []byte("png bytes"), time.Hour); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "png bytes" {
		t.Errorf("Get() = %q, %v, %v", data, hit, err)
	}

	if err := c.Set(ctx, "old", []byte("x"), time.Nanosecond); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "old"); hit {
		t.Error("Get() returned an expired entry")
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete() error: %v", err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete(missing) error: %v", err)
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	_ = c.Set(ctx, "k", []byte("v"), 0)
	if err := os.WriteFile(c.path("k"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("Get(corrupt) = %v, %v, want miss", hit, err)
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("corrupt entry was not removed")
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, _ := NewFileCache(dir)
	for _, k := range []string{"a", "b", "c"} {
		_ = c.Set(ctx, k, []byte(k), 0)
	}
	keep := filepath.Join(dir, "config.toml")
	_ = os.WriteFile(keep, nil, 0o644)

	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear() = %d, want 3", n)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("entry survived Clear()")
	}
	if _, err := os.Stat(keep); err != nil {
		t.Error("Clear() removed a file outside the shards")
	}
}

// fakeRedis is an in-memory redisClient.
type fakeRedis struct {
	mu      sync.Mutex
	data    map[string]string
	ttl     map[string]time.Duration
	failGet int
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttl: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet > 0 {
		f.failGet--
		return redis.NewStringResult("", &net.OpError{Op: "read", Err: stderrors.New("connection reset")})
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value any, exp time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = string(value.([]byte))
	f.ttl[key] = exp
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeRedis) Close() error { return nil }

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	fake := newFakeRedis()
	c := &RedisCache{rdb: fake}

	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("Get(missing) = %v, %v, want miss", hit, err)
	}
	if err := c.Set(ctx, "k", []byte("v"), TTLArtifact); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if fake.ttl["k"] != TTLArtifact {
		t.Errorf("ttl = %v, want %v", fake.ttl["k"], TTLArtifact)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v" {
		t.Errorf("Get() = %q, %v, %v", data, hit, err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete() error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("Get() after Delete() hit")
	}
}

func TestRedisCacheRetriesNetworkErrors(t *testing.T) {
	retryDelay = time.Millisecond
	defer func() { retryDelay = 100 * time.Millisecond }()

	ctx := context.Background()
	fake := newFakeRedis()
	c := &RedisCache{rdb: fake}
	_ = c.Set(ctx, "k", []byte("v"), 0)

	fake.failGet = 2
	if data, hit, err := c.Get(ctx, "k"); err != nil || !hit || string(data) != "v" {
		t.Errorf("Get() after 2 failures = %q, %v, %v", data, hit, err)
	}

	fake.failGet = 3
	_, _, err := c.Get(ctx, "k")
	if !stderrors.Is(err, ErrNetwork) {
		t.Errorf("Get() after 3 failures error = %v, want ErrNetwork", err)
	}
}

func TestRetryWithBackoff(t *testing.T) {
	retryDelay = time.Millisecond
	defer func() { retryDelay = 100 * time.Millisecond }()
	ctx := context.Background()
	permanent := stderrors.New("bad command")

	tests := []struct {
		name      string
		failures  int
		err       error
		wantCalls int
		wantErr   bool
	}{
		{"success", 0, nil, 1, false},
		{"permanent", 5, permanent, 1, true},
		{"transient once", 1, Retryable(ErrNetwork), 2, false},
		{"transient always", 5, Retryable(ErrNetwork), 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := RetryWithBackoff(ctx, func() error {
				calls++
				if calls <= tt.failures {
					return tt.err
				}
				return nil
			})
			if (err != nil) != tt.wantErr {
				t.Errorf("RetryWithBackoff() error = %v, wantErr %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	if err := RetryWithBackoff(canceled, func() error { return Retryable(ErrNetwork) }); err != context.Canceled {
		t.Errorf("RetryWithBackoff(canceled) = %v, want context.Canceled", err)
	}
}

type countingHooks struct {
	observability.NoopCacheHooks

	mu           sync.Mutex
	hits, misses []string
	sets         int
}

func (h *countingHooks) OnCacheHit(_ context.Context, kind string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hits = append(h.hits, kind)
}

func (h *countingHooks) OnCacheMiss(_ context.Context, kind string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.misses = append(h.misses, kind)
}

func (h *countingHooks) OnCacheSet(_ context.Context, _ string, size int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sets += size
}

func TestObservedReportsHooks(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	fc, _ := NewFileCache(t.TempDir())
	c := NewObserved(fc)
	key := NewDefaultKeyer().ArtifactKey("h", ArtifactKeyOpts{Format: "png"})

	_, _, _ = c.Get(ctx, key)
	_ = c.Set(ctx, key, []byte("1234"), 0)
	_, _, _ = c.Get(ctx, key)

	if len(hooks.misses) != 1 || hooks.misses[0] != "artifact" {
		t.Errorf("misses = %v, want [artifact]", hooks.misses)
	}
	if len(hooks.hits) != 1 || hooks.hits[0] != "artifact" {
		t.Errorf("hits = %v, want [artifact]", hooks.hits)
	}
	if hooks.sets != 4 {
		t.Errorf("bytes set = %d, want 4", hooks.sets)
	}
}
