package cache

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/storeshots/pkg/observability"
)

// Observed reports hits, misses and writes of an inner cache to the
// registered observability.CacheHooks.
type Observed struct {
	Cache
}

// NewObserved wraps c.
func NewObserved(c Cache) *Observed { return &Observed{Cache: c} }

// Get implements Cache.
func (o *Observed) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, hit, err := o.Cache.Get(ctx, key)
	if err == nil {
		if hit {
			observability.Cache().OnCacheHit(ctx, KeyType(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, KeyType(key))
		}
	}
	return data, hit, err
}

// Set implements Cache.
func (o *Observed) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := o.Cache.Set(ctx, key, data, ttl)
	if err == nil {
		observability.Cache().OnCacheSet(ctx, KeyType(key), len(data))
	}
	return err
}

// KeyType returns the kind segment of a key, such as "artifact" for
// "scope:artifact:<hash>".
func KeyType(key string) string {
	i := strings.LastIndexByte(key, ':')
	if i < 0 {
		return ""
	}
	kind := key[:i]
	if j := strings.LastIndexByte(kind, ':'); j >= 0 {
		kind = kind[j+1:]
	}
	return kind
}
