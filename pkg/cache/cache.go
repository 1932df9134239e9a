// Package cache stores rendered artifacts by content hash.
//
// Three backends implement [Cache]:
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: a shared Redis instance, for the HTTP server
//   - [NullCache]: stores nothing, for --no-cache
//
// Keys come from a [Keyer]. The default keyer hashes every input that
// affects the output, so an entry is valid for as long as it exists and
// TTLs only bound disk and memory use.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the entry for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero or less never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}

// Default entry lifetimes.
const (
	// TTLArtifact bounds encoded images and archives.
	TTLArtifact = 7 * 24 * time.Hour

	// TTLComposition bounds serialized visual trees.
	TTLComposition = 24 * time.Hour
)
