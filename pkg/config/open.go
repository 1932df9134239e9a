package config

import (
	"context"

	"github.com/matzehuels/storeshots/pkg/cache"
	"github.com/matzehuels/storeshots/pkg/project"
)

// OpenCache builds the configured artifact cache, wrapped so that cache
// hooks observe it. noCache forces the null cache.
func (c Config) OpenCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	var (
		inner cache.Cache
		err   error
	)
	switch c.Cache.Backend {
	case CacheNone:
		return cache.NewNullCache(), nil
	case CacheRedis:
		inner, err = cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     c.Cache.RedisAddr,
			Password: c.Cache.RedisPassword,
			DB:       c.Cache.RedisDB,
		})
	default:
		dir := c.Cache.Dir
		if dir == "" {
			if dir, err = cache.DefaultDir(); err != nil {
				return nil, err
			}
		}
		inner, err = cache.NewFileCache(dir)
	}
	if err != nil {
		return nil, err
	}
	return cache.NewObserved(inner), nil
}

// Keyer returns the cache keyer, scoped when a prefix is configured.
func (c Config) Keyer() cache.Keyer {
	if c.Cache.Prefix == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(nil, c.Cache.Prefix)
}

// OpenStore builds the configured project backend. A non-empty path
// overrides the configured file.
func (c Config) OpenStore(ctx context.Context, path string) (project.Backend, error) {
	if c.Store.Backend == StoreMongo && path == "" {
		return project.NewMongoBackend(ctx, project.MongoConfig{
			URI:        c.Store.MongoURI,
			Database:   c.Store.MongoDatabase,
			Collection: c.Store.MongoCollection,
		})
	}
	if path == "" {
		path = c.Store.Path
	}
	return project.NewFileBackend(path)
}
