// Package config loads the storeshots configuration file.
//
// The file is TOML and every key is optional:
//
//	[export]
//	size = "app-store-6.7"
//	format = "jpeg"
//	quality = 0.9
//	fit = "crop"
//
//	[render]
//	reserve_margin = 0.8
//	oversample = 2
//	pair_delay = "300ms"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	ttl = "168h"
//
//	[store]
//	backend = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
//
//	[server]
//	addr = ":8080"
//
// The [render] values feed a single geometry.Calibration that both the
// renderer and the live capturer receive.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/storeshots/pkg/catalog"
	"github.com/matzehuels/storeshots/pkg/errors"
	"github.com/matzehuels/storeshots/pkg/export"
	"github.com/matzehuels/storeshots/pkg/geometry"
)

// Backend names.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"

	StoreFile  = "file"
	StoreMongo = "mongo"
)

// Config is the whole configuration file.
type Config struct {
	Export  ExportConfig  `toml:"export"`
	Render  RenderConfig  `toml:"render"`
	Capture CaptureConfig `toml:"capture"`
	Cache   CacheConfig   `toml:"cache"`
	Store   StoreConfig   `toml:"store"`
	Server  ServerConfig  `toml:"server"`
}

// ExportConfig holds the export defaults used when a command does not
// override them.
type ExportConfig struct {
	Size    string  `toml:"size"`
	Format  string  `toml:"format"`
	Quality float64 `toml:"quality"`
	Fit     string  `toml:"fit"`
}

// RenderConfig holds the calibration and paired-export timing.
type RenderConfig struct {
	ReserveMargin   float64  `toml:"reserve_margin"`
	Oversample      float64  `toml:"oversample"`
	ReferenceWidth  float64  `toml:"reference_width"`
	ReferenceHeight float64  `toml:"reference_height"`
	PairDelay       Duration `toml:"pair_delay"`
}

// CaptureConfig configures live element capture.
type CaptureConfig struct {
	ChromePath string   `toml:"chrome_path"`
	Timeout    Duration `toml:"timeout"`
}

// CacheConfig selects and configures the artifact cache.
type CacheConfig struct {
	Backend       string   `toml:"backend"`
	Dir           string   `toml:"dir"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	Prefix        string   `toml:"prefix"`
	TTL           Duration `toml:"ttl"`
}

// StoreConfig selects the project store backend for the server.
type StoreConfig struct {
	Backend         string `toml:"backend"`
	Path            string `toml:"path"`
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// ServerConfig configures `storeshots serve`.
type ServerConfig struct {
	Addr            string   `toml:"addr"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
}

// Duration is a time.Duration written as a Go duration string in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration used when no file exists.
func Default() Config {
	var c Config
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills every unset field. It is idempotent.
func (c *Config) ApplyDefaults() {
	if c.Export.Size == "" {
		c.Export.Size = catalog.DefaultSizeID
	}
	if c.Export.Format == "" {
		c.Export.Format = string(export.FormatPNG)
	}
	if c.Export.Quality == 0 {
		c.Export.Quality = export.DefaultQuality
	}
	if c.Export.Fit == "" {
		c.Export.Fit = string(export.FitCrop)
	}

	cal := c.Calibration()
	c.Render.ReserveMargin = cal.ReserveMargin
	c.Render.Oversample = cal.Oversample
	c.Render.ReferenceWidth = cal.ReferenceWidth
	c.Render.ReferenceHeight = cal.ReferenceHeight

	if c.Capture.Timeout.Duration == 0 {
		c.Capture.Timeout.Duration = 30 * time.Second
	}

	if c.Cache.Backend == "" {
		c.Cache.Backend = CacheFile
	}
	if c.Cache.RedisAddr == "" && c.Cache.Backend == CacheRedis {
		c.Cache.RedisAddr = "localhost:6379"
	}
	if c.Cache.TTL.Duration == 0 {
		c.Cache.TTL.Duration = 7 * 24 * time.Hour
	}

	if c.Store.Backend == "" {
		c.Store.Backend = StoreFile
	}
	if c.Store.Path == "" && c.Store.Backend == StoreFile {
		c.Store.Path = "projects.toml"
	}

	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ShutdownTimeout.Duration == 0 {
		c.Server.ShutdownTimeout.Duration = 10 * time.Second
	}
}

// Validate reports the first invalid value.
func (c Config) Validate() error {
	if _, err := catalog.GetSize(c.Export.Size); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "[export] size")
	}
	if _, err := export.ParseFormat(c.Export.Format); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "[export] format")
	}
	if err := errors.ValidateQuality(c.Export.Quality); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "[export] quality")
	}
	if _, err := export.ParseFitPolicy(c.Export.Fit); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "[export] fit")
	}
	if c.Render.ReserveMargin < 0 || c.Render.ReserveMargin > 1 {
		return errors.New(errors.ErrCodeInvalidInput, "[render] reserve_margin must be within [0,1], got %v", c.Render.ReserveMargin)
	}
	if c.Render.PairDelay.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "[render] pair_delay must not be negative")
	}
	switch c.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidInput, "[cache] redis_addr is required for the redis backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "[cache] unknown backend %q (want file, redis or none)", c.Cache.Backend)
	}
	switch c.Store.Backend {
	case StoreFile:
	case StoreMongo:
		if c.Store.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidInput, "[store] mongo_uri is required for the mongo backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "[store] unknown backend %q (want file or mongo)", c.Store.Backend)
	}
	return nil
}

// Calibration returns the render calibration with defaults applied.
func (c Config) Calibration() geometry.Calibration {
	return geometry.Calibration{
		ReserveMargin:   c.Render.ReserveMargin,
		Oversample:      c.Render.Oversample,
		ReferenceWidth:  c.Render.ReferenceWidth,
		ReferenceHeight: c.Render.ReferenceHeight,
	}.WithDefaults()
}

// DefaultPath returns $XDG_CONFIG_HOME/storeshots/config.toml, falling
// back to ~/.config/storeshots/config.toml.
func DefaultPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "storeshots", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "storeshots", "config.toml"), nil
}

// Load reads the file at path, applies defaults and validates the result.
// A missing file yields the defaults unless mustExist is set.
func Load(path string, mustExist bool) (Config, error) {
	var c Config
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err) && !mustExist:
		return Default(), nil
	case err != nil:
		return Config{}, errors.Wrap(errors.ErrCodeNotFound, err, "read config %s", path)
	}

	md, err := toml.Decode(string(data), &c)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, errors.New(errors.ErrCodeInvalidInput, "config %s: unknown key %q", path, undecoded[0].String())
	}
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}
