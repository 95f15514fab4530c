// Package config loads lineage settings from a TOML file.
//
// Every setting has a default, so a missing file is never an error unless
// it was named explicitly. Command-line flags are applied on top of the
// loaded values by the CLI.
//
//	[layout]
//	node_width = 120
//	disjoint = false
//
//	[provider]
//	url = "https://tree.example/api"
//	token = "..."
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	prefix = "lineage:prod:"
//	ttl = "24h"
//
// The layout sizes and margins treat 0 as "use the built-in default", so
// top_margin = 0 or link_inset = 0 falls back to 60 and 40. Use a small
// positive value such as 0.01 to get a margin that is effectively zero.
package config

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/lineage/pkg/cache"
	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/layout"
	"github.com/matzehuels/lineage/pkg/provider"
)

// FileName is the name of the config file inside the config directory.
const FileName = "lineage.toml"

// Config is the complete set of file-backed settings.
type Config struct {
	Layout   Layout   `toml:"layout"`
	Provider Provider `toml:"provider"`
	Cache    Cache    `toml:"cache"`
	Server   Server   `toml:"server"`
}

// Layout mirrors [layout.Config]. A zero value selects the default.
type Layout struct {
	NodeWidth      float64 `toml:"node_width" validate:"gt=0"`
	NodeHeight     float64 `toml:"node_height" validate:"gt=0"`
	ViewportWidth  float64 `toml:"viewport_width" validate:"gt=0"`
	ViewportHeight float64 `toml:"viewport_height" validate:"gt=0"`
	TopMargin      float64 `toml:"top_margin" validate:"gte=0"`
	LinkInset      float64 `toml:"link_inset" validate:"gte=0"`
	Disjoint       bool    `toml:"disjoint"`
}

// Provider selects where snapshots come from when no file is given.
type Provider struct {
	URL             string        `toml:"url"`
	Token           string        `toml:"token"`
	MongoURI        string        `toml:"mongo_uri"`
	MongoDatabase   string        `toml:"mongo_database"`
	MongoCollection string        `toml:"mongo_collection"`
	Owner           string        `toml:"owner"`
	Timeout         time.Duration `toml:"timeout" validate:"gte=0"`
}

// Cache selects the artifact cache backend.
type Cache struct {
	Backend   string        `toml:"backend" validate:"oneof=none file redis"`
	Dir       string        `toml:"dir"`
	RedisAddr string        `toml:"redis_addr"`
	Prefix    string        `toml:"prefix"` // prepended to every cache key
	TTL       time.Duration `toml:"ttl" validate:"gte=0"`
}

// Server configures `lineage serve`.
type Server struct {
	Addr string `toml:"addr" validate:"required"`
}

// Default returns the built-in settings.
func Default() Config {
	l := layout.DefaultConfig()
	return Config{
		Layout: Layout{
			NodeWidth:      l.NodeWidth,
			NodeHeight:     l.NodeHeight,
			ViewportWidth:  l.ViewportWidth,
			ViewportHeight: l.ViewportHeight,
			TopMargin:      l.TopMargin,
			LinkInset:      l.LinkInset,
		},
		Provider: Provider{
			MongoDatabase:   provider.DefaultMongoDatabase,
			MongoCollection: provider.DefaultMongoCollection,
			Timeout:         10 * time.Second,
		},
		Cache: Cache{
			Backend: cache.BackendNone,
			Dir:     defaultCacheDir(),
			TTL:     cache.TTLArtifact,
		},
		Server: Server{Addr: ":8080"},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/lineage/lineage.toml (or the
// platform equivalent), or "" when no config directory is known.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "lineage", FileName)
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "lineage")
	}
	return filepath.Join(dir, "lineage")
}

// Load reads path over the defaults. An empty path means [DefaultPath],
// which may be absent; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
		if path == "" {
			return cfg, nil
		}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicit {
			return cfg, errors.New(errors.ErrCodeNotFound, "config file not found: %s", path)
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	return cfg, cfg.Validate()
}

// Decode reads TOML from r over the defaults.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	return cfg, cfg.Validate()
}

// Encode writes cfg as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Validate checks value ranges and backend requirements.
func (c Config) Validate() error {
	if err := errors.ValidateStructCode(errors.ErrCodeInvalidConfig, c); err != nil {
		return err
	}
	if c.Cache.Backend == cache.BackendRedis && c.Cache.RedisAddr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis backend")
	}
	if c.Provider.URL != "" {
		if err := errors.ValidateURL(c.Provider.URL); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "provider.url")
		}
	}
	return nil
}

// LayoutConfig converts the layout section.
func (c Config) LayoutConfig() layout.Config {
	return layout.Config{
		NodeWidth:      c.Layout.NodeWidth,
		NodeHeight:     c.Layout.NodeHeight,
		ViewportWidth:  c.Layout.ViewportWidth,
		ViewportHeight: c.Layout.ViewportHeight,
		TopMargin:      c.Layout.TopMargin,
		LinkInset:      c.Layout.LinkInset,
		Disjoint:       c.Layout.Disjoint,
	}
}

// CacheOptions converts the cache section.
func (c Config) CacheOptions() cache.Options {
	return cache.Options{
		Backend:   c.Cache.Backend,
		Dir:       c.Cache.Dir,
		RedisAddr: c.Cache.RedisAddr,
	}
}

// Keyer returns the cache keyer, scoped by the configured prefix when one is
// set so that deployments can share a Redis instance.
func (c Config) Keyer() cache.Keyer {
	if c.Cache.Prefix == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), c.Cache.Prefix)
}

// HTTPOptions converts the provider section for [provider.NewHTTP].
func (c Config) HTTPOptions() provider.HTTPOptions {
	return provider.HTTPOptions{
		BaseURL: c.Provider.URL,
		Token:   c.Provider.Token,
		Timeout: c.Provider.Timeout,
	}
}

// MongoOptions converts the provider section for [provider.NewMongo].
func (c Config) MongoOptions() provider.MongoOptions {
	return provider.MongoOptions{
		URI:        c.Provider.MongoURI,
		Database:   c.Provider.MongoDatabase,
		Collection: c.Provider.MongoCollection,
		Owner:      c.Provider.Owner,
		Timeout:    c.Provider.Timeout,
	}
}
