// Package cache stores rendered artifacts between runs.
//
// Only final artifacts (SVG documents, layout JSON, DOT text) are cached.
// Graphs, hierarchies and layouts are always recomputed from the current
// snapshot; artifact keys embed the snapshot hash, so a changed snapshot can
// never be served a stale drawing.
//
// # Backends
//
//   - [NullCache]: stores nothing (the default)
//   - [FileCache]: one JSON file per entry under a directory
//   - [RedisCache]: a shared Redis instance, for `lineage serve`
//
// [Open] picks a backend from [Options].
package cache

import (
	"context"
	"time"

	"github.com/matzehuels/lineage/pkg/errors"
)

// TTLArtifact is how long rendered artifacts stay cached.
const TTLArtifact = 24 * time.Hour

// Backend names accepted by [Open].
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Cache is a byte-oriented key/value store with per-entry TTL.
type Cache interface {
	// Get returns the entry for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of 0 keeps the entry until deleted.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend   string
	Dir       string
	RedisAddr string
}

// Open returns the cache described by opts. An empty backend means
// [BackendNone].
func Open(ctx context.Context, opts Options) (Cache, error) {
	switch opts.Backend {
	case "", BackendNone:
		return NewNullCache(), nil
	case BackendFile:
		if opts.Dir == "" {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "file cache needs a directory")
		}
		fc, err := NewFileCache(opts.Dir)
		if err != nil {
			return nil, err
		}
		return fc, nil
	case BackendRedis:
		if opts.RedisAddr == "" {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "redis cache needs an address")
		}
		return NewRedisCache(ctx, opts.RedisAddr)
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", opts.Backend)
	}
}

// Keyer derives cache keys for rendered artifacts.
type Keyer interface {
	ArtifactKey(snapshotHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts holds every render and layout parameter that changes the
// bytes of an artifact.
type ArtifactKeyOpts struct {
	Format         string  `json:"format"`
	NodeWidth      float64 `json:"node_width"`
	NodeHeight     float64 `json:"node_height"`
	ViewportWidth  float64 `json:"viewport_width"`
	ViewportHeight float64 `json:"viewport_height"`
	TopMargin      float64 `json:"top_margin"`
	LinkInset      float64 `json:"link_inset"`
	Disjoint       bool    `json:"disjoint"`
	Legend         bool    `json:"legend"`
	Title          string  `json:"title,omitempty"`
	Root           string  `json:"root,omitempty"`
	Depth          int     `json:"depth,omitempty"`
}

// DefaultKeyer produces "artifact:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ArtifactKey hashes the snapshot hash together with the options.
func (DefaultKeyer) ArtifactKey(snapshotHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", snapshotHash, opts)
}
