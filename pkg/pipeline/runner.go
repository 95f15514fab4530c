package pipeline

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lineage/pkg/cache"
	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/family"
	"github.com/matzehuels/lineage/pkg/family/classify"
	"github.com/matzehuels/lineage/pkg/graph"
	"github.com/matzehuels/lineage/pkg/hierarchy"
	"github.com/matzehuels/lineage/pkg/layout"
	"github.com/matzehuels/lineage/pkg/observability"
	"github.com/matzehuels/lineage/pkg/provider"
)

// Runner encapsulates pipeline execution with artifact caching.
//
// The Runner keeps no run state besides its dependencies; multiple
// goroutines can share one Runner with different options.
type Runner struct {
	Provider provider.Provider
	Cache    cache.Cache
	Keyer    cache.Keyer
	Logger   *log.Logger
	// TTL bounds how long rendered artifacts stay cached.
	TTL time.Duration
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// uses [cache.DefaultKeyer] and a nil logger uses log.Default(). The
// provider may be nil when only [Runner.Compute] is used.
func NewRunner(p provider.Provider, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Provider: p,
		Cache:    c,
		Keyer:    keyer,
		Logger:   logger,
		TTL:      cache.TTLArtifact,
	}
}

// Execute fetches a snapshot from the runner's provider, computes the
// layout and renders every requested format.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if r.Provider == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "no graph provider configured")
	}
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	fetchStart := time.Now()
	s, err := provider.Fetch(ctx, r.Provider)
	if err != nil {
		return nil, err
	}
	fetchTime := time.Since(fetchStart)
	opts.Logger.Info("fetched snapshot",
		"provider", r.Provider.Name(),
		"members", len(s.Persons),
		"edges", len(s.Edges),
		"duration", fetchTime)

	result, err := r.Compute(ctx, s, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.FetchTime = fetchTime

	if _, err := r.RenderInto(ctx, result, opts); err != nil {
		return nil, err
	}
	return result, nil
}

// Compute runs the core steps on s. Nothing is rendered.
func (r *Runner) Compute(ctx context.Context, s graph.Snapshot, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		opts.Logger.Warn("snapshot has invalid records", "error", errors.Detail(err))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	result := &Result{
		Snapshot:     s,
		SnapshotHash: s.Hash(),
		Artifacts:    make(map[string][]byte),
	}

	var g *family.Graph
	err := stage(ctx, observability.StageBuild, func() error {
		g = family.Build(s.Members(), s.FamilyEdges())
		if cycleErr := g.Validate(); cycleErr != nil {
			if opts.Strict {
				return errors.Wrap(errors.ErrCodeMalformedGraph, cycleErr, "validate graph")
			}
			opts.Logger.Warn("graph contains a parent-child cycle")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	result.Graph = g
	opts.Logger.Debug("built graph", "members", g.Len(), "edges", len(g.Edges()), "dropped", g.Dropped())

	var units classify.Units
	err = stage(ctx, observability.StageClassify, func() error {
		units = classify.Classify(g)
		return nil
	})
	if err != nil {
		return nil, err
	}
	result.Units = units
	opts.Logger.Debug("classified roots", "couples", len(units.Couples), "singles", len(units.Singles))

	var root *hierarchy.Node
	err = stage(ctx, observability.StageHierarchy, func() error {
		var err error
		root, err = hierarchy.Build(g, units)
		return err
	})
	if err != nil {
		return nil, err
	}
	result.Root = root
	result.Orphans = hierarchy.Orphans(g, root)
	if len(result.Orphans) > 0 {
		opts.Logger.Warn("members left out of the tree", "count", len(result.Orphans), "ids", result.Orphans)
	}

	var l *layout.Layout
	err = stage(ctx, observability.StageLayout, func() error {
		var err error
		l, err = layout.Compute(root, opts.LayoutConfig())
		return err
	})
	if err != nil {
		return nil, err
	}
	result.Layout = l

	result.Stats = Stats{
		Members:      g.Len(),
		Edges:        len(s.Edges),
		DroppedEdges: g.Dropped(),
		Couples:      len(units.Couples),
		Singles:      len(units.Singles),
		Nodes:        len(l.Nodes),
		ComputeTime:  time.Since(start),
	}
	opts.Logger.Info("computed layout",
		"members", result.Stats.Members,
		"nodes", result.Stats.Nodes,
		"duration", result.Stats.ComputeTime)
	return result, nil
}

// stage times fn and reports it through the pipeline hooks.
func stage(ctx context.Context, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	observability.Pipeline().OnStageComplete(ctx, name, time.Since(start), err)
	return err
}

// RenderWithCacheInfo renders every requested format for result and
// reports whether all of them came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, result *Result, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	allCached := true
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(result.SnapshotHash, opts.ArtifactKeyOpts(format))
		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, format)
				artifacts[format] = data
				continue
			} else if err != nil {
				opts.Logger.Warn("cache read failed", "format", format, "error", err)
			}
			observability.Cache().OnCacheMiss(ctx, format)
		}
		allCached = false

		data, err := renderFormat(ctx, result, opts, format)
		if err != nil {
			return nil, false, err
		}
		artifacts[format] = data

		if err := r.Cache.Set(ctx, key, data, r.ttl()); err != nil {
			opts.Logger.Warn("cache write failed", "format", format, "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, format, len(data))
		}
	}
	return artifacts, allCached, nil
}

// Render is [Runner.RenderWithCacheInfo] without the cache hit info.
func (r *Runner) Render(ctx context.Context, result *Result, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, result, opts)
	return artifacts, err
}

// RenderInto renders into result.Artifacts and fills the render stats.
func (r *Runner) RenderInto(ctx context.Context, result *Result, opts Options) (map[string][]byte, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	start := time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, result, opts)
	if err != nil {
		return nil, err
	}
	if result.Artifacts == nil {
		result.Artifacts = make(map[string][]byte, len(artifacts))
	}
	for format, data := range artifacts {
		result.Artifacts[format] = data
	}
	result.Stats.RenderTime = time.Since(start)
	result.CacheInfo.RenderHit = hit

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", hit,
		"duration", result.Stats.RenderTime)
	return artifacts, nil
}

// Close releases resources held by the runner: the cache, and the provider
// when it holds a connection.
func (r *Runner) Close(ctx context.Context) error {
	var errs []error
	if c, ok := r.Provider.(interface{ Close(context.Context) error }); ok {
		errs = append(errs, c.Close(ctx))
	}
	if r.Cache != nil {
		errs = append(errs, r.Cache.Close())
	}
	return stderrors.Join(errs...)
}

func (r *Runner) ttl() time.Duration {
	if r.TTL <= 0 {
		return cache.TTLArtifact
	}
	return r.TTL
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
