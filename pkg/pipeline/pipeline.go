// Package pipeline runs the fetch → build → classify → hierarchy → layout →
// render sequence shared by the CLI and the HTTP API.
//
// # Architecture
//
// A run has two halves:
//
//  1. Compute: fetch a snapshot from a [provider.Provider], normalise it
//     into a [family.Graph], find the root units, build the hierarchy and
//     position it. Every derived structure is recomputed on every run.
//  2. Render: turn the result into artifacts (SVG, layout JSON, DOT,
//     Graphviz SVG, text). Artifacts are memoised in a [cache.Cache] keyed
//     by the snapshot hash plus every option that changes their bytes.
//
// # Usage
//
//	runner := pipeline.NewRunner(provider.NewFile("family.json"), c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Formats: []string{pipeline.FormatSVG},
//	    Legend:  true,
//	})
//	svg := result.Artifacts["svg"]
//
// [Runner.Compute] and [Runner.Render] run the halves separately, which is
// what the server does for snapshots posted in a request body.
package pipeline

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lineage/pkg/cache"
	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/family"
	"github.com/matzehuels/lineage/pkg/family/classify"
	"github.com/matzehuels/lineage/pkg/graph"
	"github.com/matzehuels/lineage/pkg/hierarchy"
	"github.com/matzehuels/lineage/pkg/layout"
)

// Format constants for output formats.
const (
	FormatSVG         = "svg"
	FormatJSON        = "json"
	FormatDOT         = "dot"
	FormatNodelinkSVG = "nodelink-svg"
	FormatText        = "text"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:         true,
	FormatJSON:        true,
	FormatDOT:         true,
	FormatNodelinkSVG: true,
	FormatText:        true,
}

// Extensions maps output formats to file extensions.
var Extensions = map[string]string{
	FormatSVG:         ".svg",
	FormatJSON:        ".json",
	FormatDOT:         ".dot",
	FormatNodelinkSVG: ".graph.svg",
	FormatText:        ".txt",
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run. Zero layout fields
// take the [layout] defaults. The JSON form is accepted by the HTTP API.
type Options struct {
	// Layout options
	NodeWidth      float64 `json:"node_width,omitempty"`
	NodeHeight     float64 `json:"node_height,omitempty"`
	ViewportWidth  float64 `json:"viewport_width,omitempty"`
	ViewportHeight float64 `json:"viewport_height,omitempty"`
	TopMargin      float64 `json:"top_margin,omitempty"`
	LinkInset      float64 `json:"link_inset,omitempty"`
	Disjoint       bool    `json:"disjoint,omitempty"`

	// Strict fails the run when parent-child edges form a cycle anywhere in
	// the graph, not only on the part the hierarchy walks.
	Strict bool `json:"strict,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Legend  bool     `json:"legend,omitempty"`
	Title   string   `json:"title,omitempty"`
	// DOTRoot and DOTDepth restrict the node-link export.
	DOTRoot  string `json:"dot_root,omitempty"`
	DOTDepth int    `json:"dot_depth,omitempty"`
	// Refresh bypasses cached artifacts.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Snapshot is the provider data the run was computed from.
	Snapshot graph.Snapshot
	// SnapshotHash is the content hash used in cache keys.
	SnapshotHash string

	Graph   *family.Graph
	Units   classify.Units
	Root    *hierarchy.Node
	Layout  *layout.Layout
	Orphans []string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Members      int
	Edges        int
	DroppedEdges int
	Couples      int
	Singles      int
	Nodes        int
	FetchTime    time.Duration
	ComputeTime  time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks whether rendering was served from the cache.
type CacheInfo struct {
	RenderHit bool // every requested artifact came from the cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidInput,
			"invalid format: %q (must be one of: svg, json, dot, nodelink-svg, text)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma-separated format list, dropping blanks.
func ParseFormats(s string) []string {
	var formats []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			formats = append(formats, f)
		}
	}
	return formats
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults applies defaults and checks every option.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	cfg := o.LayoutConfig()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}
	o.NodeWidth, o.NodeHeight = cfg.NodeWidth, cfg.NodeHeight
	o.ViewportWidth, o.ViewportHeight = cfg.ViewportWidth, cfg.ViewportHeight
	o.TopMargin, o.LinkInset = cfg.TopMargin, cfg.LinkInset

	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.DOTDepth < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "dot depth must not be negative, got %d", o.DOTDepth)
	}
	if o.DOTRoot != "" {
		if err := errors.ValidateMemberID(o.DOTRoot); err != nil {
			return err
		}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// LayoutConfig returns the layout engine configuration.
func (o *Options) LayoutConfig() layout.Config {
	return layout.Config{
		NodeWidth:      o.NodeWidth,
		NodeHeight:     o.NodeHeight,
		ViewportWidth:  o.ViewportWidth,
		ViewportHeight: o.ViewportHeight,
		TopMargin:      o.TopMargin,
		LinkInset:      o.LinkInset,
		Disjoint:       o.Disjoint,
	}
}

// ApplyLayoutConfig copies cfg into the layout options.
func (o *Options) ApplyLayoutConfig(cfg layout.Config) {
	o.NodeWidth, o.NodeHeight = cfg.NodeWidth, cfg.NodeHeight
	o.ViewportWidth, o.ViewportHeight = cfg.ViewportWidth, cfg.ViewportHeight
	o.TopMargin, o.LinkInset = cfg.TopMargin, cfg.LinkInset
	o.Disjoint = cfg.Disjoint
	o.validated = false
}

// ArtifactKeyOpts returns cache key options for one artifact.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		Format:         format,
		NodeWidth:      o.NodeWidth,
		NodeHeight:     o.NodeHeight,
		ViewportWidth:  o.ViewportWidth,
		ViewportHeight: o.ViewportHeight,
		TopMargin:      o.TopMargin,
		LinkInset:      o.LinkInset,
		Disjoint:       o.Disjoint,
	}
	switch format {
	case FormatSVG:
		k.Legend = o.Legend
		k.Title = o.Title
	case FormatDOT, FormatNodelinkSVG:
		k.Root = o.DOTRoot
		k.Depth = o.DOTDepth
	}
	return k
}
