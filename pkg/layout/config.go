package layout

import (
	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/hierarchy"
)

// Default configuration values.
const (
	DefaultNodeWidth      = 120.0
	DefaultNodeHeight     = 120.0
	DefaultViewportWidth  = 1500.0
	DefaultViewportHeight = 800.0
	DefaultTopMargin      = 60.0
	DefaultLinkInset      = 40.0
)

// SizeFunc returns the footprint reserved for a node.
type SizeFunc func(n *hierarchy.Node) (width, height float64)

// Config controls node footprints and viewport normalisation.
//
// A zero dimension means "use the default" (see [Config.SetDefaults]), so a
// margin or inset of exactly 0 cannot be expressed; pass a small positive
// value instead.
type Config struct {
	NodeWidth      float64
	NodeHeight     float64
	ViewportWidth  float64
	ViewportHeight float64
	TopMargin      float64 // 0 selects DefaultTopMargin
	LinkInset      float64 // 0 selects DefaultLinkInset

	// Disjoint packs sibling subtrees by their full horizontal span rather
	// than level by level.
	Disjoint bool

	// Size overrides the uniform NodeWidth × NodeHeight footprint.
	Size SizeFunc
}

// DefaultConfig returns the uniform 120×120 footprint in a 1500×800 viewport.
func DefaultConfig() Config {
	return Config{
		NodeWidth:      DefaultNodeWidth,
		NodeHeight:     DefaultNodeHeight,
		ViewportWidth:  DefaultViewportWidth,
		ViewportHeight: DefaultViewportHeight,
		TopMargin:      DefaultTopMargin,
		LinkInset:      DefaultLinkInset,
	}
}

// SetDefaults replaces zero fields with their defaults. Compute calls it, so
// an explicit 0 for TopMargin or LinkInset becomes 60 or 40.
func (c *Config) SetDefaults() {
	if c.NodeWidth == 0 {
		c.NodeWidth = DefaultNodeWidth
	}
	if c.NodeHeight == 0 {
		c.NodeHeight = DefaultNodeHeight
	}
	if c.ViewportWidth == 0 {
		c.ViewportWidth = DefaultViewportWidth
	}
	if c.ViewportHeight == 0 {
		c.ViewportHeight = DefaultViewportHeight
	}
	if c.TopMargin == 0 {
		c.TopMargin = DefaultTopMargin
	}
	if c.LinkInset == 0 {
		c.LinkInset = DefaultLinkInset
	}
}

// Validate rejects negative or degenerate dimensions.
func (c Config) Validate() error {
	switch {
	case c.NodeWidth <= 0 || c.NodeHeight <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "node size must be positive, got %gx%g", c.NodeWidth, c.NodeHeight)
	case c.ViewportWidth <= 0 || c.ViewportHeight <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "viewport must be positive, got %gx%g", c.ViewportWidth, c.ViewportHeight)
	case c.TopMargin < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "top margin must not be negative, got %g", c.TopMargin)
	case c.LinkInset < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "link inset must not be negative, got %g", c.LinkInset)
	}
	return nil
}

func (c Config) size(n *hierarchy.Node) (float64, float64) {
	if c.Size != nil {
		return c.Size(n)
	}
	return c.NodeWidth, c.NodeHeight
}
