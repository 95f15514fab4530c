package graph

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/hierarchy"
	"github.com/matzehuels/lineage/pkg/layout"
)

// =============================================================================
// Layout - Positioned Tree Format
// =============================================================================

// Layout is the serialization format of a computed layout.
type Layout struct {
	Width  float64 `json:"width" yaml:"width" bson:"width"`
	Height float64 `json:"height" yaml:"height" bson:"height"`
	Bounds Bounds  `json:"bounds" yaml:"bounds" bson:"bounds"`
	Nodes  []Node  `json:"nodes" yaml:"nodes" bson:"nodes"`
	Links  []Link  `json:"links" yaml:"links" bson:"links"`
}

// Bounds encloses every node footprint.
type Bounds struct {
	MinX float64 `json:"min_x" yaml:"min_x" bson:"min_x"`
	MinY float64 `json:"min_y" yaml:"min_y" bson:"min_y"`
	MaxX float64 `json:"max_x" yaml:"max_x" bson:"max_x"`
	MaxY float64 `json:"max_y" yaml:"max_y" bson:"max_y"`
}

// Node is a positioned couple, person or virtual root.
type Node struct {
	ID      string   `json:"id" yaml:"id" bson:"id"`
	Key     string   `json:"key" yaml:"key" bson:"key"`
	Parent  string   `json:"parent,omitempty" yaml:"parent,omitempty" bson:"parent,omitempty"`
	Kind    string   `json:"kind" yaml:"kind" bson:"kind"`
	Label   string   `json:"label" yaml:"label" bson:"label"`
	Members []string `json:"members,omitempty" yaml:"members,omitempty" bson:"members,omitempty"`
	X       float64  `json:"x" yaml:"x" bson:"x"`
	Y       float64  `json:"y" yaml:"y" bson:"y"`
	Width   float64  `json:"width" yaml:"width" bson:"width"`
	Height  float64  `json:"height" yaml:"height" bson:"height"`
	Depth   int      `json:"depth" yaml:"depth" bson:"depth"`
}

// Link is a parent-to-child connector with resolved endpoints.
type Link struct {
	Source string  `json:"source" yaml:"source" bson:"source"`
	Target string  `json:"target" yaml:"target" bson:"target"`
	X1     float64 `json:"x1" yaml:"x1" bson:"x1"`
	Y1     float64 `json:"y1" yaml:"y1" bson:"y1"`
	X2     float64 `json:"x2" yaml:"x2" bson:"x2"`
	Y2     float64 `json:"y2" yaml:"y2" bson:"y2"`
}

// =============================================================================
// layout.Layout ↔ Layout Conversion
// =============================================================================

// FromLayout converts a computed layout to its serialization format.
func FromLayout(l *layout.Layout) Layout {
	out := Layout{
		Width:  l.ViewportWidth,
		Height: l.ViewportHeight,
		Bounds: Bounds(l.Bounds),
		Nodes:  make([]Node, len(l.Nodes)),
		Links:  make([]Link, len(l.Links)),
	}
	for i, n := range l.Nodes {
		out.Nodes[i] = Node{
			ID:      n.ID,
			Key:     n.Key,
			Parent:  n.Parent,
			Kind:    kindName(n.Kind),
			Label:   n.Label,
			Members: n.MemberIDs,
			X:       n.X,
			Y:       n.Y,
			Width:   n.Width,
			Height:  n.Height,
			Depth:   n.Depth,
		}
	}
	for i, link := range l.Links {
		out.Links[i] = Link(link)
	}
	return out
}

// ToLayout converts a serialized layout back into the form renderers take.
func ToLayout(l Layout) (*layout.Layout, error) {
	out := &layout.Layout{
		ViewportWidth:  l.Width,
		ViewportHeight: l.Height,
		Bounds:         layout.Bounds(l.Bounds),
		Nodes:          make([]layout.Positioned, len(l.Nodes)),
		Links:          make([]layout.Link, len(l.Links)),
	}
	for i, n := range l.Nodes {
		kind, ok := parseKind(n.Kind)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "node %q has unknown kind %q", n.ID, n.Kind)
		}
		out.Nodes[i] = layout.Positioned{
			ID:        n.ID,
			Key:       n.Key,
			Parent:    n.Parent,
			Kind:      kind,
			Label:     n.Label,
			MemberIDs: n.Members,
			X:         n.X,
			Y:         n.Y,
			Width:     n.Width,
			Height:    n.Height,
			Depth:     n.Depth,
		}
	}
	for i, link := range l.Links {
		out.Links[i] = layout.Link(link)
	}
	return out, nil
}

func kindName(k hierarchy.Kind) string {
	switch k {
	case hierarchy.KindCouple:
		return KindCouple
	case hierarchy.KindPerson:
		return KindPerson
	default:
		return KindRoot
	}
}

func parseKind(s string) (hierarchy.Kind, bool) {
	switch s {
	case KindCouple:
		return hierarchy.KindCouple, true
	case KindPerson:
		return hierarchy.KindPerson, true
	case KindRoot:
		return hierarchy.KindVirtualRoot, true
	default:
		return 0, false
	}
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "unmarshal layout")
	}
	if l.Width <= 0 || l.Height <= 0 {
		return Layout{}, errors.New(errors.ErrCodeInvalidFormat, "layout must have a positive viewport")
	}
	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
