package layout

import (
	"math"
	"strconv"

	"github.com/matzehuels/lineage/pkg/hierarchy"
)

// Positioned is a hierarchy node with its final coordinates. (X, Y) is the
// centre of the node's footprint.
type Positioned struct {
	// ID is unique within a Layout: the hierarchy key, suffixed "#n" from
	// the second appearance of the same key on.
	ID        string
	Key       string
	Parent    string
	Kind      hierarchy.Kind
	Label     string
	MemberIDs []string
	X, Y      float64
	Width     float64
	Height    float64
	Depth     int
}

// Left returns the left edge of the footprint.
func (p Positioned) Left() float64 { return p.X - p.Width/2 }

// Right returns the right edge of the footprint.
func (p Positioned) Right() float64 { return p.X + p.Width/2 }

// Link connects the bottom of a parent to the top of a child.
type Link struct {
	Source string
	Target string
	X1, Y1 float64
	X2, Y2 float64
}

// Bounds is the axis-aligned box enclosing every footprint.
type Bounds struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Width returns the horizontal extent.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns the vertical extent.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// Layout is the output of [Compute]. Nodes are in depth-first order with
// children in hierarchy order; Links follow the same order.
type Layout struct {
	Nodes          []Positioned
	Links          []Link
	Bounds         Bounds
	ViewportWidth  float64
	ViewportHeight float64
}

// Node returns the positioned node with the given ID.
func (l *Layout) Node(id string) (Positioned, bool) {
	for _, n := range l.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Positioned{}, false
}

// Children returns the IDs of the direct children of id in order.
func (l *Layout) Children(id string) []string {
	var ids []string
	for _, link := range l.Links {
		if link.Source == id {
			ids = append(ids, link.Target)
		}
	}
	return ids
}

// subtree is the working state of one node during placement.
type subtree struct {
	node     *hierarchy.Node
	w, h     float64
	rel      float64 // x relative to the parent
	children []*subtree
	// left and right hold the contour of the subtree relative to the node's
	// own x, one entry per relative depth.
	left, right []float64
}

// Compute lays out the tree rooted at root. Zero fields of cfg take their
// defaults. A nil root yields an empty layout.
func Compute(root *hierarchy.Node, cfg Config) (*Layout, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	out := &Layout{ViewportWidth: cfg.ViewportWidth, ViewportHeight: cfg.ViewportHeight}
	if root == nil {
		return out, nil
	}

	t := place(root, cfg)
	emit(out, t, cfg)
	normalize(out, cfg)
	return out, nil
}

func place(n *hierarchy.Node, cfg Config) *subtree {
	w, h := cfg.size(n)
	t := &subtree{node: n, w: w, h: h}
	if len(n.Children) == 0 {
		t.left = []float64{-w / 2}
		t.right = []float64{w / 2}
		return t
	}

	offsets := make([]float64, len(n.Children))
	var accLeft, accRight []float64
	for i, c := range n.Children {
		ct := place(c, cfg)
		t.children = append(t.children, ct)
		if i > 0 {
			offsets[i] = separation(accRight, ct, cfg.Disjoint)
		}
		accLeft, accRight = merge(accLeft, accRight, ct, offsets[i])
	}

	center := (offsets[0] + offsets[len(offsets)-1]) / 2
	for i, ct := range t.children {
		ct.rel = offsets[i] - center
	}

	t.left = make([]float64, 1, len(accLeft)+1)
	t.right = make([]float64, 1, len(accRight)+1)
	t.left[0], t.right[0] = -w/2, w/2
	for d := range accLeft {
		t.left = append(t.left, accLeft[d]-center)
		t.right = append(t.right, accRight[d]-center)
	}
	return t
}

// separation returns the smallest offset at which ct clears the accumulated
// right contour.
func separation(accRight []float64, ct *subtree, disjoint bool) float64 {
	if disjoint {
		return maxOf(accRight) - minOf(ct.left)
	}
	shift := math.Inf(-1)
	for d := 0; d < len(accRight) && d < len(ct.left); d++ {
		shift = max(shift, accRight[d]-ct.left[d])
	}
	return shift
}

// merge folds a child contour placed at offset into the accumulated contour.
func merge(accLeft, accRight []float64, ct *subtree, offset float64) ([]float64, []float64) {
	for d := range ct.left {
		l, r := offset+ct.left[d], offset+ct.right[d]
		if d < len(accLeft) {
			accLeft[d] = min(accLeft[d], l)
			accRight[d] = max(accRight[d], r)
			continue
		}
		accLeft = append(accLeft, l)
		accRight = append(accRight, r)
	}
	return accLeft, accRight
}

func minOf(xs []float64) float64 {
	m := math.Inf(1)
	for _, x := range xs {
		m = min(m, x)
	}
	return m
}

func maxOf(xs []float64) float64 {
	m := math.Inf(-1)
	for _, x := range xs {
		m = max(m, x)
	}
	return m
}

// emit converts relative placements to absolute coordinates in depth-first
// order and assigns unique IDs.
func emit(out *Layout, root *subtree, cfg Config) {
	type item struct {
		t      *subtree
		x, y   float64
		depth  int
		parent string
	}
	seen := make(map[string]int)
	stack := []item{{t: root}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := it.t.node
		seen[n.Key]++
		id := n.Key
		if k := seen[n.Key]; k > 1 {
			id += "#" + strconv.Itoa(k)
		}
		out.Nodes = append(out.Nodes, Positioned{
			ID:        id,
			Key:       n.Key,
			Parent:    it.parent,
			Kind:      n.Kind,
			Label:     n.Label,
			MemberIDs: append([]string(nil), n.Members...),
			X:         it.x,
			Y:         it.y,
			Width:     it.t.w,
			Height:    it.t.h,
			Depth:     it.depth,
		})
		if it.parent != "" {
			out.Links = append(out.Links, Link{Source: it.parent, Target: id})
		}

		for i := len(it.t.children) - 1; i >= 0; i-- {
			c := it.t.children[i]
			stack = append(stack, item{
				t:      c,
				x:      it.x + c.rel,
				y:      it.y + it.t.h,
				depth:  it.depth + 1,
				parent: id,
			})
		}
	}
}

// normalize centres node centres horizontally in the viewport, moves the
// topmost node to the top margin and resolves link endpoints.
func normalize(out *Layout, cfg Config) {
	minX, maxX, minY := math.Inf(1), math.Inf(-1), math.Inf(1)
	for _, n := range out.Nodes {
		minX, maxX, minY = min(minX, n.X), max(maxX, n.X), min(minY, n.Y)
	}
	offsetX := cfg.ViewportWidth/2 - (maxX+minX)/2
	offsetY := cfg.TopMargin - minY

	index := make(map[string]int, len(out.Nodes))
	b := Bounds{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	for i := range out.Nodes {
		n := &out.Nodes[i]
		n.X += offsetX
		n.Y += offsetY
		index[n.ID] = i
		b.MinX = min(b.MinX, n.X-n.Width/2)
		b.MaxX = max(b.MaxX, n.X+n.Width/2)
		b.MinY = min(b.MinY, n.Y-n.Height/2)
		b.MaxY = max(b.MaxY, n.Y+n.Height/2)
	}
	out.Bounds = b

	for i := range out.Links {
		l := &out.Links[i]
		src, dst := out.Nodes[index[l.Source]], out.Nodes[index[l.Target]]
		l.X1, l.Y1 = src.X, src.Y+cfg.LinkInset
		l.X2, l.Y2 = dst.X, dst.Y-cfg.LinkInset
	}
}
