// Package layout positions a family hierarchy in two dimensions.
//
// [Compute] runs a variable-node-size tidy-tree pass over a
// [hierarchy.Node] tree and returns a [Layout] of positioned nodes and
// parent-to-child links ready for a renderer.
//
// # Algorithm
//
// Every node reserves a rectangular footprint given by the configured
// [SizeFunc]; the default is a uniform NodeWidth × NodeHeight box whatever
// the node's kind. Subtrees are laid out bottom-up. Each subtree keeps a left
// and right contour, one entry per relative depth. Siblings are placed left
// to right, each shifted just far enough that its left contour clears the
// combined right contour of the siblings before it. A parent is centred
// between its first and last child, and a child sits one parent height
// below its parent.
//
// With [Config.Disjoint] set, siblings are packed by their whole bounding
// span instead, so no two sibling subtrees share any horizontal range.
//
// # Normalisation
//
// After placement the tree is translated so that its node centres are
// centred in a viewport of ViewportWidth and its topmost node sits TopMargin
// below the top edge. Link endpoints sit LinkInset above and below the
// node centres.
//
// # Determinism
//
// Compute is a pure function of the tree and the configuration. Running it
// twice on identical input yields bit-identical coordinates.
package layout
