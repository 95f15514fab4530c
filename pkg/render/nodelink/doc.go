// Package nodelink renders a family snapshot as a classic node-link diagram.
//
// [ToDOT] walks the relationship edges depth-first and writes Graphviz DOT
// source: one ellipse per member labelled "name\n(gender, age)" and one
// labelled arrow per relationship, coloured by kind (Parent blue,
// Son-Daughter red, Sibling green, Married purple, anything else orange).
// Unlike the tidy tree this view keeps every edge, including sibling and
// divorce records.
//
//	dot := nodelink.ToDOT(snapshot, nodelink.Options{Root: "1", Depth: 2})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [RenderSVG] uses [github.com/goccy/go-graphviz], which runs Graphviz
// in-process, so no external dot binary is needed.
package nodelink
