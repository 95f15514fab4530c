// Package sink turns a computed [layout.Layout] into an SVG family tree.
//
// Couples are drawn as two rounded member cards joined by a marriage bar,
// single members as one card, and the synthetic root as a labelled circle.
// Cards are filled by gender (blue male, pink female, purple other) and
// show the member's name with "gender, age" underneath. Parent-child links
// run from the bottom of a unit to the top of each child unit.
//
//	l, _ := layout.Compute(root, layout.DefaultConfig())
//	svg := sink.RenderSVG(l,
//	    sink.WithLookup(g),
//	    sink.WithLegend(),
//	)
//
// Output is deterministic: the same layout and options always yield the
// same bytes, which is what lets rendered artifacts be cached by content.
package sink
