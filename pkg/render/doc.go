// Package render groups the output formats for a family tree.
//
//   - [sink] draws a computed layout as SVG member cards, marriage bars and
//     parent-child links.
//   - [nodelink] exports the raw relationship graph as Graphviz DOT and
//     renders it through an embedded Graphviz.
//   - [text] prints the hierarchy as a terminal tree.
//
// Every renderer is deterministic: the same input and options produce the
// same bytes, so rendered artifacts can be cached by content.
//
// [sink]: github.com/matzehuels/lineage/pkg/render/sink
// [nodelink]: github.com/matzehuels/lineage/pkg/render/nodelink
// [text]: github.com/matzehuels/lineage/pkg/render/text
package render
