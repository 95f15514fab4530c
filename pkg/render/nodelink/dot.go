package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/family"
	"github.com/matzehuels/lineage/pkg/graph"
)

// EmptyDOT is the document produced for a snapshot without members.
const EmptyDOT = `digraph FamilyTree { node [shape=box]; "empty" [label="No family members"]; }`

// Options configures DOT generation.
type Options struct {
	// Root starts the traversal at one member instead of at every member
	// without a recorded parent.
	Root string
	// Depth limits how many edge hops are followed from each start member.
	// Zero follows edges without limit.
	Depth int
}

// ToDOT converts a snapshot to Graphviz DOT source. Every member reachable
// from a start member is declared once, followed by its outgoing edges
// coloured by relationship. Without [Options.Root] traversal starts from
// members that are nobody's child and then picks up whatever is left.
func ToDOT(s graph.Snapshot, opts Options) string {
	if len(s.Persons) == 0 {
		return EmptyDOT
	}

	w := newWalker(s, opts.Depth)
	if opts.Root != "" {
		w.visit(opts.Root, 0)
	} else {
		for _, p := range s.Persons {
			if !w.hasParent[p.MID] {
				w.visit(p.MID, 0)
			}
		}
		for _, p := range s.Persons {
			w.visit(p.MID, 0)
		}
	}

	var buf bytes.Buffer
	buf.WriteString("digraph FamilyTree {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString(`  node [shape=ellipse, style=filled, fillcolor=lightblue, fontname="Arial", fontsize=10];` + "\n")
	buf.WriteString(`  edge [fontname="Arial", fontsize=8, color=gray];` + "\n")
	buf.WriteString("  graph [bgcolor=white, ranksep=0.8, nodesep=0.5];\n")
	for _, line := range w.lines {
		buf.WriteString("  ")
		buf.WriteString(line)
		buf.WriteString("\n")
	}
	buf.WriteString("}")
	return buf.String()
}

type target struct {
	to  string
	rel graph.Relationship
}

type walker struct {
	persons   map[string]graph.Person
	out       map[string][]target
	hasParent map[string]bool
	visited   map[string]bool
	depth     int
	lines     []string
}

func newWalker(s graph.Snapshot, depth int) *walker {
	w := &walker{
		persons:   make(map[string]graph.Person, len(s.Persons)),
		out:       make(map[string][]target),
		hasParent: make(map[string]bool),
		visited:   make(map[string]bool),
		depth:     depth,
	}
	for _, p := range s.Persons {
		w.persons[p.MID] = p
	}
	// One relationship per ordered pair; a later edge replaces the code of
	// an earlier one but keeps its position.
	for _, e := range s.Edges {
		targets := w.out[e.From]
		replaced := false
		for i := range targets {
			if targets[i].to == e.To {
				targets[i].rel = e.Relationship
				replaced = true
				break
			}
		}
		if !replaced {
			w.out[e.From] = append(targets, target{to: e.To, rel: e.Relationship})
		}
	}
	for _, targets := range w.out {
		for _, t := range targets {
			if t.rel.Kind() == family.KindParentChild {
				w.hasParent[t.to] = true
			}
		}
	}
	return w
}

func (w *walker) visit(mid string, depth int) {
	if w.visited[mid] {
		return
	}
	w.visited[mid] = true
	p, ok := w.persons[mid]
	if !ok {
		return
	}
	w.lines = append(w.lines, fmt.Sprintf(`%s [label="%s\n(%s, %d)"]`, quote(mid), escape(p.Name), escape(p.Gender), p.Age))

	for _, t := range w.out[mid] {
		if _, ok := w.persons[t.to]; !ok {
			continue
		}
		w.lines = append(w.lines, fmt.Sprintf(`%s -> %s [label="%s", color="%s"]`,
			quote(mid), quote(t.to), RelationshipLabel(t.rel), EdgeColor(t.rel)))
		if w.depth == 0 || depth < w.depth {
			w.visit(t.to, depth+1)
		}
	}
}

// RelationshipLabel returns the edge label for r, falling back to the
// numeric code for unknown relationships.
func RelationshipLabel(r graph.Relationship) string {
	if k := r.Kind(); k.String() != "Unknown" {
		return k.String()
	}
	return strconv.Itoa(int(r))
}

// EdgeColor returns the stroke colour for r.
func EdgeColor(r graph.Relationship) string {
	switch r.Kind() {
	case family.KindParentChild:
		return "blue"
	case family.KindChildParent:
		return "red"
	case family.KindSibling:
		return "green"
	case family.KindMarriage:
		return "purple"
	default:
		return "orange"
	}
}

func quote(s string) string { return `"` + escape(s) + `"` }

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

func escape(s string) string { return dotEscaper.Replace(s) }

// RenderSVG renders DOT source to SVG using the embedded Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render DOT")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based <svg> header with a
// plain one sized to the viewBox.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
