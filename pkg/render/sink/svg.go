package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/matzehuels/lineage/pkg/family"
	"github.com/matzehuels/lineage/pkg/hierarchy"
	"github.com/matzehuels/lineage/pkg/layout"
)

// Box geometry of a member card.
const (
	BoxWidth   = 100.0
	BoxHeight  = 60.0
	BoxRadius  = 16.0
	SpouseGap  = 40.0 // each spouse card is centred this far from the couple centre
	RootRadius = 30.0
	legendH    = 56.0
)

// Palette.
const (
	ColorMale       = "#2196F3"
	ColorFemale     = "#E91E63"
	ColorOther      = "#9C27B0"
	ColorMarriage   = "#E91E63"
	ColorLink       = "#1976d2"
	ColorStroke     = "#333"
	ColorBackground = "#f8f9fa"
)

// SVGOption configures [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	lookup     family.Lookup
	legend     bool
	background string
	title      string
}

// WithLookup resolves member names, genders and ages for card labels.
// Without it cards show member IDs.
func WithLookup(l family.Lookup) SVGOption { return func(r *svgRenderer) { r.lookup = l } }

// WithLegend appends the colour legend below the viewport.
func WithLegend() SVGOption { return func(r *svgRenderer) { r.legend = true } }

// WithBackground sets the background fill; "" draws none.
func WithBackground(color string) SVGOption { return func(r *svgRenderer) { r.background = color } }

// WithTitle sets the document <title>.
func WithTitle(title string) SVGOption { return func(r *svgRenderer) { r.title = title } }

// RenderSVG draws l as a standalone SVG document. Links are drawn first so
// cards cover their ends.
func RenderSVG(l *layout.Layout, opts ...SVGOption) []byte {
	r := svgRenderer{background: ColorBackground}
	for _, opt := range opts {
		opt(&r)
	}

	w, h := l.ViewportWidth, l.ViewportHeight
	totalH := h
	if r.legend {
		totalH += legendH
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f" font-family="Arial, sans-serif">`+"\n",
		w, totalH, w, totalH)
	if r.title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", escape(r.title))
	}
	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect width="%.0f" height="%.0f" rx="12" fill="%s"/>`+"\n", w, totalH, r.background)
	}

	buf.WriteString(`  <g class="links">` + "\n")
	for _, link := range l.Links {
		fmt.Fprintf(&buf, `    <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="2" data-source="%s" data-target="%s"/>`+"\n",
			link.X1, link.Y1, link.X2, link.Y2, ColorLink, escape(link.Source), escape(link.Target))
	}
	buf.WriteString("  </g>\n")

	buf.WriteString(`  <g class="nodes">` + "\n")
	for _, n := range l.Nodes {
		switch n.Kind {
		case hierarchy.KindCouple:
			r.renderCouple(&buf, n)
		case hierarchy.KindPerson:
			r.renderPerson(&buf, n)
		default:
			renderRoot(&buf, n)
		}
	}
	buf.WriteString("  </g>\n")

	if r.legend {
		renderLegend(&buf, w, h)
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r *svgRenderer) renderCouple(buf *bytes.Buffer, n layout.Positioned) {
	if len(n.MemberIDs) < 2 {
		r.renderPerson(buf, n)
		return
	}
	cx1, cx2 := n.X-SpouseGap, n.X+SpouseGap
	fmt.Fprintf(buf, `    <g class="couple" id="%s">`+"\n", escape(n.ID))
	r.renderCard(buf, n.MemberIDs[0], cx1, n.Y)
	r.renderCard(buf, n.MemberIDs[1], cx2, n.Y)
	fmt.Fprintf(buf, `      <line class="marriage" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="4"/>`+"\n",
		cx1+BoxWidth/2, n.Y, cx2-BoxWidth/2, n.Y, ColorMarriage)
	buf.WriteString("    </g>\n")
}

func (r *svgRenderer) renderPerson(buf *bytes.Buffer, n layout.Positioned) {
	id := n.Key
	if len(n.MemberIDs) > 0 {
		id = n.MemberIDs[0]
	}
	fmt.Fprintf(buf, `    <g class="person" id="%s">`+"\n", escape(n.ID))
	r.renderCard(buf, id, n.X, n.Y)
	buf.WriteString("    </g>\n")
}

func (r *svgRenderer) renderCard(buf *bytes.Buffer, memberID string, cx, cy float64) {
	m := r.member(memberID)
	fmt.Fprintf(buf, `      <rect x="%.1f" y="%.1f" width="%.0f" height="%.0f" rx="%.0f" fill="%s" stroke="%s" stroke-width="2" data-member="%s"/>`+"\n",
		cx-BoxWidth/2, cy-BoxHeight/2, BoxWidth, BoxHeight, BoxRadius, GenderColor(m.Gender), ColorStroke, escape(memberID))
	fmt.Fprintf(buf, `      <text x="%.1f" y="%.1f" text-anchor="middle" font-size="14" font-weight="bold" fill="#fff">%s</text>`+"\n",
		cx, cy-5, escape(m.Name))
	fmt.Fprintf(buf, `      <text x="%.1f" y="%.1f" text-anchor="middle" font-size="12" fill="#fff">%s, %d</text>`+"\n",
		cx, cy+15, m.Gender.Code(), m.Age)
}

func renderRoot(buf *bytes.Buffer, n layout.Positioned) {
	fmt.Fprintf(buf, `    <g class="root" id="%s">`+"\n", escape(n.ID))
	fmt.Fprintf(buf, `      <circle cx="%.1f" cy="%.1f" r="%.0f" fill="%s" stroke="%s" stroke-width="2"/>`+"\n",
		n.X, n.Y, RootRadius, ColorOther, ColorStroke)
	fmt.Fprintf(buf, `      <text x="%.1f" y="%.1f" text-anchor="middle" font-size="16" font-weight="bold" fill="#fff">%s</text>`+"\n",
		n.X, n.Y+5, escape(n.Label))
	buf.WriteString("    </g>\n")
}

func renderLegend(buf *bytes.Buffer, w, top float64) {
	cx := w / 2
	y1, y2 := top+20, top+42
	buf.WriteString(`  <g class="legend" font-size="13" text-anchor="middle" fill="#666">` + "\n")
	fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f"><tspan font-weight="bold">Legend:</tspan> <tspan fill="%s">Pink</tspan>=Female, <tspan fill="%s">Blue</tspan>=Male, <tspan fill="%s">Purple</tspan>=Other</text>`+"\n",
		cx, y1, ColorFemale, ColorMale, ColorOther)
	fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f"><tspan fill="%s">Pink line</tspan>=Marriage, <tspan fill="%s">Blue line</tspan>=Parent-Child</text>`+"\n",
		cx, y2, ColorMarriage, ColorLink)
	buf.WriteString("  </g>\n")
}

func (r *svgRenderer) member(id string) family.Member {
	if r.lookup != nil {
		if m, ok := r.lookup.Member(id); ok {
			if m.Name == "" {
				m.Name = id
			}
			return m
		}
	}
	return family.Member{ID: id, Name: id}
}

// GenderColor returns the card fill for g.
func GenderColor(g family.Gender) string {
	switch g {
	case family.GenderMale:
		return ColorMale
	case family.GenderFemale:
		return ColorFemale
	default:
		return ColorOther
	}
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
