// Package text renders family trees and member listings for the terminal.
//
// [Tree] draws the hierarchy with box-drawing branches via
// [github.com/charmbracelet/lipgloss/tree]; [Members] lists every member
// of a graph as a table via [github.com/charmbracelet/lipgloss/table].
// Styling is opt-in so output piped to files stays plain.
package text

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/matzehuels/lineage/pkg/family"
	"github.com/matzehuels/lineage/pkg/hierarchy"
)

var (
	colorPurple = lipgloss.Color("141")
	colorBlue   = lipgloss.Color("75")
	colorPink   = lipgloss.Color("205")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")

	styleRoot   = lipgloss.NewStyle().Bold(true).Foreground(colorPurple)
	styleItem   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	styleBranch = lipgloss.NewStyle().Foreground(colorDim)
	styleHeader = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// Option configures [Tree] and [Members].
type Option func(*options)

type options struct {
	lookup family.Lookup
	styled bool
}

// WithLookup adds "(gender, age)" to member labels.
func WithLookup(l family.Lookup) Option { return func(o *options) { o.lookup = l } }

// Styled colours the output for a terminal.
func Styled() Option { return func(o *options) { o.styled = true } }

func apply(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Tree draws the hierarchy rooted at root. A nil root yields "".
func Tree(root *hierarchy.Node, opts ...Option) string {
	if root == nil {
		return ""
	}
	o := apply(opts)
	t := o.subtree(root).Enumerator(tree.RoundedEnumerator)
	if o.styled {
		t = t.RootStyle(styleRoot).ItemStyle(styleItem).EnumeratorStyle(styleBranch)
	}
	return t.String()
}

func (o options) subtree(n *hierarchy.Node) *tree.Tree {
	t := tree.Root(o.label(n))
	for _, c := range n.Children {
		if len(c.Children) == 0 {
			t.Child(o.label(c))
			continue
		}
		t.Child(o.subtree(c))
	}
	return t
}

func (o options) label(n *hierarchy.Node) string {
	if n.Kind == hierarchy.KindVirtualRoot {
		return n.Label
	}
	parts := make([]string, 0, len(n.Members))
	for _, id := range n.Members {
		parts = append(parts, o.member(id))
	}
	return strings.Join(parts, " + ")
}

func (o options) member(id string) string {
	if o.lookup == nil {
		return id
	}
	m, ok := o.lookup.Member(id)
	if !ok {
		return id
	}
	name := m.Name
	if name == "" {
		name = id
	}
	g := m.Gender.Code()
	if o.styled {
		g = genderStyle(m.Gender).Render(g)
	}
	return fmt.Sprintf("%s (%s, %d)", name, g, m.Age)
}

func genderStyle(g family.Gender) lipgloss.Style {
	switch g {
	case family.GenderMale:
		return lipgloss.NewStyle().Foreground(colorBlue)
	case family.GenderFemale:
		return lipgloss.NewStyle().Foreground(colorPink)
	default:
		return lipgloss.NewStyle().Foreground(colorPurple)
	}
}

// Members lists every member of g in graph order with their spouse and
// child IDs.
func Members(g *family.Graph, opts ...Option) string {
	o := apply(opts)
	rows := make([][]string, 0, g.Len())
	for _, p := range g.People() {
		rows = append(rows, []string{
			p.ID,
			p.Name,
			p.Gender.Code(),
			strconv.Itoa(p.Age),
			strings.Join(p.Spouses(), ", "),
			strings.Join(p.Children(), ", "),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("ID", "Name", "Gender", "Age", "Spouses", "Children").
		Rows(rows...)
	if o.styled {
		t = t.BorderStyle(styleBranch).StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			return lipgloss.NewStyle()
		})
	}
	return t.Render()
}
