// Package hierarchy assembles the rooted tree of couple and person nodes that
// the layout engine positions.
//
// The tree is built from a [family.Graph] and the root units found by
// [classify.Classify]. Couple nodes expand into the children both spouses
// share; person nodes are always leaves. When the graph holds more than one
// independent family unit a virtual root is synthesised to hold them.
//
// # Child Attribution
//
// A child appears under a couple only when both spouses list it. A child with
// at least one spouse is drawn paired with its first recorded spouse; other
// marriages of that child are not shown. A member with a single recorded
// parent, or a married member nobody reaches, is left out of the tree.
// [Orphans] lists those members.
//
// # Cycles
//
// The builder walks an explicit work stack and tracks the ancestor chain of
// every node. A child that turns up among its own ancestors aborts the build
// with an error coded [errors.ErrCodeMalformedGraph]. Marriages alone never
// fail the build: a member married to their own parent is drawn as a couple
// under that parent.
package hierarchy

import (
	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/family"
	"github.com/matzehuels/lineage/pkg/family/classify"
)

// RootKey is the key of the synthesised virtual root.
const RootKey = "__root__"

// RootLabel is the label drawn on the virtual root.
const RootLabel = "Family Tree"

// Kind tags a Node.
type Kind int

const (
	KindVirtualRoot Kind = iota
	KindCouple
	KindPerson
)

func (k Kind) String() string {
	switch k {
	case KindVirtualRoot:
		return "root"
	case KindCouple:
		return "couple"
	case KindPerson:
		return "person"
	default:
		return "unknown"
	}
}

// Node is one vertex of the drawable tree.
type Node struct {
	Kind Kind
	// Key is the member ID for a person, "a+b" for a couple and RootKey for
	// the virtual root. A member can appear more than once in a tree, so
	// keys are not unique.
	Key      string
	Label    string
	Members  []string
	Children []*Node
}

// Walk visits n and its descendants depth-first in child order. Returning
// false from fn skips the children of the visited node.
func (n *Node) Walk(fn func(node *Node, depth int) bool) {
	type item struct {
		node  *Node
		depth int
	}
	stack := []item{{n, 0}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(it.node, it.depth) {
			continue
		}
		for i := len(it.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, item{it.node.Children[i], it.depth + 1})
		}
	}
}

// Len returns the number of nodes in the tree rooted at n.
func (n *Node) Len() int {
	count := 0
	n.Walk(func(*Node, int) bool { count++; return true })
	return count
}

// Depth returns the number of levels below n.
func (n *Node) Depth() int {
	deepest := 0
	n.Walk(func(_ *Node, d int) bool {
		deepest = max(deepest, d)
		return true
	})
	return deepest
}

// ancestors is an immutable linked list of the member IDs above a node.
type ancestors struct {
	id   string
	next *ancestors
}

func (a *ancestors) contains(id string) bool {
	for ; a != nil; a = a.next {
		if a.id == id {
			return true
		}
	}
	return false
}

func (a *ancestors) push(ids ...string) *ancestors {
	for _, id := range ids {
		a = &ancestors{id: id, next: a}
	}
	return a
}

// Build returns the drawable root for g.
//
// One root couple and no singles yields that couple's node, no couples and
// one single yields that single's node. Every other case, including an empty
// graph, yields a virtual root holding the couples in order followed by the
// singles.
func Build(g *family.Graph, units classify.Units) (*Node, error) {
	b := &builder{g: g}

	var tops []*Node
	for _, c := range units.Couples {
		tops = append(tops, b.couple(c.A, c.B, nil))
	}
	for _, id := range units.Singles {
		tops = append(tops, b.person(id))
	}

	if err := b.expand(); err != nil {
		return nil, err
	}

	switch {
	case len(units.Couples) == 1 && len(units.Singles) == 0:
		return tops[0], nil
	case len(units.Couples) == 0 && len(units.Singles) == 1:
		return tops[0], nil
	}
	return &Node{Kind: KindVirtualRoot, Key: RootKey, Label: RootLabel, Children: tops}, nil
}

type frame struct {
	node  *Node
	chain *ancestors
}

type builder struct {
	g     *family.Graph
	stack []frame
}

// couple creates a couple node and schedules its expansion. chain holds the
// members above the couple. The spouse may already be in the chain, as when a
// child marries a parent; only the shared children are descended into.
func (b *builder) couple(a, s string, chain *ancestors) *Node {
	n := &Node{
		Kind:    KindCouple,
		Key:     a + "+" + s,
		Label:   b.name(a) + " + " + b.name(s),
		Members: []string{a, s},
	}
	b.stack = append(b.stack, frame{node: n, chain: chain.push(a, s)})
	return n
}

func (b *builder) person(id string) *Node {
	return &Node{Kind: KindPerson, Key: id, Label: b.name(id), Members: []string{id}}
}

// expand drains the work stack, attaching the shared children of every
// pending couple.
func (b *builder) expand() error {
	for len(b.stack) > 0 {
		f := b.stack[len(b.stack)-1]
		b.stack = b.stack[:len(b.stack)-1]

		pa, _ := b.g.Person(f.node.Members[0])
		pb, _ := b.g.Person(f.node.Members[1])
		for _, child := range b.g.People() {
			if !pa.HasChild(child.ID) || !pb.HasChild(child.ID) {
				continue
			}
			if f.chain.contains(child.ID) {
				return errors.New(errors.ErrCodeMalformedGraph,
					"member %q appears among their own descendants", child.ID)
			}
			spouse, married := child.FirstSpouse()
			if !married {
				f.node.Children = append(f.node.Children, b.person(child.ID))
				continue
			}
			f.node.Children = append(f.node.Children, b.couple(child.ID, spouse, f.chain))
		}
	}
	return nil
}

func (b *builder) name(id string) string {
	if m, ok := b.g.Member(id); ok && m.Name != "" {
		return m.Name
	}
	return id
}

// Orphans returns, in graph order, the members of g that appear nowhere in
// the tree rooted at root.
func Orphans(g *family.Graph, root *Node) []string {
	placed := make(map[string]bool, g.Len())
	if root != nil {
		root.Walk(func(n *Node, _ int) bool {
			for _, id := range n.Members {
				placed[id] = true
			}
			return true
		})
	}
	var orphans []string
	for _, id := range g.IDs() {
		if !placed[id] {
			orphans = append(orphans, id)
		}
	}
	return orphans
}
