package family

import (
	"errors"
	"strings"
)

// ErrGraphHasCycle is returned by [Graph.Validate] when a member is recorded
// as their own descendant through parent-child edges.
var ErrGraphHasCycle = errors.New("parent-child edges contain a cycle")

// Gender is the enumerated gender of a member.
type Gender int

const (
	GenderOther Gender = iota
	GenderMale
	GenderFemale
)

// ParseGender maps a provider gender code to a Gender. "M"/"male" and
// "F"/"female" are recognised case-insensitively; anything else is other.
func ParseGender(s string) Gender {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "male":
		return GenderMale
	case "f", "female":
		return GenderFemale
	default:
		return GenderOther
	}
}

// Code returns the single-letter provider code ("M", "F" or "O").
func (g Gender) Code() string {
	switch g {
	case GenderMale:
		return "M"
	case GenderFemale:
		return "F"
	default:
		return "O"
	}
}

func (g Gender) String() string {
	switch g {
	case GenderMale:
		return "male"
	case GenderFemale:
		return "female"
	default:
		return "other"
	}
}

// Kind is the relationship code carried by an edge. The numeric values are
// the provider's wire codes.
type Kind int

const (
	KindDivorced    Kind = 10 // symmetric, ignored by the graph
	KindMarriage    Kind = 11 // symmetric
	KindSibling     Kind = 12 // symmetric, ignored by the graph
	KindParentChild Kind = 13 // directed parent -> child
	KindChildParent Kind = 14 // complement of KindParentChild, ignored by the graph
)

// ParseKind maps a relationship label such as "Married" or "Parent" to its
// Kind. Labels are matched case-insensitively.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "divorced":
		return KindDivorced, true
	case "married":
		return KindMarriage, true
	case "sibling":
		return KindSibling, true
	case "parent":
		return KindParentChild, true
	case "son-daughter":
		return KindChildParent, true
	default:
		return 0, false
	}
}

func (k Kind) String() string {
	switch k {
	case KindDivorced:
		return "Divorced"
	case KindMarriage:
		return "Married"
	case KindSibling:
		return "Sibling"
	case KindParentChild:
		return "Parent"
	case KindChildParent:
		return "Son-Daughter"
	default:
		return "Unknown"
	}
}

// Member is a person record as owned by the graph provider.
type Member struct {
	ID     string
	Name   string
	Gender Gender
	Age    int
}

// Edge is a typed relation between two member IDs.
type Edge struct {
	From string
	To   string
	Kind Kind
}

// Lookup resolves member IDs to their records. Renderers take a Lookup
// instead of reaching for shared state to find display names.
type Lookup interface {
	Member(id string) (Member, bool)
}

// Person is a Member augmented with its spouse set, child set and the
// is-a-child flag. A Person is never modified once [Build] returns.
type Person struct {
	Member

	spouses  IDSet
	children IDSet
	isChild  bool
}

// Spouses returns the spouse IDs in the order the edges were read.
func (p *Person) Spouses() []string { return p.spouses.IDs() }

// Children returns the child IDs in the order the edges were read.
func (p *Person) Children() []string { return p.children.IDs() }

// FirstSpouse returns the earliest recorded spouse.
func (p *Person) FirstSpouse() (string, bool) { return p.spouses.First() }

// HasSpouse reports whether the person has at least one recorded spouse.
func (p *Person) HasSpouse() bool { return p.spouses.Len() > 0 }

// IsSpouse reports whether id is in the person's spouse set.
func (p *Person) IsSpouse(id string) bool { return p.spouses.Contains(id) }

// HasChild reports whether id is in the person's child set.
func (p *Person) HasChild(id string) bool { return p.children.Contains(id) }

// IsChild reports whether the person is the target of at least one
// parent-child edge.
func (p *Person) IsChild() bool { return p.isChild }

// Graph is the augmented member mapping produced by [Build].
type Graph struct {
	people  map[string]*Person
	order   []string
	edges   []Edge
	dropped int
}

// Build normalises members and edges into a Graph.
//
// Members keep their input order; a repeated member ID keeps the first record.
// Marriage edges are unioned in both directions, parent-child edges fill the
// parent's child set, and after every edge is read each member found in some
// child set is flagged as a child. Edges with an unknown endpoint, and edges
// whose endpoints are the same member, are skipped.
func Build(members []Member, edges []Edge) *Graph {
	g := &Graph{
		people: make(map[string]*Person, len(members)),
		order:  make([]string, 0, len(members)),
	}
	for _, m := range members {
		if _, exists := g.people[m.ID]; exists {
			continue
		}
		g.people[m.ID] = &Person{Member: m, spouses: newIDSet(), children: newIDSet()}
		g.order = append(g.order, m.ID)
	}

	for _, e := range edges {
		from, okFrom := g.people[e.From]
		to, okTo := g.people[e.To]
		if !okFrom || !okTo || e.From == e.To {
			g.dropped++
			continue
		}
		switch e.Kind {
		case KindMarriage:
			from.spouses.add(e.To)
			to.spouses.add(e.From)
		case KindParentChild:
			from.children.add(e.To)
		default:
			continue
		}
		g.edges = append(g.edges, e)
	}

	for _, p := range g.people {
		for _, id := range p.children.IDs() {
			g.people[id].isChild = true
		}
	}
	return g
}

// Person returns the augmented member with the given ID.
func (g *Graph) Person(id string) (*Person, bool) {
	p, ok := g.people[id]
	return p, ok
}

// Member returns the plain member record for id. It makes *Graph a [Lookup].
func (g *Graph) Member(id string) (Member, bool) {
	p, ok := g.people[id]
	if !ok {
		return Member{}, false
	}
	return p.Member, true
}

// People returns every person in member input order.
func (g *Graph) People() []*Person {
	people := make([]*Person, len(g.order))
	for i, id := range g.order {
		people[i] = g.people[id]
	}
	return people
}

// IDs returns every member ID in input order.
func (g *Graph) IDs() []string {
	ids := make([]string, len(g.order))
	copy(ids, g.order)
	return ids
}

// Len returns the number of members.
func (g *Graph) Len() int { return len(g.order) }

// Edges returns the marriage and parent-child edges that shaped the graph,
// in input order. Duplicates are kept as supplied.
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, len(g.edges))
	copy(edges, g.edges)
	return edges
}

// Dropped returns how many edges were skipped for naming an unknown member
// or linking a member to itself.
func (g *Graph) Dropped() int { return g.dropped }

// Validate reports ErrGraphHasCycle if some member is their own descendant.
// Build never calls it; the hierarchy builder detects the cycles it would
// walk into on its own.
func (g *Graph) Validate() error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(g.people))
	var hasCycle bool

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		for _, child := range g.people[id].children.IDs() {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				hasCycle = true
			}
			if hasCycle {
				return
			}
		}
		color[id] = black
	}

	for _, id := range g.order {
		if color[id] == white {
			dfs(id)
			if hasCycle {
				return ErrGraphHasCycle
			}
		}
	}
	return nil
}
