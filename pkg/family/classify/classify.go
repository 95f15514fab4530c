// Package classify partitions a family graph into the units that can anchor a
// top-level branch of the drawn tree.
//
// A root couple is a married pair where neither spouse is anyone's recorded
// child. A root single is a member who is nobody's child and has no spouse.
// Everyone else is expected to show up later as a descendant inside the
// hierarchy. Members that no root unit reaches are not drawn at all.
package classify

import (
	"github.com/matzehuels/lineage/pkg/family"
)

// Couple is a root couple in discovery order: A is the member visited first,
// B is A's spouse.
type Couple struct {
	A string
	B string
}

// Key returns the canonical unordered key for the pair.
func (c Couple) Key() string { return pairKey(c.A, c.B) }

// Units is the output of [Classify].
type Units struct {
	Couples []Couple
	Singles []string
}

// Len returns the number of independent family units.
func (u Units) Len() int { return len(u.Couples) + len(u.Singles) }

// IsRootEligible reports whether p may anchor a top-level unit, i.e. p is
// not the target of any parent-child edge.
func IsRootEligible(p *family.Person) bool { return !p.IsChild() }

// HasSpouse reports whether p has at least one recorded spouse.
func HasSpouse(p *family.Person) bool { return p.HasSpouse() }

// Classify returns the root couples and root singles of g. Members are
// visited in graph order and each member's spouses in insertion order, so the
// result is deterministic; {a,b} and {b,a} collapse to a single couple.
func Classify(g *family.Graph) Units {
	var units Units
	seen := make(map[string]bool)

	for _, p := range g.People() {
		for _, sid := range p.Spouses() {
			spouse, ok := g.Person(sid)
			if !ok {
				continue
			}
			key := pairKey(p.ID, sid)
			if seen[key] || !IsRootEligible(p) || !IsRootEligible(spouse) {
				continue
			}
			seen[key] = true
			units.Couples = append(units.Couples, Couple{A: p.ID, B: sid})
		}
	}

	for _, p := range g.People() {
		if IsRootEligible(p) && !HasSpouse(p) {
			units.Singles = append(units.Singles, p.ID)
		}
	}
	return units
}

func pairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "\x00" + b
}
