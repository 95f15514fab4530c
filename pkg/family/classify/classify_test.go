package classify

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/matzehuels/lineage/pkg/family"
)

func build(ids []string, edges ...family.Edge) *family.Graph {
	ms := make([]family.Member, len(ids))
	for i, id := range ids {
		ms[i] = family.Member{ID: id, Name: id}
	}
	return family.Build(ms, edges)
}

func marry(a, b string) family.Edge {
	return family.Edge{From: a, To: b, Kind: family.KindMarriage}
}

func parent(p, c string) family.Edge {
	return family.Edge{From: p, To: c, Kind: family.KindParentChild}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		ids         []string
		edges       []family.Edge
		wantCouples []Couple
		wantSingles []string
	}{
		{
			name: "Empty",
		},
		{
			name:        "SingleMember",
			ids:         []string{"a"},
			wantSingles: []string{"a"},
		},
		{
			name:        "CoupleWithChild",
			ids:         []string{"A", "B", "C"},
			edges:       []family.Edge{marry("A", "B"), parent("A", "C"), parent("B", "C")},
			wantCouples: []Couple{{A: "A", B: "B"}},
		},
		{
			name:        "MarriageRecordedBothWays",
			ids:         []string{"a", "b"},
			edges:       []family.Edge{marry("b", "a"), marry("a", "b")},
			wantCouples: []Couple{{A: "a", B: "b"}},
		},
		{
			name:        "CoupleAndSingle",
			ids:         []string{"a", "b", "c"},
			edges:       []family.Edge{marry("a", "b")},
			wantCouples: []Couple{{A: "a", B: "b"}},
			wantSingles: []string{"c"},
		},
		{
			name:  "MarriedChildrenAreNotRoots",
			ids:   []string{"p", "q", "x", "y"},
			edges: []family.Edge{parent("p", "x"), parent("q", "y"), marry("x", "y")},
			// p and q are unmarried roots; x and y are both children.
			wantSingles: []string{"p", "q"},
		},
		{
			name:        "CoupleWithOneChildSpouse",
			ids:         []string{"a", "b", "c"},
			edges:       []family.Edge{parent("a", "b"), marry("b", "c")},
			wantSingles: []string{"a"},
		},
		{
			name:        "SecondMarriageProducesSecondCouple",
			ids:         []string{"a", "b", "c"},
			edges:       []family.Edge{marry("a", "b"), marry("a", "c")},
			wantCouples: []Couple{{A: "a", B: "b"}, {A: "a", B: "c"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			units := Classify(build(tt.ids, tt.edges...))
			if !slices.Equal(units.Couples, tt.wantCouples) {
				t.Errorf("Couples = %v, want %v", units.Couples, tt.wantCouples)
			}
			if !slices.Equal(units.Singles, tt.wantSingles) {
				t.Errorf("Singles = %v, want %v", units.Singles, tt.wantSingles)
			}
			if units.Len() != len(tt.wantCouples)+len(tt.wantSingles) {
				t.Errorf("Len() = %d", units.Len())
			}
		})
	}
}

func TestPredicatesAreIndependent(t *testing.T) {
	g := build([]string{"a", "b", "c", "d"}, marry("a", "b"), parent("a", "c"), marry("c", "d"))

	tests := []struct {
		id        string
		eligible  bool
		hasSpouse bool
	}{
		{"a", true, true},
		{"b", true, true},
		{"c", false, true},
		{"d", true, true},
	}
	for _, tt := range tests {
		p, _ := g.Person(tt.id)
		if got := IsRootEligible(p); got != tt.eligible {
			t.Errorf("IsRootEligible(%s) = %v, want %v", tt.id, got, tt.eligible)
		}
		if got := HasSpouse(p); got != tt.hasSpouse {
			t.Errorf("HasSpouse(%s) = %v, want %v", tt.id, got, tt.hasSpouse)
		}
	}
}

func TestCoupleKeyIsUnordered(t *testing.T) {
	if (Couple{A: "x", B: "y"}).Key() != (Couple{A: "y", B: "x"}).Key() {
		t.Error("Key() should not depend on pair order")
	}
	if (Couple{A: "x", B: "y"}).Key() == (Couple{A: "x", B: "z"}).Key() {
		t.Error("different pairs must have different keys")
	}
}

func TestClassifyNeverDuplicatesCouples(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	for round := range 200 {
		n := 2 + rng.IntN(8)
		ids := make([]string, n)
		for i := range ids {
			ids[i] = fmt.Sprintf("m%d", i)
		}
		var edges []family.Edge
		for range rng.IntN(20) {
			a, b := ids[rng.IntN(n)], ids[rng.IntN(n)]
			if rng.IntN(3) == 0 {
				edges = append(edges, parent(a, b))
			} else {
				edges = append(edges, marry(a, b))
			}
		}

		g := build(ids, edges...)
		units := Classify(g)
		seen := make(map[string]bool)
		for _, c := range units.Couples {
			if seen[c.Key()] {
				t.Fatalf("round %d: duplicate couple %v", round, c)
			}
			seen[c.Key()] = true
			for _, id := range []string{c.A, c.B} {
				p, _ := g.Person(id)
				if p.IsChild() {
					t.Fatalf("round %d: child %s classified as root couple", round, id)
				}
			}
		}
		for _, id := range units.Singles {
			p, _ := g.Person(id)
			if p.IsChild() || p.HasSpouse() {
				t.Fatalf("round %d: %s is not a valid root single", round, id)
			}
		}
	}
}
