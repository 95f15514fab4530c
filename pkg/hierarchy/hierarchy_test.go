package hierarchy

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/family"
	"github.com/matzehuels/lineage/pkg/family/classify"
)

func marry(a, b string) family.Edge {
	return family.Edge{From: a, To: b, Kind: family.KindMarriage}
}

func parent(p, c string) family.Edge {
	return family.Edge{From: p, To: c, Kind: family.KindParentChild}
}

func graphOf(ids []string, edges ...family.Edge) *family.Graph {
	ms := make([]family.Member, len(ids))
	for i, id := range ids {
		ms[i] = family.Member{ID: id, Name: "N" + id}
	}
	return family.Build(ms, edges)
}

func build(t *testing.T, g *family.Graph) *Node {
	t.Helper()
	root, err := Build(g, classify.Classify(g))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return root
}

// shape renders a tree as nested keys, e.g. "A+B(C,D+E())".
func shape(n *Node) string {
	s := n.Key
	if n.Kind == KindPerson {
		return s
	}
	s += "("
	for i, c := range n.Children {
		if i > 0 {
			s += ","
		}
		s += shape(c)
	}
	return s + ")"
}

func TestBuildRootSelection(t *testing.T) {
	tests := []struct {
		name  string
		ids   []string
		edges []family.Edge
		kind  Kind
		shape string
	}{
		{
			name:  "single couple is the root",
			ids:   []string{"A", "B"},
			edges: []family.Edge{marry("A", "B")},
			kind:  KindCouple,
			shape: "A+B()",
		},
		{
			name:  "single person is the root",
			ids:   []string{"A"},
			kind:  KindPerson,
			shape: "A",
		},
		{
			name:  "couple and single get a virtual root",
			ids:   []string{"A", "B", "C"},
			edges: []family.Edge{marry("A", "B")},
			kind:  KindVirtualRoot,
			shape: "__root__(A+B(),C)",
		},
		{
			name:  "two couples get a virtual root",
			ids:   []string{"A", "B", "C", "D"},
			edges: []family.Edge{marry("A", "B"), marry("C", "D")},
			kind:  KindVirtualRoot,
			shape: "__root__(A+B(),C+D())",
		},
		{
			name:  "singles follow couples",
			ids:   []string{"S", "A", "B"},
			edges: []family.Edge{marry("A", "B")},
			kind:  KindVirtualRoot,
			shape: "__root__(A+B(),S)",
		},
		{
			name:  "empty graph",
			kind:  KindVirtualRoot,
			shape: "__root__()",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := build(t, graphOf(tt.ids, tt.edges...))
			if root.Kind != tt.kind {
				t.Errorf("root kind = %v, want %v", root.Kind, tt.kind)
			}
			if got := shape(root); got != tt.shape {
				t.Errorf("shape = %s, want %s", got, tt.shape)
			}
		})
	}
}

func TestBuildScenario(t *testing.T) {
	g := family.Build(
		[]family.Member{
			{ID: "A", Name: "Adam", Gender: family.GenderMale},
			{ID: "B", Name: "Beth", Gender: family.GenderFemale},
			{ID: "C", Name: "Carl", Gender: family.GenderMale},
		},
		[]family.Edge{marry("A", "B"), parent("A", "C"), parent("B", "C")},
	)
	root := build(t, g)

	if root.Kind != KindCouple || !slices.Equal(root.Members, []string{"A", "B"}) {
		t.Fatalf("root = %+v, want couple A,B", root)
	}
	if root.Label != "Adam + Beth" {
		t.Errorf("Label = %q, want %q", root.Label, "Adam + Beth")
	}
	if len(root.Children) != 1 {
		t.Fatalf("children = %d, want 1", len(root.Children))
	}
	c := root.Children[0]
	if c.Kind != KindPerson || c.Key != "C" || c.Label != "Carl" {
		t.Errorf("child = %+v, want person C", c)
	}
}

func TestBuildChildAttribution(t *testing.T) {
	tests := []struct {
		name  string
		ids   []string
		edges []family.Edge
		shape string
	}{
		{
			name:  "child of one parent is not placed",
			ids:   []string{"A", "B", "C"},
			edges: []family.Edge{marry("A", "B"), parent("A", "C")},
			shape: "A+B()",
		},
		{
			name:  "shared children in member order",
			ids:   []string{"A", "B", "Y", "X"},
			edges: []family.Edge{marry("A", "B"), parent("A", "X"), parent("B", "X"), parent("A", "Y"), parent("B", "Y")},
			shape: "A+B(Y,X)",
		},
		{
			name: "married child pairs with first spouse",
			ids:  []string{"A", "B", "C", "D", "E"},
			edges: []family.Edge{
				marry("A", "B"), parent("A", "C"), parent("B", "C"),
				marry("C", "D"), marry("C", "E"),
			},
			shape: "A+B(C+D())",
		},
		{
			name: "three generations",
			ids:  []string{"A", "B", "C", "D", "G"},
			edges: []family.Edge{
				marry("A", "B"), parent("A", "C"), parent("B", "C"),
				marry("D", "C"), parent("C", "G"), parent("D", "G"),
			},
			shape: "A+B(C+D(G))",
		},
		{
			name: "child married to a parent",
			ids:  []string{"A", "B", "C"},
			edges: []family.Edge{
				marry("A", "B"), parent("A", "C"), parent("B", "C"), marry("C", "A"),
			},
			shape: "A+B(C+A())",
		},
		{
			name: "children of a parent and child",
			ids:  []string{"A", "B", "C", "G"},
			edges: []family.Edge{
				marry("A", "B"), parent("A", "C"), parent("B", "C"), marry("C", "A"),
				parent("C", "G"), parent("A", "G"),
			},
			shape: "A+B(C+A(G))",
		},
		{
			name: "person nodes never expand",
			ids:  []string{"A", "B", "C", "K"},
			edges: []family.Edge{
				marry("A", "B"), parent("A", "C"), parent("B", "C"), parent("C", "K"),
			},
			shape: "A+B(C)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shape(build(t, graphOf(tt.ids, tt.edges...))); got != tt.shape {
				t.Errorf("shape = %s, want %s", got, tt.shape)
			}
		})
	}
}

func TestBuildDetectsCycles(t *testing.T) {
	tests := []struct {
		name  string
		edges []family.Edge
	}{
		{
			name: "couple is its own grandchild",
			edges: []family.Edge{
				marry("A", "B"), parent("A", "C"), parent("B", "C"),
				marry("C", "D"), parent("C", "A"), parent("D", "A"),
			},
		},
		{
			name: "grandchild is its own grandparent",
			edges: []family.Edge{
				marry("A", "B"), parent("A", "C"), parent("B", "C"),
				marry("C", "D"), parent("C", "B"), parent("D", "B"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := graphOf([]string{"A", "B", "C", "D"}, tt.edges...)
			units := classify.Units{Couples: []classify.Couple{{A: "A", B: "B"}}}
			_, err := Build(g, units)
			if !errors.Is(err, errors.ErrCodeMalformedGraph) {
				t.Errorf("Build() error = %v, want %s", err, errors.ErrCodeMalformedGraph)
			}
		})
	}
}

func TestOrphans(t *testing.T) {
	g := graphOf([]string{"A", "B", "C", "P", "Q", "X", "Y"},
		marry("A", "B"), parent("A", "C"),
		parent("P", "X"), parent("Q", "Y"), marry("X", "Y"),
	)
	root := build(t, g)

	if got, want := Orphans(g, root), []string{"C", "X", "Y"}; !slices.Equal(got, want) {
		t.Errorf("Orphans() = %v, want %v", got, want)
	}
	if got := Orphans(g, nil); len(got) != g.Len() {
		t.Errorf("Orphans(nil) = %v, want every member", got)
	}
}

func TestWalk(t *testing.T) {
	root := build(t, graphOf([]string{"A", "B", "C", "D", "E", "S"},
		marry("A", "B"), parent("A", "C"), parent("B", "C"), parent("A", "D"), parent("B", "D"),
		marry("D", "E"),
	))

	var visited []string
	root.Walk(func(n *Node, depth int) bool {
		visited = append(visited, fmt.Sprintf("%s@%d", n.Key, depth))
		return true
	})
	want := []string{"__root__@0", "A+B@1", "C@2", "D+E@2", "S@1"}
	if !slices.Equal(visited, want) {
		t.Errorf("Walk order = %v, want %v", visited, want)
	}
	if root.Len() != 5 {
		t.Errorf("Len() = %d, want 5", root.Len())
	}
	if root.Depth() != 2 {
		t.Errorf("Depth() = %d, want 2", root.Depth())
	}

	var pruned int
	root.Walk(func(n *Node, _ int) bool {
		pruned++
		return n.Kind == KindVirtualRoot
	})
	if pruned != 3 {
		t.Errorf("pruned walk visited %d nodes, want 3", pruned)
	}
}

// Build must terminate on arbitrary edge soups, either with a tree or with a
// malformed-graph error, and every tree it returns must respect the child
// attribution rule.
func TestBuildRandomGraphs(t *testing.T) {
	rng := rand.New(rand.NewPCG(17, 29))
	for round := range 300 {
		n := 2 + rng.IntN(9)
		ids := make([]string, n)
		for i := range ids {
			ids[i] = fmt.Sprintf("m%d", i)
		}
		var edges []family.Edge
		for range rng.IntN(25) {
			a, b := ids[rng.IntN(n)], ids[rng.IntN(n)]
			if rng.IntN(2) == 0 {
				edges = append(edges, marry(a, b))
			} else {
				edges = append(edges, parent(a, b))
			}
		}

		g := graphOf(ids, edges...)
		root, err := Build(g, classify.Classify(g))
		if err != nil {
			if !errors.Is(err, errors.ErrCodeMalformedGraph) {
				t.Fatalf("round %d: unexpected error %v", round, err)
			}
			continue
		}
		root.Walk(func(node *Node, _ int) bool {
			if node.Kind == KindPerson && len(node.Children) > 0 {
				t.Fatalf("round %d: person %s has children", round, node.Key)
			}
			if node.Kind != KindCouple {
				return true
			}
			pa, _ := g.Person(node.Members[0])
			pb, _ := g.Person(node.Members[1])
			for _, c := range node.Children {
				id := c.Members[0]
				if !pa.HasChild(id) || !pb.HasChild(id) {
					t.Fatalf("round %d: %s placed under %s without both parents", round, id, node.Key)
				}
			}
			return true
		})
	}
}
