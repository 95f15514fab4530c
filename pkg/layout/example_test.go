package layout_test

import (
	"fmt"

	"github.com/matzehuels/lineage/pkg/family"
	"github.com/matzehuels/lineage/pkg/family/classify"
	"github.com/matzehuels/lineage/pkg/hierarchy"
	"github.com/matzehuels/lineage/pkg/layout"
)

func ExampleCompute() {
	g := family.Build(
		[]family.Member{{ID: "A", Name: "Ann"}, {ID: "B", Name: "Bob"}, {ID: "C", Name: "Cat"}, {ID: "D", Name: "Dov"}},
		[]family.Edge{
			{From: "A", To: "B", Kind: family.KindMarriage},
			{From: "A", To: "C", Kind: family.KindParentChild},
			{From: "B", To: "C", Kind: family.KindParentChild},
			{From: "A", To: "D", Kind: family.KindParentChild},
			{From: "B", To: "D", Kind: family.KindParentChild},
		},
	)
	root, _ := hierarchy.Build(g, classify.Classify(g))

	l, err := layout.Compute(root, layout.DefaultConfig())
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	for _, n := range l.Nodes {
		fmt.Printf("%-8s %-6s (%g, %g)\n", n.Label, n.Kind, n.X, n.Y)
	}
	for _, link := range l.Links {
		fmt.Printf("%s -> %s\n", link.Source, link.Target)
	}
	// Output:
	// Ann + Bob couple (750, 60)
	// Cat      person (690, 180)
	// Dov      person (810, 180)
	// A+B -> C
	// A+B -> D
}
