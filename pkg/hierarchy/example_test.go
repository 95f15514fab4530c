package hierarchy_test

import (
	"fmt"
	"strings"

	"github.com/matzehuels/lineage/pkg/family"
	"github.com/matzehuels/lineage/pkg/family/classify"
	"github.com/matzehuels/lineage/pkg/hierarchy"
)

func ExampleBuild() {
	g := family.Build(
		[]family.Member{
			{ID: "1", Name: "Ada"},
			{ID: "2", Name: "Bert"},
			{ID: "3", Name: "Cleo"},
			{ID: "4", Name: "Dan"},
			{ID: "5", Name: "Eve"},
		},
		[]family.Edge{
			{From: "1", To: "2", Kind: family.KindMarriage},
			{From: "1", To: "3", Kind: family.KindParentChild},
			{From: "2", To: "3", Kind: family.KindParentChild},
			{From: "3", To: "4", Kind: family.KindMarriage},
		},
	)

	root, err := hierarchy.Build(g, classify.Classify(g))
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	root.Walk(func(n *hierarchy.Node, depth int) bool {
		fmt.Printf("%s%s (%s)\n", strings.Repeat("  ", depth), n.Label, n.Kind)
		return true
	})
	fmt.Println("not drawn:", hierarchy.Orphans(g, root))
	// Output:
	// Family Tree (root)
	//   Ada + Bert (couple)
	//     Cleo + Dan (couple)
	//   Eve (person)
	// not drawn: []
}
