package family_test

import (
	"fmt"

	"github.com/matzehuels/lineage/pkg/family"
)

func ExampleBuild() {
	g := family.Build(
		[]family.Member{
			{ID: "a", Name: "Ada", Gender: family.GenderFemale, Age: 61},
			{ID: "b", Name: "Bert", Gender: family.GenderMale, Age: 63},
			{ID: "c", Name: "Cleo", Gender: family.GenderFemale, Age: 30},
		},
		[]family.Edge{
			{From: "b", To: "a", Kind: family.KindMarriage},
			{From: "a", To: "c", Kind: family.KindParentChild},
			{From: "b", To: "c", Kind: family.KindParentChild},
			{From: "a", To: "nobody", Kind: family.KindParentChild},
		},
	)

	a, _ := g.Person("a")
	c, _ := g.Person("c")
	fmt.Println("Spouses of a:", a.Spouses())
	fmt.Println("Children of a:", a.Children())
	fmt.Println("c is a child:", c.IsChild())
	fmt.Println("Dropped edges:", g.Dropped())
	// Output:
	// Spouses of a: [b]
	// Children of a: [c]
	// c is a child: true
	// Dropped edges: 1
}
