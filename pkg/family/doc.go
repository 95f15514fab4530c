// Package family provides the in-memory relationship graph that the family
// tree pipeline is built on.
//
// # Overview
//
// A graph provider hands Lineage a flat list of members and a flat list of
// typed edges. This package normalises those into an adjacency structure where
// every member is augmented with a spouse set, a child set and an "is a child"
// flag. Everything downstream (classification, hierarchy building, layout)
// reads from a [Graph] and never writes to it.
//
// # Basic Usage
//
//	g := family.Build(
//	    []family.Member{{ID: "a", Name: "Ada"}, {ID: "b", Name: "Bo"}, {ID: "c", Name: "Cy"}},
//	    []family.Edge{
//	        {From: "a", To: "b", Kind: family.KindMarriage},
//	        {From: "a", To: "c", Kind: family.KindParentChild},
//	    },
//	)
//	p, _ := g.Person("b")
//	p.Spouses()  // [a]
//
// # Edge Semantics
//
// Only two edge kinds shape the graph:
//
//   - [KindMarriage] is symmetric. Supplying (a,b) puts b in a's spouse set and
//     a in b's spouse set, whichever direction the provider recorded.
//   - [KindParentChild] is directed from parent to child. It fills the parent's
//     child set; once all edges are read, every member named in some child set
//     is flagged [Person.IsChild].
//
// The remaining provider codes ([KindDivorced], [KindSibling],
// [KindChildParent]) are recognised so snapshots round-trip, but they do not
// affect the graph.
//
// Sets are true sets: duplicate edges are idempotent. They also remember
// insertion order, which is what "first spouse" means to the hierarchy builder.
//
// # Missing Data
//
// Edges naming an unknown member, and edges from a member to itself, are
// dropped silently. The provider is authoritative and a partial tree is more
// useful than an error. [Build] reports how many edges it dropped via
// [Graph.Dropped] so callers can log it.
//
// # Concurrency
//
// A built Graph is immutable and safe for concurrent reads.
package family
