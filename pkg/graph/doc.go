// Package graph provides serialization types for family snapshots and
// computed layouts.
//
// This package defines lineage's wire formats, used for snapshot files, API
// request and response bodies, cached artifacts and MongoDB documents.
//
// # Architecture
//
// The package sits at the serialization boundary between internal
// representations and external formats:
//
//   - [Snapshot], [Layout]: Serialization types (this package)
//   - pkg/family: Member and Edge records, the augmented Graph
//   - pkg/layout.Layout: Internal layout (positions, links)
//
// Use [FromFamily]/[Snapshot.Members]/[Snapshot.FamilyEdges] and
// [FromLayout]/[ToLayout] to convert between them.
//
// # Snapshot Serialization
//
// Snapshots mirror the family-tree service's export:
//
//	{
//	  "persons": [{"mid": "1", "name": "Ada", "gender": "F", "age": 61}],
//	  "edges":   [{"from": "1", "to": "2", "relationship": 11}]
//	}
//
// Relationship codes are 10 Divorced, 11 Married, 12 Sibling, 13 Parent and
// 14 Son-Daughter. Labels are accepted on input in place of codes. YAML
// files use the same keys.
//
// Common operations:
//
//	s, _ := graph.ReadSnapshotFile("family.yaml")  // File → Snapshot
//	graph.WriteSnapshotFile(s, "family.json")      // Snapshot → File
//	g := family.Build(s.Members(), s.FamilyEdges()) // Snapshot → Graph
//
// # Layout Serialization
//
//	data, _ := graph.MarshalLayout(graph.FromLayout(l))
//	parsed, _ := graph.UnmarshalLayout(data)
//	l, _ = graph.ToLayout(parsed)
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package graph
