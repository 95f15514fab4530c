// Package pkg provides the core libraries for Lineage family-tree layout.
//
// # Overview
//
// Lineage turns a flat list of family members and relationship edges into a
// positioned tree: married couples become single units, their children hang
// below them, and a tidy-tree pass assigns every unit a place on the canvas.
// The pkg directory is organized into three areas:
//
//  1. Domain logic: [family], [family/classify], [hierarchy], [layout]
//  2. Data plumbing: [graph], [provider], [cache], [pipeline]
//  3. Output: [render/sink], [render/nodelink], [render/text]
//
// # Architecture
//
// The data flow through Lineage:
//
//	Family-tree service / MongoDB / snapshot file
//	         ↓
//	    [provider] package (fetch members and edges together)
//	         ↓
//	    [family] package (relationship graph)
//	         ↓
//	    [family/classify] package (root couples and singles)
//	         ↓
//	    [hierarchy] package (family-unit tree)
//	         ↓
//	    [layout] package (tidy-tree coordinates)
//	         ↓
//	    SVG / layout JSON / DOT / text output
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/lineage/pkg/family"
//	    "github.com/matzehuels/lineage/pkg/family/classify"
//	    "github.com/matzehuels/lineage/pkg/hierarchy"
//	    "github.com/matzehuels/lineage/pkg/layout"
//	    "github.com/matzehuels/lineage/pkg/render/sink"
//	)
//
//	g := family.Build(members, edges)
//	root, err := hierarchy.Build(g, classify.Classify(g))
//	if err != nil {
//	    return err
//	}
//	l, err := layout.Compute(root, layout.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	svg := sink.RenderSVG(l, sink.WithLookup(g))
//
// [pipeline.Runner] runs the same steps with caching and observability and
// is what the CLI and the HTTP server use.
//
// # Supporting Packages
//
// [errors] - Coded errors shared by every package; the server maps codes to
// HTTP statuses.
//
// [config] - TOML settings for layout, providers, cache and server.
//
// [observability] - Hook interfaces with a Prometheus implementation.
//
// [httputil] - HTTP client with retries used by the service provider.
//
// [buildinfo] - Version metadata injected at build time.
//
// # Testing
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/layout/...   # Specific package
//	go test -run Example       # Examples only
//	go test -short ./...       # Skip Graphviz rendering
package pkg
