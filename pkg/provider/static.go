package provider

import (
	"context"

	"github.com/matzehuels/lineage/pkg/family"
	"github.com/matzehuels/lineage/pkg/graph"
)

// Static serves a fixed snapshot.
type Static struct {
	snapshot graph.Snapshot
}

// NewStatic returns a provider that always yields s.
func NewStatic(s graph.Snapshot) *Static {
	return &Static{snapshot: s}
}

func (p *Static) Name() string { return NameStatic }

func (p *Static) Members(ctx context.Context) ([]family.Member, error) {
	return p.snapshot.Members(), ctx.Err()
}

func (p *Static) Edges(ctx context.Context) ([]family.Edge, error) {
	return p.snapshot.FamilyEdges(), ctx.Err()
}
