package provider

import (
	"context"

	"github.com/matzehuels/lineage/pkg/family"
	"github.com/matzehuels/lineage/pkg/graph"
)

// File reads a snapshot file on every call, so a long-running server always
// sees the current contents.
type File struct {
	path string
}

// NewFile returns a provider backed by the JSON or YAML file at path.
func NewFile(path string) *File {
	return &File{path: path}
}

func (p *File) Name() string { return NameFile }

// Path returns the snapshot location.
func (p *File) Path() string { return p.path }

func (p *File) Members(ctx context.Context) ([]family.Member, error) {
	s, err := p.load(ctx)
	if err != nil {
		return nil, err
	}
	return s.Members(), nil
}

func (p *File) Edges(ctx context.Context) ([]family.Edge, error) {
	s, err := p.load(ctx)
	if err != nil {
		return nil, err
	}
	return s.FamilyEdges(), nil
}

func (p *File) load(ctx context.Context) (graph.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return graph.Snapshot{}, err
	}
	return graph.ReadSnapshotFile(p.path)
}
