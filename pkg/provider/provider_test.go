package provider

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/family"
	"github.com/matzehuels/lineage/pkg/graph"
)

func sample() graph.Snapshot {
	return graph.Snapshot{
		Persons: []graph.Person{
			{MID: "1", Name: "Ada", Gender: "F", Age: 61},
			{MID: "2", Name: "Bert", Gender: "M", Age: 63},
			{MID: "3", Name: "Cleo", Gender: "F", Age: 30},
		},
		Edges: []graph.Edge{
			{From: "1", To: "2", Relationship: graph.Relationship(family.KindMarriage)},
			{From: "1", To: "3", Relationship: graph.Relationship(family.KindParentChild)},
			{From: "2", To: "3", Relationship: graph.Relationship(family.KindParentChild)},
		},
	}
}

// stub is a provider whose halves can fail independently.
type stub struct {
	members  []family.Member
	edges    []family.Edge
	memErr   error
	edgeErr  error
	inFlight atomic.Int32
	overlap  atomic.Bool
}

func (s *stub) Name() string { return "stub" }

func (s *stub) enter() func() {
	if s.inFlight.Add(1) > 1 {
		s.overlap.Store(true)
	}
	time.Sleep(20 * time.Millisecond)
	return func() { s.inFlight.Add(-1) }
}

func (s *stub) Members(ctx context.Context) ([]family.Member, error) {
	defer s.enter()()
	return s.members, s.memErr
}

func (s *stub) Edges(ctx context.Context) ([]family.Edge, error) {
	defer s.enter()()
	return s.edges, s.edgeErr
}

func TestFetch(t *testing.T) {
	down := stderrors.New("service down")
	s := sample()

	tests := []struct {
		name    string
		p       *stub
		wantErr bool
	}{
		{"both succeed", &stub{members: s.Members(), edges: s.FamilyEdges()}, false},
		{"members fail", &stub{memErr: down, edges: s.FamilyEdges()}, true},
		{"edges fail", &stub{members: s.Members(), edgeErr: down}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Fetch(context.Background(), tt.p)
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeDataUnavailable) {
					t.Fatalf("error = %v, want %s", err, errors.ErrCodeDataUnavailable)
				}
				if !stderrors.Is(err, down) {
					t.Error("cause should be preserved")
				}
				if len(got.Persons) != 0 || len(got.Edges) != 0 {
					t.Error("a failed fetch must not return partial data")
				}
				return
			}
			if err != nil {
				t.Fatalf("Fetch: %v", err)
			}
			if len(got.Persons) != 3 || len(got.Edges) != 3 {
				t.Errorf("snapshot = %d persons, %d edges", len(got.Persons), len(got.Edges))
			}
			if !tt.p.overlap.Load() {
				t.Error("members and edges should be fetched concurrently")
			}
		})
	}
}

func TestStatic(t *testing.T) {
	got, err := Fetch(context.Background(), NewStatic(sample()))
	if err != nil {
		t.Fatal(err)
	}
	if got.Hash() != sample().Hash() {
		t.Errorf("static fetch = %+v, want %+v", got, sample())
	}
}

func TestStaticCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Fetch(ctx, NewStatic(sample())); !errors.Is(err, errors.ErrCodeDataUnavailable) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeDataUnavailable)
	}
}

func TestFile(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"family.json", "family.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := graph.WriteSnapshotFile(sample(), path); err != nil {
				t.Fatal(err)
			}
			p := NewFile(path)
			got, err := Fetch(context.Background(), p)
			if err != nil {
				t.Fatalf("Fetch: %v", err)
			}
			if got.Hash() != sample().Hash() {
				t.Errorf("file fetch = %+v", got)
			}
			if p.Name() != NameFile || p.Path() != path {
				t.Errorf("Name/Path = %s, %s", p.Name(), p.Path())
			}
		})
	}

	t.Run("missing", func(t *testing.T) {
		_, err := Fetch(context.Background(), NewFile(filepath.Join(dir, "nope.json")))
		if !errors.Is(err, errors.ErrCodeDataUnavailable) {
			t.Errorf("error = %v, want %s", err, errors.ErrCodeDataUnavailable)
		}
	})
}

func TestNewMongoValidation(t *testing.T) {
	tests := []struct {
		name string
		opts MongoOptions
	}{
		{"no uri", MongoOptions{Owner: "ada"}},
		{"no owner", MongoOptions{URI: "mongodb://127.0.0.1:1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewMongo(context.Background(), tt.opts); !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("error = %v, want %s", err, errors.ErrCodeInvalidConfig)
			}
		})
	}
}

func TestMongoUnreachable(t *testing.T) {
	ctx := context.Background()
	p, err := NewMongo(ctx, MongoOptions{
		URI:     "mongodb://127.0.0.1:1",
		Owner:   "ada",
		Timeout: 200 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewMongo: %v", err)
	}
	defer p.Close(ctx)

	if _, err := Fetch(ctx, p); !errors.Is(err, errors.ErrCodeDataUnavailable) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeDataUnavailable)
	}
}
