// Package provider fetches family snapshots from where they live.
//
// A [Provider] answers two questions: who the members are and how they are
// related. [Fetch] asks both at once and hands back a [graph.Snapshot] only
// when both answers arrived; a failure on either side aborts the whole fetch
// with a DATA_UNAVAILABLE error so nothing downstream runs on half a family.
//
// Implementations:
//
//   - [Static]: an in-memory snapshot (tests, API request bodies)
//   - [File]: a JSON or YAML snapshot on disk
//   - [HTTP]: the remote family-tree service
//   - [Mongo]: the service's MongoDB store
package provider

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/family"
	"github.com/matzehuels/lineage/pkg/graph"
	"github.com/matzehuels/lineage/pkg/observability"
)

// Provider names reported by [Provider.Name].
const (
	NameStatic = "static"
	NameFile   = "file"
	NameHTTP   = "http"
	NameMongo  = "mongo"
)

// Provider is a source of member records and relationship edges.
type Provider interface {
	Name() string
	Members(ctx context.Context) ([]family.Member, error)
	Edges(ctx context.Context) ([]family.Edge, error)
}

// Fetch retrieves members and edges concurrently and combines them into a
// snapshot. Any failure is reported as DATA_UNAVAILABLE wrapping the cause.
func Fetch(ctx context.Context, p Provider) (graph.Snapshot, error) {
	hooks := observability.Pipeline()
	hooks.OnFetchStart(ctx, p.Name())
	start := time.Now()

	var (
		members []family.Member
		edges   []family.Edge
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		members, err = p.Members(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		edges, err = p.Edges(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		hooks.OnFetchComplete(ctx, p.Name(), 0, 0, time.Since(start), err)
		return graph.Snapshot{}, errors.Wrap(errors.ErrCodeDataUnavailable, err, "fetch family from %s provider", p.Name())
	}

	hooks.OnFetchComplete(ctx, p.Name(), len(members), len(edges), time.Since(start), nil)
	return graph.FromFamily(members, edges), nil
}
