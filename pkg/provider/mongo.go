package provider

import (
	"context"
	stderrors "errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/family"
	"github.com/matzehuels/lineage/pkg/graph"
)

// Defaults matching the family-tree service's store.
const (
	DefaultMongoDatabase   = "family_tree_db"
	DefaultMongoCollection = "trees"
)

// MongoOptions configures a [Mongo] provider.
type MongoOptions struct {
	URI        string `validate:"required"`
	Database   string
	Collection string
	Owner      string `validate:"required"`
	Timeout    time.Duration
}

// Mongo reads one owner's tree straight from the service's collection,
// where each document looks like {username, tree: {persons, edges}}.
type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
	owner  string
}

// treeDocument is the part of a stored document the provider reads.
type treeDocument struct {
	Tree graph.Snapshot `bson:"tree"`
}

// NewMongo connects lazily; the first query reports an unreachable server.
func NewMongo(ctx context.Context, opts MongoOptions) (*Mongo, error) {
	if err := errors.ValidateStructCode(errors.ErrCodeInvalidConfig, opts); err != nil {
		return nil, err
	}
	if opts.Database == "" {
		opts.Database = DefaultMongoDatabase
	}
	if opts.Collection == "" {
		opts.Collection = DefaultMongoCollection
	}

	clientOpts := options.Client().ApplyURI(opts.URI)
	if opts.Timeout > 0 {
		clientOpts.SetServerSelectionTimeout(opts.Timeout).SetConnectTimeout(opts.Timeout)
	}
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "connect to mongodb")
	}

	return &Mongo{
		client: client,
		coll:   client.Database(opts.Database).Collection(opts.Collection),
		owner:  opts.Owner,
	}, nil
}

func (p *Mongo) Name() string { return NameMongo }

func (p *Mongo) Members(ctx context.Context) ([]family.Member, error) {
	doc, err := p.find(ctx, "tree.persons")
	if err != nil {
		return nil, err
	}
	return doc.Tree.Members(), nil
}

func (p *Mongo) Edges(ctx context.Context) ([]family.Edge, error) {
	doc, err := p.find(ctx, "tree.edges")
	if err != nil {
		return nil, err
	}
	return doc.Tree.FamilyEdges(), nil
}

// Close disconnects the client.
func (p *Mongo) Close(ctx context.Context) error {
	return p.client.Disconnect(ctx)
}

func (p *Mongo) find(ctx context.Context, field string) (treeDocument, error) {
	var doc treeDocument
	opts := options.FindOne().SetProjection(bson.M{field: 1})
	err := p.coll.FindOne(ctx, bson.M{"username": p.owner}, opts).Decode(&doc)
	switch {
	case err == nil:
		return doc, nil
	case stderrors.Is(err, mongo.ErrNoDocuments):
		return doc, errors.New(errors.ErrCodeNotFound, "no family tree stored for %q", p.owner)
	default:
		return doc, errors.Wrap(errors.ErrCodeNetwork, err, "read %s for %q", field, p.owner)
	}
}
