package provider

import (
	"context"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/family"
	"github.com/matzehuels/lineage/pkg/graph"
	"github.com/matzehuels/lineage/pkg/httputil"
)

// Endpoints of the family-tree service, relative to its base URL.
const (
	MembersPath = "/members"
	ExportPath  = "/export_json"
)

// HTTPOptions configures an [HTTP] provider.
type HTTPOptions struct {
	BaseURL string
	Token   string
	Timeout time.Duration

	// Attempts and Backoff control the retry of transient failures.
	// Zero values mean 3 attempts starting at one second.
	Attempts int
	Backoff  time.Duration

	// FailureThreshold consecutive failures open the circuit breaker for
	// Cooldown. Zero values mean 5 failures and 30 seconds.
	FailureThreshold uint32
	Cooldown         time.Duration
}

func (o *HTTPOptions) setDefaults() {
	if o.Attempts == 0 {
		o.Attempts = 3
	}
	if o.Backoff == 0 {
		o.Backoff = time.Second
	}
	if o.FailureThreshold == 0 {
		o.FailureThreshold = 5
	}
	if o.Cooldown == 0 {
		o.Cooldown = 30 * time.Second
	}
}

// HTTP fetches members from GET {base}/members and edges from the export
// document at GET {base}/export_json. Requests carry the bearer token,
// transient failures are retried, and a circuit breaker stops hammering a
// service that keeps failing.
type HTTP struct {
	base    string
	client  *httputil.Client
	breaker *gobreaker.CircuitBreaker
}

// NewHTTP validates opts and builds the provider.
func NewHTTP(opts HTTPOptions) (*HTTP, error) {
	if err := errors.ValidateURL(opts.BaseURL); err != nil {
		return nil, err
	}
	opts.setDefaults()

	var headers map[string]string
	if opts.Token != "" {
		headers = map[string]string{"Authorization": "Bearer " + opts.Token}
	}

	threshold := opts.FailureThreshold
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "family-tree-service",
		Timeout: opts.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			// A missing tree or a rejected token says nothing about the
			// health of the service.
			return err == nil || errors.Is(err, errors.ErrCodeNotFound) || errors.Is(err, errors.ErrCodeUnauthorized)
		},
	})

	return &HTTP{
		base:    strings.TrimRight(opts.BaseURL, "/"),
		client:  httputil.NewClient(headers, opts.Timeout).WithRetry(opts.Attempts, opts.Backoff),
		breaker: breaker,
	}, nil
}

func (p *HTTP) Name() string { return NameHTTP }

// State reports the circuit breaker state ("closed", "half-open", "open").
func (p *HTTP) State() string { return p.breaker.State().String() }

func (p *HTTP) Members(ctx context.Context) ([]family.Member, error) {
	var persons []graph.Person
	if err := p.get(ctx, MembersPath, &persons); err != nil {
		return nil, err
	}
	members := make([]family.Member, len(persons))
	for i, person := range persons {
		members[i] = person.Member()
	}
	return members, nil
}

func (p *HTTP) Edges(ctx context.Context) ([]family.Edge, error) {
	var export graph.Snapshot
	if err := p.get(ctx, ExportPath, &export); err != nil {
		return nil, err
	}
	return export.FamilyEdges(), nil
}

func (p *HTTP) get(ctx context.Context, path string, v any) error {
	_, err := p.breaker.Execute(func() (interface{}, error) {
		return nil, p.client.GetJSON(ctx, p.base+path, v)
	})
	switch {
	case err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests:
		return errors.Wrap(errors.ErrCodeNetwork, err, "family-tree service at %s", p.base)
	default:
		return err
	}
}
