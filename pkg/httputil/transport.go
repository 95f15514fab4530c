package httputil

import (
	"net/http"
	"time"

	"github.com/matzehuels/lineage/pkg/observability"
)

// hookTransport reports every round trip to the registered HTTP hooks.
type hookTransport struct {
	base http.RoundTripper
}

// NewTransport wraps base (or http.DefaultTransport when nil) so requests
// show up in [observability.HTTP].
func NewTransport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &hookTransport{base: base}
}

func (t *hookTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	hooks := observability.HTTP()
	ctx, host, path := req.Context(), req.URL.Host, req.URL.Path

	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, err
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))
	return resp, nil
}
