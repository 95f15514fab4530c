package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/lineage/pkg/errors"
)

func familyService(t *testing.T, token string) *httptest.Server {
	t.Helper()
	s := sample()
	mux := http.NewServeMux()
	auth := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"msg": "Missing token"}`))
				return
			}
			next(w, r)
		}
	}
	mux.HandleFunc(MembersPath, auth(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(s.Persons)
	}))
	mux.HandleFunc(ExportPath, auth(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(s)
	}))
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func fastOptions(base, token string) HTTPOptions {
	return HTTPOptions{
		BaseURL:  base,
		Token:    token,
		Timeout:  time.Second,
		Attempts: 2,
		Backoff:  time.Millisecond,
	}
}

func TestHTTPFetch(t *testing.T) {
	server := familyService(t, "secret")
	p, err := NewHTTP(fastOptions(server.URL+"/", "secret"))
	if err != nil {
		t.Fatal(err)
	}

	got, err := Fetch(context.Background(), p)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got.Hash() != sample().Hash() {
		t.Errorf("snapshot = %+v, want %+v", got, sample())
	}
	if p.State() != "closed" {
		t.Errorf("breaker state = %s, want closed", p.State())
	}
}

func TestHTTPUnauthorized(t *testing.T) {
	server := familyService(t, "secret")
	p, err := NewHTTP(fastOptions(server.URL, "wrong"))
	if err != nil {
		t.Fatal(err)
	}

	_, err = Fetch(context.Background(), p)
	if !errors.Is(err, errors.ErrCodeDataUnavailable) {
		t.Fatalf("error = %v, want %s", err, errors.ErrCodeDataUnavailable)
	}
	if p.State() != "closed" {
		t.Error("auth failures should not trip the breaker")
	}
}

func TestHTTPBreakerOpens(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	opts := fastOptions(server.URL, "")
	opts.Attempts = 1
	opts.FailureThreshold = 2
	opts.Cooldown = time.Hour
	p, err := NewHTTP(opts)
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	for range 2 {
		if _, err := p.Members(ctx); !errors.Is(err, errors.ErrCodeNetwork) {
			t.Fatalf("error = %v, want %s", err, errors.ErrCodeNetwork)
		}
	}
	if p.State() != "open" {
		t.Fatalf("breaker state = %s, want open", p.State())
	}

	before := calls.Load()
	if _, err := p.Edges(ctx); !errors.Is(err, errors.ErrCodeNetwork) {
		t.Errorf("open breaker error = %v, want %s", err, errors.ErrCodeNetwork)
	}
	if calls.Load() != before {
		t.Error("an open breaker should not reach the service")
	}
}

func TestNewHTTPRejectsBadURL(t *testing.T) {
	for _, url := range []string{"", "ftp://tree.example", "tree.example"} {
		if _, err := NewHTTP(HTTPOptions{BaseURL: url}); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("NewHTTP(%q) error = %v, want %s", url, err, errors.ErrCodeInvalidInput)
		}
	}
}
