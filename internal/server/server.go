// Package server exposes the layout pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz              liveness and build version
//	GET  /api/v1/layout        layout JSON for the configured provider
//	POST /api/v1/layout        layout JSON for the snapshot in the body
//	GET  /api/v1/tree.svg      rendered tree for the configured provider
//	POST /api/v1/tree.svg      rendered tree for the snapshot in the body
//	GET  /api/v1/graph.dot     node-link DOT export (also POST)
//	GET  /metrics              Prometheus metrics
//
// Layout and render options are taken from the query string (node_width,
// viewport_width, disjoint, legend, title, root, depth, refresh, ...). A
// zero size or margin selects the default.
// Errors are returned as {"code": ..., "message": ...} with a status
// derived from the error code.
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/lineage/pkg/pipeline"
)

// DefaultMaxBodyBytes caps POSTed snapshots.
const DefaultMaxBodyBytes = 8 << 20

// Options configures a Server.
type Options struct {
	// Runner executes requests. Its provider serves the GET routes; without
	// one only POST routes work.
	Runner *pipeline.Runner
	Logger *log.Logger
	// Gatherer backs /metrics. Nil disables the route.
	Gatherer prometheus.Gatherer
	// Defaults are the pipeline options query parameters are applied to.
	Defaults pipeline.Options
	// AllowedOrigins enables CORS for browser clients.
	AllowedOrigins []string
	MaxBodyBytes   int64
}

// Server is the HTTP API.
type Server struct {
	runner   *pipeline.Runner
	logger   *log.Logger
	gatherer prometheus.Gatherer
	defaults pipeline.Options
	origins  []string
	maxBody  int64
}

// New creates a server. A nil runner gets a provider-less runner with
// caching disabled.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Runner == nil {
		opts.Runner = pipeline.NewRunner(nil, nil, nil, opts.Logger)
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return &Server{
		runner:   opts.Runner,
		logger:   opts.Logger,
		gatherer: opts.Gatherer,
		defaults: opts.Defaults,
		origins:  opts.AllowedOrigins,
		maxBody:  opts.MaxBodyBytes,
	}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.logRequests)
	r.Use(chimiddleware.Recoverer)
	if len(s.origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.origins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
			ExposedHeaders: []string{RequestIDHeader},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", s.health)
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/layout", s.artifact(pipeline.FormatJSON, false))
		r.Post("/layout", s.artifact(pipeline.FormatJSON, true))
		r.Get("/tree.svg", s.artifact(pipeline.FormatSVG, false))
		r.Post("/tree.svg", s.artifact(pipeline.FormatSVG, true))
		r.Get("/tree.txt", s.artifact(pipeline.FormatText, false))
		r.Post("/tree.txt", s.artifact(pipeline.FormatText, true))
		r.Get("/graph.dot", s.artifact(pipeline.FormatDOT, false))
		r.Post("/graph.dot", s.artifact(pipeline.FormatDOT, true))
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
