// Package server implements `localitree serve`: an HTTP front end that
// renders the configured source on every request.
//
// Each request runs its own pipeline, so edits to the upstream document show
// up on reload. Fetched documents go through the loader's cache, which may be
// shared across replicas with Redis.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/localitree/pkg/loader"
	"github.com/matzehuels/localitree/pkg/pipeline"
)

const (
	// RenderIDHeader carries a unique ID for every response.
	RenderIDHeader = "X-Render-ID"

	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// Options configures a [Server].
type Options struct {
	// Defaults are the pipeline options every request starts from.
	// Defaults.Source is the tree that is served.
	Defaults pipeline.Options
	// Loader fetches the source. Nil uses an uncached loader.
	Loader *loader.Loader
	// Logger receives request logs. Nil discards them.
	Logger *log.Logger
	// Metrics collects Prometheus metrics. Nil creates a new set.
	Metrics *Metrics
}

// Server serves rendered trees over HTTP.
type Server struct {
	defaults pipeline.Options
	runner   *pipeline.Runner
	loader   *loader.Loader
	logger   *log.Logger
	metrics  *Metrics
	router   chi.Router
}

// New builds the router. It does not start listening.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	l := opts.Loader
	if l == nil {
		l = loader.New(loader.Options{Logger: logger})
	}
	m := opts.Metrics
	if m == nil {
		m = NewMetrics()
	}

	s := &Server{
		defaults: opts.Defaults,
		runner:   pipeline.NewRunner(l, logger),
		loader:   l,
		logger:   logger,
		metrics:  m,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(renderID)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleRender(pipeline.FormatHTML))
	r.Get("/tree.svg", s.handleRender(pipeline.FormatSVG))
	r.Get("/tree.png", s.handleRender(pipeline.FormatPNG))
	r.Get("/tree.dot", s.handleRender(pipeline.FormatDOT))
	r.Get("/layout.json", s.handleRender(pipeline.FormatJSON))
	r.Get("/locality.json", s.handleSource)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}))
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", addr, "source", s.defaults.Source)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
