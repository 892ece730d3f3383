// Package server exposes report generation over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"hosereport/internal/logging"
	"hosereport/internal/metrics"
	"hosereport/internal/report"
	"hosereport/internal/store"
)

// History is the export history the server records into and lists from.
type History interface {
	Record(ctx context.Context, e *store.Export) error
	List(ctx context.Context, limit int) ([]store.Export, error)
	Get(ctx context.Context, id string) (*store.Export, error)
}

// Config holds HTTP server settings.
type Config struct {
	Addr                 string
	MaxConcurrentExports int64
	ReadTimeout          time.Duration
	WriteTimeout         time.Duration
	MaxBodyBytes         int64
}

func (c Config) withDefaults() Config {
	if c.Addr == "" {
		c.Addr = ":8085"
	}
	if c.MaxConcurrentExports <= 0 {
		c.MaxConcurrentExports = 2
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = 8 << 20
	}
	return c
}

// Server serves the report API.
type Server struct {
	cfg     Config
	gen     *report.Generator
	history History // optional
	metrics *metrics.Metrics
	exports *semaphore.Weighted
	router  chi.Router
}

// New wires the routes. history and m may be nil.
func New(cfg Config, gen *report.Generator, history History, m *metrics.Metrics) *Server {
	cfg = cfg.withDefaults()
	s := &Server{
		cfg:     cfg,
		gen:     gen,
		history: history,
		metrics: m,
		exports: semaphore.NewWeighted(cfg.MaxConcurrentExports),
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("ok")); err != nil {
			logging.ServerWarn("write error: %v", err)
		}
	})
	if m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}
	r.Route("/api/reports", func(r chi.Router) {
		r.Post("/", s.handleCreateReport)
		r.Get("/", s.handleListReports)
		r.Get("/{id}", s.handleGetReport)
	})

	s.router = r
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logging.Server("listening on %s", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logging.Server("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
