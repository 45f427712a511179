// Package server exposes validation, graph conversion and path search over HTTP.
package server

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mcncl/jsongraph/internal/errors"
	"github.com/mcncl/jsongraph/internal/graph"
)

// shutdownTimeout bounds how long in-flight requests may run after the server is asked to stop.
const shutdownTimeout = 5 * time.Second

// Options configure a Server. LinesBefore and LinesAfter size the context
// excerpt of diagnostics; zero shows only the offending line.
type Options struct {
	MaxBodyBytes int64
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Layout       graph.Layout
	LinesBefore  int
	LinesAfter   int
}

// Server serves the HTTP API. Every request converts with its own pass, so
// handlers share no mutable state.
type Server struct {
	logger      *log.Logger
	opts        Options
	transformer *graph.Transformer
}

// New creates a Server.
func New(logger *log.Logger, opts Options) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	if opts.Layout.HorizontalSpacing <= 0 || opts.Layout.VerticalSpacing <= 0 {
		opts.Layout = graph.DefaultLayout
	}
	return &Server{
		logger:      logger.WithPrefix("server"),
		opts:        opts,
		transformer: graph.NewTransformerWithLayout(opts.Layout),
	}
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(s.limitBody)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/validate", s.handleValidate)
		r.Post("/graph", s.handleGraph)
		r.Post("/search", s.handleSearch)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.NewServerError("failed to listen on "+addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadTimeout:       s.opts.ReadTimeout,
		ReadHeaderTimeout: s.opts.ReadTimeout,
		WriteTimeout:      s.opts.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()
	s.logger.Info("Listening", "addr", listener.Addr().String())

	select {
	case err := <-errCh:
		if err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return errors.NewServerError("server stopped", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.NewServerError("shutdown failed", err)
	}
	if err := <-errCh; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return errors.NewServerError("server stopped", err)
	}
	return nil
}
