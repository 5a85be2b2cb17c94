// Package server serves diagrams over HTTP.
//
// # Routes
//
//	GET  /healthz             liveness and build info
//	GET  /icons               icon catalog
//	GET  /diagram             built-in diagram definition (?encoding=json|yaml|toml)
//	GET  /diagram.{format}    built-in diagram rendered (png, svg, jpg, pdf, dot, json)
//	POST /render?format=svg   render the definition in the request body
//
// POST bodies are JSON, YAML or TOML according to Content-Type. Errors are
// JSON objects {"code": ..., "message": ...} with the status taken from the
// error code.
//
// Every response carries an X-Request-ID header; an incoming one is kept.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/archdiagram/pkg/diagram"
	"github.com/matzehuels/archdiagram/pkg/pipeline"
)

const (
	// DefaultAddr is the listen address used when Config.Addr is empty.
	DefaultAddr = ":8080"

	// DefaultMaxBodyBytes bounds POST /render bodies.
	DefaultMaxBodyBytes = 1 << 20

	// DefaultRenderTimeout bounds a single render.
	DefaultRenderTimeout = 30 * time.Second
)

// Config configures a Server.
type Config struct {
	Addr string

	// Runner renders diagrams. Required.
	Runner *pipeline.Runner
	// Logger receives one line per request.
	Logger *log.Logger
	// Diagram builds the diagram served under /diagram. Required.
	Diagram func() (*diagram.Diagram, error)

	// Engine and Images apply to every render.
	Engine string
	Images bool
	// BaseDir resolves icon image paths.
	BaseDir string

	MaxBodyBytes  int64
	RenderTimeout time.Duration
}

// Server is the HTTP front end for the render pipeline.
type Server struct {
	cfg    Config
	router chi.Router
}

// New builds a server and its routes.
func New(cfg Config) (*Server, error) {
	if cfg.Runner == nil {
		return nil, errors.New("server: runner is required")
	}
	if cfg.Diagram == nil {
		return nil, errors.New("server: diagram source is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Engine == "" {
		cfg.Engine = pipeline.DefaultEngine
	}
	if err := pipeline.ValidateEngine(cfg.Engine); err != nil {
		return nil, err
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.RenderTimeout <= 0 {
		cfg.RenderTimeout = DefaultRenderTimeout
	}

	s := &Server{cfg: cfg}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(s.loggingMiddleware)

	r.Get("/healthz", s.healthz)
	r.Get("/icons", s.icons)
	r.Get("/diagram", s.definition)
	r.Get("/diagram.{format}", s.renderBuiltin)
	r.Post("/render", s.renderBody)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, notFound(r.URL.Path))
	})
	return r
}

// Handler returns the server's http.Handler.
func (s *Server) Handler() http.Handler { return s.router }

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.cfg.Addr }

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.cfg.Logger.Info("listening", "addr", s.cfg.Addr, "engine", s.cfg.Engine)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.cfg.Logger.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	}
}
