// Package server exposes the project store and the export pipeline over
// HTTP.
//
// Routes:
//
//	GET    /healthz
//	GET    /api/catalog/{layouts,devices,sizes,gradients}
//	GET    /api/projects
//	POST   /api/projects
//	GET    /api/projects/{id}
//	PATCH  /api/projects/{id}
//	DELETE /api/projects/{id}
//	POST   /api/projects/{id}/duplicate
//	POST   /api/projects/{id}/select
//	GET    /api/projects/{id}/composition
//	GET    /api/projects/{id}/export
//	POST   /api/export
//	GET    /preview/{id}
//
// Errors are JSON objects {"code": ..., "message": ...} whose HTTP status
// follows the error code. The preview page renders the composition into
// an element with id "composition" so a live capturer can screenshot it.
package server

import (
	"context"
	stderrors "errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/storeshots/pkg/pipeline"
	"github.com/matzehuels/storeshots/pkg/project"
)

// DefaultMaxBodyBytes bounds JSON request bodies. Projects embed images as
// data URIs, so the limit is generous.
const DefaultMaxBodyBytes = 32 << 20

// Server serves one project store.
type Server struct {
	Store  *project.Store
	Runner *pipeline.Runner
	Logger *log.Logger

	// Backend persists the store after every mutation. Nil keeps the
	// store in memory only.
	Backend project.Backend

	// Defaults fill export options a request leaves unset.
	Defaults pipeline.Options

	MaxBodyBytes int64

	// AllowLocalImages lets clients point projects at files on the server.
	// Off by default: requests may only embed images as data: URIs.
	AllowLocalImages bool

	// Now returns the time used for archive names. Nil means time.Now.
	Now func() time.Time
}

// New creates a server. A nil logger discards output.
func New(store *project.Store, backend project.Backend, runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Server{
		Store:        store,
		Runner:       runner,
		Logger:       logger,
		Backend:      backend,
		MaxBodyBytes: DefaultMaxBodyBytes,
	}
}

// Handler returns the router with middleware installed.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.accessLog)
	r.Use(s.recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/preview/{id}", s.handlePreview)

	r.Route("/api", func(r chi.Router) {
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/layouts", s.handleLayouts)
			r.Get("/devices", s.handleDevices)
			r.Get("/sizes", s.handleSizes)
			r.Get("/gradients", s.handleGradients)
		})

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", s.handleListProjects)
			r.Post("/", s.handleCreateProject)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetProject)
				r.Patch("/", s.handleUpdateProject)
				r.Delete("/", s.handleDeleteProject)
				r.Post("/duplicate", s.handleDuplicateProject)
				r.Post("/select", s.handleSelectProject)
				r.Get("/composition", s.handleComposition)
				r.Get("/export", s.handleExport)
			})
		})

		r.Post("/export", s.handleBatchExport)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, errNotFound("no route for %s %s", r.Method, r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", r.Method+" not allowed on "+r.URL.Path)
	})
	return r
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully within shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.Logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.Logger.Info("shutting down", "timeout", shutdownTimeout)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// persist saves the store when a backend is configured.
func (s *Server) persist(ctx context.Context) error {
	if s.Backend == nil {
		return nil
	}
	return s.Store.Save(ctx, s.Backend)
}

func (s *Server) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
