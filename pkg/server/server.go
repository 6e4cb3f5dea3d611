// Package server exposes the resolution engine over HTTP.
//
// Synchronous endpoints take a hierarchy dump in the request body and
// answer with the analysis. Job endpoints submit the same analyses to the
// engine's tracker; progress and completion stream as server-sent events.
package server

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/devicelab-dev/element-resolver/pkg/logger"
	"github.com/devicelab-dev/element-resolver/pkg/resolver"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Server routes HTTP requests to an Engine.
type Server struct {
	engine  *resolver.Engine
	router  *chi.Mux
	maxBody int64

	// jobs outlive the request that submitted them
	jobCtx    context.Context
	cancelJob context.CancelFunc
}

// New creates a Server for engine.
func New(engine *resolver.Engine) *Server {
	jobCtx, cancel := context.WithCancel(context.Background())
	s := &Server{
		engine:    engine,
		router:    chi.NewRouter(),
		maxBody:   engine.Config().Server.MaxBodyBytes,
		jobCtx:    jobCtx,
		cancelJob: cancel,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/layers", s.handleLayers)
		r.Post("/hit-test", s.handleHitTest)
		r.Post("/match-text", s.handleMatchText)
		r.Post("/fingerprints", s.handleCapture)
		r.Post("/relocate", s.handleRelocate)
		r.Post("/children", s.handleChildren)

		r.Get("/jobs", s.handleListJobs)
		r.Post("/jobs", s.handleSubmit)
		r.Get("/jobs/{id}", s.handleJobStatus)
		r.Get("/jobs/{id}/events", s.handleJobEvents)
	})
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe listens on addr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then cancels running
// jobs and shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
		ErrorLog:          log.New(logger.GetWriter(), "[HTTP] ", log.Ltime|log.Lmicroseconds),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	logger.Info("server listening on %s", ln.Addr())

	select {
	case err := <-errCh:
		s.cancelJob()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("server shutting down")
	s.cancelJob()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logger.Info("%s %s %d %s [%s]", r.Method, r.URL.Path, ww.Status(), time.Since(start), middleware.GetReqID(r.Context()))
	})
}
