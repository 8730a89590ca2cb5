// Package httpapi serves the dashboard REST API.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/printfleet/internal/logging"
	"github.com/dmitrijs2005/printfleet/internal/server/auth"
	"github.com/dmitrijs2005/printfleet/internal/server/deployment"
	"github.com/dmitrijs2005/printfleet/internal/server/services"
	"github.com/dmitrijs2005/printfleet/internal/server/storage"
)

// StorageStatus reports backend reachability.
type StorageStatus interface {
	Status(ctx context.Context) storage.Status
}

// DriveAuthorizer runs the Drive OAuth consent flow.
type DriveAuthorizer interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) error
}

// Deps are the services behind the API. Drive may be nil when the Drive
// backend is not configured.
type Deps struct {
	Auth     *auth.Service
	Printers *services.PrinterService
	Firmware *services.FirmwareService
	History  *services.HistoryService
	Engine   *deployment.Engine
	Storage  StorageStatus
	Drive    DriveAuthorizer
}

type Options struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	CORSOrigin   string
	// MaxBodyBytes bounds every request body; uploads need the most.
	MaxBodyBytes int64
}

func DefaultOptions() Options {
	return Options{
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
		MaxBodyBytes: 1 << 20,
	}
}

type Server struct {
	deps       Deps
	opts       Options
	logger     logging.Logger
	mux        *http.ServeMux
	httpServer *http.Server
	now        func() time.Time
}

func NewServer(deps Deps, opts Options, l logging.Logger) *Server {
	s := &Server{
		deps:   deps,
		opts:   opts,
		logger: l.With("module", "httpapi"),
		mux:    http.NewServeMux(),
		now:    time.Now,
	}
	s.registerRoutes()
	s.httpServer = &http.Server{
		Handler:      s.applyMiddleware(s.mux),
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		IdleTimeout:  opts.IdleTimeout,
	}
	return s
}

// Handler returns the root handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	s.httpServer.Addr = addr
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "http server listening", "addr", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info(ctx, "http server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
