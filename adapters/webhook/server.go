// Package webhook exposes the certificate sync trigger over HTTP.
package webhook

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/kompox/nbcertsync/domain"
	"github.com/kompox/nbcertsync/domain/model"
	"github.com/kompox/nbcertsync/internal/logging"
	"github.com/kompox/nbcertsync/internal/metrics"
)

const (
	DefaultPath           = "/update-nodebalancer-cert"
	DefaultAddr           = ":8080"
	DefaultHealthTimeout  = 5 * time.Second
	DefaultShutdownPeriod = 30 * time.Second

	maxBodyBytes = 256 << 10
)

// Syncer runs one sync for a trigger. *certsync.UseCase satisfies it.
type Syncer interface {
	Sync(ctx context.Context, req model.TriggerRequest) *model.SyncResult
}

// Options configures the HTTP surface.
type Options struct {
	Addr           string
	Path           string
	HealthTimeout  time.Duration
	ShutdownPeriod time.Duration
	Checkers       []domain.HealthChecker
	Metrics        *metrics.Recorder
}

// Server serves the trigger endpoint plus health and metrics routes.
type Server struct {
	syncer  Syncer
	opts    Options
	logger  logging.Logger
	handler http.Handler
}

// New builds a Server. Zero option fields take their defaults.
func New(syncer Syncer, logger logging.Logger, opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	if opts.Path == "" {
		opts.Path = DefaultPath
	}
	if opts.HealthTimeout <= 0 {
		opts.HealthTimeout = DefaultHealthTimeout
	}
	if opts.ShutdownPeriod <= 0 {
		opts.ShutdownPeriod = DefaultShutdownPeriod
	}
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Server{syncer: syncer, opts: opts, logger: logger}
	s.handler = s.routes()
	return s
}

// Handler returns the routed handler with access logging applied.
func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc(s.opts.Path, s.handleTrigger).Methods(http.MethodPost).Name("trigger")
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet).Name("health")
	r.HandleFunc("/health/deep", s.handleDeepHealth).Methods(http.MethodGet).Name("health_deep")
	r.Handle("/metrics", s.opts.Metrics.Handler()).Methods(http.MethodGet).Name("metrics")
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, response{Status: "error", Message: "not found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, response{Status: "error", Message: "method not allowed"})
	})
	return s.accessLog(r)
}

// ListenAndServe serves until ctx is cancelled, then drains in-flight
// requests for up to ShutdownPeriod.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       75 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return logging.WithLogger(context.Background(), s.logger) },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "webhook listening", "addr", s.opts.Addr, "path", s.opts.Path)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "shutting down webhook", "grace", s.opts.ShutdownPeriod.String())
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.ShutdownPeriod)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
