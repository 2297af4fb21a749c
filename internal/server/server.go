package server

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/muselabs/muselog/internal/ingest"
	"github.com/muselabs/muselog/internal/storage"
)

// Server is the muselog HTTP server: event ingestion plus the labeling
// API and its embedded single-page UI.
type Server struct {
	httpServer *http.Server
	handler    http.Handler
	logger     *slog.Logger
}

// ServerConfig holds all dependencies and configuration for creating a
// Server. UIFS is optional; nil disables the labeling page.
type ServerConfig struct {
	Store    *storage.Store
	Pipeline *ingest.Pipeline
	Logger   *slog.Logger

	Port                int
	ReadTimeout         time.Duration
	WriteTimeout        time.Duration
	Version             string
	MaxRequestBodyBytes int64

	UIFS fs.FS
}

// New creates a new HTTP server with all routes configured.
func New(cfg ServerConfig) *Server {
	h := NewHandlers(HandlersDeps{
		Store:               cfg.Store,
		Pipeline:            cfg.Pipeline,
		Logger:              cfg.Logger,
		Version:             cfg.Version,
		MaxRequestBodyBytes: cfg.MaxRequestBodyBytes,
	})

	mux := http.NewServeMux()

	// Ingestion.
	mux.HandleFunc("POST /log", h.HandleLogEvent)
	mux.HandleFunc("POST /ingest", h.HandleIngestBatch)

	// Labeling workflow.
	mux.HandleFunc("GET /api/next", h.HandleNext)
	mux.HandleFunc("POST /api/label", h.HandleLabel)

	// Canned reports.
	mux.HandleFunc("GET /api/reports/{name}", h.HandleReport)

	mux.HandleFunc("GET /health", h.HandleHealth)

	// Labeling page at the root. Registered last so API routes win via
	// the mux's longest-match rule.
	if cfg.UIFS != nil {
		mux.Handle("/", http.FileServerFS(cfg.UIFS))
		cfg.Logger.Info("labeling ui enabled at /")
	}

	// Middleware chain (outermost executes first):
	// request ID → tracing → logging → recovery → handler.
	var handler http.Handler = mux
	handler = recoveryMiddleware(cfg.Logger, handler)
	handler = loggingMiddleware(cfg.Logger, handler)
	handler = tracingMiddleware(handler)
	handler = requestIDMiddleware(handler)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		handler: handler,
		logger:  cfg.Logger,
	}
}

// Handler returns the root HTTP handler for use in tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins serving. Blocks until the listener fails or Shutdown is
// called; returns nil after a clean shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
