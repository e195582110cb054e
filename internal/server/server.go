// Package server exposes detection and mission breakdown over HTTP next to
// Kubernetes-style health probes and a Prometheus endpoint.
//
// Shutdown is graceful: readiness fails first, keep-alives are disabled,
// then in-flight requests drain for up to ShutdownTimeout.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ordinex/ordinex/internal/health"
	"github.com/ordinex/ordinex/internal/log"
	"github.com/ordinex/ordinex/internal/metrics"
	"github.com/ordinex/ordinex/internal/pipeline"
)

// Server is the Ordinex HTTP API
type Server struct {
	httpServer      *http.Server
	probeManager    *health.ProbeManager
	pipeline        *pipeline.Pipeline
	metrics         *metrics.Metrics
	logger          *log.Logger
	inShutdown      atomic.Bool
	shutdownTimeout time.Duration
}

// Config holds server configuration. Zero timeouts select defaults.
type Config struct {
	// Address is the listen address (e.g. ":8080", "127.0.0.1:8080")
	Address         string
	ShutdownTimeout time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
}

// Deps are the collaborators a Server serves
type Deps struct {
	Probes   *health.ProbeManager
	Pipeline *pipeline.Pipeline

	// Gatherer backs /metrics; nil disables the endpoint
	Gatherer prometheus.Gatherer
	Metrics  *metrics.Metrics
	Logger   *log.Logger
}

// NewServer wires the API, probe and metrics routes
func NewServer(deps Deps, cfg Config) *Server {
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 60 * time.Second
	}

	logger := deps.Logger
	if logger == nil {
		logger = log.Global()
	}

	s := &Server{
		probeManager:    deps.Probes,
		pipeline:        deps.Pipeline,
		metrics:         deps.Metrics,
		logger:          logger,
		shutdownTimeout: cfg.ShutdownTimeout,
	}

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.routes(deps.Gatherer),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

func (s *Server) routes(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()

	s.handle(mux, "/v1/plans/detect", s.handleDetect)
	s.handle(mux, "/v1/plans/breakdown", s.handleBreakdown)
	s.handle(mux, "/v1/breakdowns/{id}", s.handleGetBreakdown)
	s.handle(mux, "/v1/plans/{planId}/breakdowns", s.handleHistory)

	mux.HandleFunc("/health/live", s.handleLiveness)
	mux.HandleFunc("/health/ready", s.handleReadiness)
	mux.HandleFunc("/health/startup", s.handleStartup)
	mux.HandleFunc("/healthz", s.handleReadiness)

	if gatherer != nil {
		mux.Handle("/metrics", metrics.HandlerFor(gatherer))
	}

	s.handle(mux, "/", s.handleNotFound)

	return chain(mux,
		recoverPanics(s.logger),
		logRequests(s.logger),
		withRequestID,
	)
}

// handle registers h under pattern with per-route metrics
func (s *Server) handle(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.Handle(pattern, instrument(s.metrics, pattern, h))
}

// Handler returns the root handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start listens on the configured address and serves until shutdown.
// It returns http.ErrServerClosed after a graceful shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ln)
}

// Serve serves on ln and marks the process initialized
func (s *Server) Serve(ln net.Listener) error {
	s.probeManager.MarkInitialized()
	s.logger.Info("server listening", "address", ln.Addr().String())
	return s.httpServer.Serve(ln)
}

// Shutdown fails readiness, stops keep-alives and drains connections
func (s *Server) Shutdown(ctx context.Context) error {
	s.inShutdown.Store(true)
	s.probeManager.MarkShutdown()
	s.httpServer.SetKeepAlivesEnabled(false)

	shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()

	return s.httpServer.Shutdown(shutdownCtx)
}

// IsShuttingDown reports whether Shutdown has been called
func (s *Server) IsShuttingDown() bool {
	return s.inShutdown.Load()
}

func (s *Server) writeProbeResponse(w http.ResponseWriter, result *health.ProbeResult, unhealthyStatus int) {
	status := http.StatusOK
	if result.Status == health.StatusUnhealthy {
		status = unhealthyStatus
	}
	writeJSON(w, status, result)
}

// GET /health/live. Always 200, degraded while shutting down.
func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	s.writeProbeResponse(w, s.probeManager.CheckLiveness(r.Context()), http.StatusOK)
}

// GET /health/ready. 503 while shutting down or when a dependency fails.
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	s.writeProbeResponse(w, s.probeManager.CheckReadiness(r.Context()), http.StatusServiceUnavailable)
}

// GET /health/startup. 503 until the listener is up.
func (s *Server) handleStartup(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	s.writeProbeResponse(w, s.probeManager.CheckStartup(r.Context()), http.StatusServiceUnavailable)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
