// Package health serves the worker's liveness, readiness and metrics endpoints.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// DatabasePinger defines the interface for checking database connectivity.
type DatabasePinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse represents the JSON response for health check endpoints.
type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp,omitempty"`
	Version   string `json:"version,omitempty"`
}

// ReadyResponse represents the JSON response for readiness check endpoints.
type ReadyResponse struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Checks    map[string]string `json:"checks,omitempty"`
	LastCycle string            `json:"last_cycle,omitempty"`
	Duration  string            `json:"duration,omitempty"`
}

// Config holds the configuration for the health server.
type Config struct {
	ServiceName string
	Version     string
	Port        int
	Logger      *logrus.Logger
	DB          DatabasePinger
	// MaxCycleAge marks the worker unready when no cycle has completed
	// within this window. Zero disables the check.
	MaxCycleAge    time.Duration
	MetricsPath    string
	MetricsHandler http.Handler
}

// Server is a lightweight HTTP server for worker health endpoints.
type Server struct {
	cfg    Config
	server *http.Server
	logger *logrus.Entry
	now    func() time.Time

	mu        sync.RWMutex
	ready     bool
	lastCycle time.Time
	lastErr   error
}

// NewServer creates a new health check server.
func NewServer(cfg Config) *Server {
	log := cfg.Logger
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}

	return &Server{
		cfg:    cfg,
		logger: log.WithField("component", "health"),
		now:    time.Now,
	}
}

// SetReady marks the server as ready to accept traffic.
func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

// IsReady returns whether the server is ready.
func (s *Server) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// RecordCycle notes a finished worker cycle and its joined error, if any.
func (s *Server) RecordCycle(finishedAt time.Time, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastCycle = finishedAt
	s.lastErr = err
}

// Handler returns the routes served by the health server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Get("/live", s.handleLive)
	if s.cfg.MetricsHandler != nil {
		r.Handle(s.cfg.MetricsPath, s.cfg.MetricsHandler)
	}
	return r
}

// Start starts the health check server in the background and shuts it down
// when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		s.logger.WithFields(logrus.Fields{
			"port":    s.cfg.Port,
			"service": s.cfg.ServiceName,
		}).Info("Health check server starting")

		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.WithError(err).Error("Health check server error")
		}
	}()

	go func() {
		<-ctx.Done()
		_ = s.Shutdown()
	}()

	return nil
}

// Shutdown gracefully shuts down the health check server.
func (s *Server) Shutdown() error {
	if s.server == nil {
		return nil
	}

	s.logger.Info("Health check server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}

// handleHealth handles the /health endpoint - basic liveness check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Service:   s.cfg.ServiceName,
		Timestamp: s.now().UTC().Format(time.RFC3339),
		Version:   s.cfg.Version,
	})
}

// handleLive handles the /live endpoint - kubernetes liveness probe.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Service: s.cfg.ServiceName})
}

// handleReady checks the ready flag, database connectivity and cycle freshness.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	start := s.now()
	checks := make(map[string]string)
	allHealthy := true

	s.mu.RLock()
	ready, lastCycle, lastErr := s.ready, s.lastCycle, s.lastErr
	s.mu.RUnlock()

	if !ready {
		allHealthy = false
		checks["service"] = "not_ready"
	} else {
		checks["service"] = "ok"
	}

	if s.cfg.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		if err := s.cfg.DB.Ping(ctx); err != nil {
			allHealthy = false
			checks["database"] = fmt.Sprintf("error: %v", err)
		} else {
			checks["database"] = "ok"
		}
	}

	if s.cfg.MaxCycleAge > 0 {
		switch {
		case lastCycle.IsZero():
			checks["cycle"] = "pending"
		case s.now().Sub(lastCycle) > s.cfg.MaxCycleAge:
			allHealthy = false
			checks["cycle"] = "stale"
		case lastErr != nil:
			checks["cycle"] = "degraded"
		default:
			checks["cycle"] = "ok"
		}
	}

	response := ReadyResponse{
		Service:  s.cfg.ServiceName,
		Checks:   checks,
		Duration: s.now().Sub(start).String(),
	}
	if !lastCycle.IsZero() {
		response.LastCycle = lastCycle.UTC().Format(time.RFC3339)
	}

	if allHealthy {
		response.Status = "ok"
		writeJSON(w, http.StatusOK, response)
		return
	}
	response.Status = "not_ready"
	writeJSON(w, http.StatusServiceUnavailable, response)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
