// Package api serves the read-only query API over the latest odds snapshots.
package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/arb-scanner/internal/metrics"
	"github.com/yourusername/arb-scanner/internal/pricing"
	"github.com/yourusername/arb-scanner/internal/repository"
)

// Pinger checks database connectivity
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds the server's collaborators
type Config struct {
	Port        int
	Prices      repository.PriceRepository
	DB          Pinger
	Sports      []string
	ScanOptions pricing.Options
	CacheTTL    time.Duration
	CORSOrigins []string
	Hub         *Hub
	Logger      *logrus.Logger
}

// Server is the HTTP query API
type Server struct {
	prices   repository.PriceRepository
	db       Pinger
	sports   []string
	scanOpts pricing.Options
	cache    *cache.Cache
	hub      *Hub
	logger   *logrus.Entry
	router   chi.Router
	server   *http.Server
	port     int
}

// NewServer creates the API server and its routes
func NewServer(cfg Config) *Server {
	log := cfg.Logger
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	s := &Server{
		prices:   cfg.Prices,
		db:       cfg.DB,
		sports:   append([]string(nil), cfg.Sports...),
		scanOpts: cfg.ScanOptions,
		cache:    cache.New(ttl, 2*ttl),
		hub:      cfg.Hub,
		logger:   log.WithField("component", "api"),
		port:     cfg.Port,
	}
	s.router = s.routes(cfg.CORSOrigins)
	return s
}

func (s *Server) routes(origins []string) chi.Router {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/odds/latest", s.handleOddsLatest)
	r.Get("/arbs/latest", s.handleArbsLatest)
	r.Handle("/metrics", metrics.Handler())
	if s.hub != nil {
		r.Get("/ws/arbs", s.hub.HandleWS)
	}

	return r
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("port", s.port).Info("API server starting")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("API server shutting down")
	return s.server.Shutdown(shutdownCtx)
}

// requestLogger logs each request with its status and latency
func requestLogger(log *logrus.Entry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.WithFields(logrus.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      ww.Status(),
				"duration_ms": time.Since(start).Milliseconds(),
				"request_id":  chimiddleware.GetReqID(r.Context()),
			}).Debug("Request handled")
		})
	}
}
