// Package api - Thin, deterministic API layer
// The API is ONLY responsible for: input ingestion, engine invocation, output serialization.
// The API NEVER performs cost logic.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"landed-cost/core/input"
	"landed-cost/internal/logging"
)

// Options are the settings a server can change at runtime
type Options struct {
	// Defaults fill values a shipment omits
	Defaults input.Defaults

	// Currency labels amounts in responses
	Currency string

	// Locale is echoed in response metadata
	Locale string

	// MaxBodyBytes caps request bodies
	MaxBodyBytes int64
}

// Server is the API server
type Server struct {
	router   chi.Router
	version  string
	registry *prometheus.Registry
	metrics  *Metrics
	options  atomic.Pointer[Options]
}

// NewServer creates a new API server. When exposeMetrics is false the
// metrics are still collected but GET /metrics is not routed.
func NewServer(version string, opts Options, exposeMetrics bool) *Server {
	registry := prometheus.NewRegistry()
	s := &Server{
		router:   chi.NewRouter(),
		version:  version,
		registry: registry,
		metrics:  NewMetrics(registry),
	}
	s.SetOptions(opts)
	s.registerRoutes(exposeMetrics)
	return s
}

// SetOptions replaces the runtime options; safe to call while serving
func (s *Server) SetOptions(opts Options) {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	s.options.Store(&opts)
}

// Options returns the current runtime options
func (s *Server) Options() Options {
	return *s.options.Load()
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes(exposeMetrics bool) {
	r := s.router
	r.Use(middleware.RealIP)
	r.Use(requestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	// Core endpoints
	r.Post("/evaluate", s.handleEvaluate)
	r.Post("/evaluate/form", s.handleEvaluateForm)
	r.Get("/formulas", s.handleFormulas)

	// Supporting endpoints
	r.Get("/health", s.handleHealth)
	r.Get("/version", s.handleVersion)
	if exposeMetrics {
		r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"status":  "healthy",
		"version": s.version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

// handleVersion handles GET /version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{
		"version":     s.version,
		"engine":      "landed-cost",
		"api_version": "v1",
	}, http.StatusOK)
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, body ErrorBody) {
	body.RequestID = RequestIDFrom(r.Context())
	s.writeJSON(w, ErrorResponse{Error: body}, status)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type requestIDKey struct{}

// HeaderRequestID carries the request ID in both directions
const HeaderRequestID = "X-Request-ID"

// requestID reuses a caller-supplied ID or assigns a new UUID
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFrom returns the request ID stored in ctx
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logging.Debug("request",
			zap.String("request_id", RequestIDFrom(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
