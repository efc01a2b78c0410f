package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/birdflu-tracker/internal/dataset"
	"github.com/couchcryptid/birdflu-tracker/internal/domain"
	"github.com/couchcryptid/birdflu-tracker/internal/present"
)

// ResultSource is the part of the pipeline the HTTP surface reads from.
type ResultSource interface {
	sharedobs.ReadinessChecker
	Latest() *domain.Result
	LastError() error
	Refresh(ctx context.Context) (*domain.Result, error)
}

const loadingMessage = "The map is still loading. Please refresh in a moment."

// Server exposes the dashboard, the JSON API, and health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	source     ResultSource
	renderer   *present.Renderer
	logger     *slog.Logger
}

// NewServer creates the HTTP server and its routes. CORS applies to /api/* only.
func NewServer(addr string, source ResultSource, renderer *present.Renderer, allowedOrigins []string, logger *slog.Logger) *Server {
	r := chi.NewRouter()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		source:   source,
		renderer: renderer,
		logger:   logger,
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleDashboard)
	r.Get("/healthz", sharedobs.LivenessHandler())
	r.Get("/readyz", sharedobs.ReadinessHandler(source))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
		r.Get("/points", s.handlePoints)
		r.Get("/clusters", s.handleClusters)
		r.Get("/stats", s.handleStats)
		r.Get("/missing", s.handleMissing)
		r.Get("/states", s.handleStates)
		r.Post("/refresh", s.handleRefresh)
	})

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	status := http.StatusOK

	result := s.source.Latest()
	var err error
	if result == nil {
		status = http.StatusServiceUnavailable
		msg := loadingMessage
		if lastErr := s.source.LastError(); lastErr != nil {
			msg = present.UserMessage(lastErr)
		}
		err = s.renderer.RenderError(&buf, msg)
	} else {
		err = s.renderer.RenderDashboard(&buf, result)
	}
	if err != nil {
		s.logger.Error("render dashboard failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handlePoints(w http.ResponseWriter, _ *http.Request) {
	result, ok := s.latestOrUnavailable(w)
	if !ok {
		return
	}
	data, err := present.MarshalPoints(result.Records)
	if err != nil {
		s.logger.Error("encode points failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	_, _ = w.Write(data)
}

func (s *Server) handleClusters(w http.ResponseWriter, r *http.Request) {
	zoom := present.InitialZoom
	if v := r.URL.Query().Get("zoom"); v != "" {
		z, err := strconv.Atoi(v)
		if err != nil || z < 0 || z > present.MaxZoom {
			writeError(w, http.StatusBadRequest, "zoom must be an integer between 0 and 18")
			return
		}
		zoom = z
	}
	result, ok := s.latestOrUnavailable(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"zoom":      zoom,
		"precision": present.PrecisionForZoom(zoom),
		"clusters":  present.Clusters(result.Records, zoom),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	result, ok := s.latestOrUnavailable(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, result.Stats)
}

func (s *Server) handleMissing(w http.ResponseWriter, _ *http.Request) {
	result, ok := s.latestOrUnavailable(w)
	if !ok {
		return
	}
	missing := result.Missing
	if missing == nil {
		missing = []domain.MissingKey{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"unmatched_cases": result.UnmatchedCases(),
		"missing":         missing,
	})
}

func (s *Server) handleStates(w http.ResponseWriter, _ *http.Request) {
	result, ok := s.latestOrUnavailable(w)
	if !ok {
		return
	}
	states := result.States
	if states == nil {
		states = []domain.StateSummary{}
	}
	writeJSON(w, http.StatusOK, states)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	result, err := s.source.Refresh(r.Context())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, dataset.ErrDatasetNotFound) {
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, present.UserMessage(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"run_id":       result.RunID,
		"fingerprint":  result.Fingerprint,
		"generated_at": result.GeneratedAt,
		"stats":        result.Stats,
	})
}

// latestOrUnavailable writes a 503 and returns false when no result exists yet.
func (s *Server) latestOrUnavailable(w http.ResponseWriter) (*domain.Result, bool) {
	if result := s.source.Latest(); result != nil {
		return result, true
	}
	msg := loadingMessage
	if err := s.source.LastError(); err != nil {
		msg = present.UserMessage(err)
	}
	writeError(w, http.StatusServiceUnavailable, msg)
	return nil, false
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response body
}
