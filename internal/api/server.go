// Package api exposes the HTTP interface for the page analysis service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"pagewatch/internal/checker"
	"pagewatch/internal/config"
	"pagewatch/internal/seo"
)

// Server wires HTTP handlers to the checker and store.
type Server struct {
	router  chi.Router
	store   seo.Store
	checker *checker.Checker
	logger  *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(store seo.Store, chk *checker.Checker, cfg config.Config, logger *zap.Logger) *Server {
	s := &Server{
		store:   store,
		checker: chk,
		logger:  logger,
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(timeoutMiddleware(requestTimeout(cfg)))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Route("/urls", func(r chi.Router) {
			r.Post("/", s.registerURL)
			r.Get("/", s.listURLs)
			r.Route("/{url_id}", func(r chi.Router) {
				r.Get("/", s.getURL)
				r.Post("/checks", s.runCheck)
			})
		})
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "store unreachable")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type registerURLRequest struct {
	URL string `json:"url"`
}

func (s *Server) registerURL(w http.ResponseWriter, r *http.Request) {
	var req registerURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		s.writeError(w, http.StatusBadRequest, "missing url")
		return
	}
	rec, created, err := s.checker.RegisterURL(r.Context(), req.URL)
	if err != nil {
		if errors.Is(err, seo.ErrInvalidURL) {
			s.writeError(w, http.StatusBadRequest, "invalid url")
			return
		}
		s.writeError(w, http.StatusInternalServerError, "failed to register url")
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	s.writeJSON(w, status, map[string]any{"url": rec, "created": created})
}

func (s *Server) listURLs(w http.ResponseWriter, r *http.Request) {
	urls, err := s.store.ListURLs(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to list urls")
		return
	}
	if urls == nil {
		urls = []seo.URL{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"urls": urls})
}

func (s *Server) getURL(w http.ResponseWriter, r *http.Request) {
	id, ok := s.urlID(w, r)
	if !ok {
		return
	}
	rec, err := s.store.GetURL(r.Context(), id)
	if err != nil {
		if errors.Is(err, seo.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "url not found")
			return
		}
		s.writeError(w, http.StatusInternalServerError, "failed to fetch url")
		return
	}
	checks, err := s.store.ListChecks(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to fetch url checks")
		return
	}
	if checks == nil {
		checks = []seo.Check{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"url": rec, "checks": checks})
}

func (s *Server) runCheck(w http.ResponseWriter, r *http.Request) {
	id, ok := s.urlID(w, r)
	if !ok {
		return
	}
	check, err := s.checker.RunCheck(r.Context(), id)
	if err != nil {
		var fetchErr *seo.FetchError
		switch {
		case errors.Is(err, seo.ErrNotFound):
			s.writeError(w, http.StatusNotFound, "url not found")
		case errors.As(err, &fetchErr):
			s.writeError(w, http.StatusBadGateway, "failed to check the page")
		default:
			s.writeError(w, http.StatusInternalServerError, "failed to persist check")
		}
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]any{"check": check})
}

// urlID parses the path parameter. Non-numeric ids are treated as unknown
// resources, not client syntax errors.
func (s *Server) urlID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "url_id"), 10, 64)
	if err != nil {
		s.writeError(w, http.StatusNotFound, "url not found")
		return 0, false
	}
	return id, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write JSON failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

type requestIDKey struct{}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func loggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("request completed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.status),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			)
		})
	}
}

func recoverMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered", zap.Any("error", rec))
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_, _ = w.Write([]byte(`{"error":"internal server error"}`))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

// requestTimeout resolves the inbound request deadline, falling back to a
// minute when the config carries no value.
func requestTimeout(cfg config.Config) time.Duration {
	if cfg.Server.RequestTimeoutSeconds > 0 {
		return cfg.RequestTimeout()
	}
	return 60 * time.Second
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
