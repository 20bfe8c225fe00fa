package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/poiesic/subseek/core"
	"github.com/poiesic/subseek/metrics"
	"github.com/poiesic/subseek/protocol"
	"github.com/poiesic/subseek/search"
	"github.com/prometheus/client_golang/prometheus"
)

const ndjsonContentType = "application/x-ndjson"

// ErrSearcherRequired is returned when NewServer is given no searcher.
var ErrSearcherRequired = errors.New("searcher is required")

// Server routes HTTP requests to a searcher.
type Server struct {
	searcher *search.Searcher
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	folder   string
	logger   *slog.Logger
	router   chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records searches and requests into m and serves g on /metrics.
func WithMetrics(m *metrics.Metrics, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = g
	}
}

// WithFolder sets the corpus name reported in responses.
func WithFolder(folder string) Option {
	return func(s *Server) {
		s.folder = folder
	}
}

// NewServer creates a server for searcher.
func NewServer(searcher *search.Searcher, opts ...Option) (*Server, error) {
	if searcher == nil {
		return nil, ErrSearcherRequired
	}

	s := &Server{
		searcher: searcher,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(s.recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(s.requestLogger)
	if s.metrics != nil {
		r.Use(s.metrics.Middleware())
	}

	r.Get("/search", s.handleSearch)
	r.Get("/api/search", s.handleSearchEnvelope)
	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(s.gatherer))
	}
	s.router = r

	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully
// within shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// handleSearch answers in the line format the web front-end reads: one JSON
// hit per line, or the no-match envelope.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	result, err := s.search(r)
	if err != nil {
		writeJSON(w, statusFor(err), protocol.NewErrorResponse(err))
		return
	}

	w.Header().Set("Content-Type", ndjsonContentType)
	w.WriteHeader(http.StatusOK)
	if err := protocol.WriteResult(w, result, s.folder); err != nil {
		s.logger.Warn("error writing search response", "err", err)
	}
}

// handleSearchEnvelope answers with a single envelope holding every hit.
func (s *Server) handleSearchEnvelope(w http.ResponseWriter, r *http.Request) {
	result, err := s.search(r)
	if err != nil {
		writeJSON(w, statusFor(err), protocol.NewErrorResponse(err))
		return
	}

	writeJSON(w, http.StatusOK, protocol.NewResponse(result, s.folder))
}

func (s *Server) search(r *http.Request) (*search.Result, error) {
	params := protocol.ParseValues(r.URL.Query())

	var monitor search.SearchMonitor
	if s.metrics != nil {
		monitor = s.metrics.Observer()
	}
	return s.searcher.SearchWithMonitor(r.Context(), params, monitor)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusFor maps a search error to an HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrEmptyQuery), errors.Is(err, core.ErrInvalidThreshold):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrCorpusUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
