// Package server exposes the answer cache over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/cors"
	"go.uber.org/zap"

	cachepkg "github.com/pario-ai/answercache/pkg/cache"
	"github.com/pario-ai/answercache/pkg/config"
	"github.com/pario-ai/answercache/pkg/metrics"
	"github.com/pario-ai/answercache/pkg/models"
	"github.com/pario-ai/answercache/pkg/querylog"
)

// ErrMissingQuery is returned when a request body has no string "query".
var ErrMissingQuery = errors.New("query is required")

// maxBodySize bounds POST / request bodies.
const maxBodySize = 1 << 20

// Server is the answercache HTTP front end.
type Server struct {
	cfg     *config.Config
	service *cachepkg.Service
	journal *querylog.Logger
	metrics *metrics.Metrics
	log     *zap.Logger
	handler http.Handler
}

// New creates a Server wired with all dependencies. journal and m may be nil.
func New(cfg *config.Config, svc *cachepkg.Service, journal *querylog.Logger, m *metrics.Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		cfg:     cfg,
		service: svc,
		journal: journal,
		metrics: m,
		log:     logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /{$}", s.handleQuery)
	mux.HandleFunc("GET /analytics", s.handleAnalytics)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /admin/prune", s.handlePrune)
	mux.HandleFunc("DELETE /admin/cache", s.handleClear)
	if m != nil {
		mux.Handle("GET /metrics", m.Handler())
	}

	s.handler = s.withRequestLog(newCORS(cfg.CORS.AllowedOrigins).Handler(mux))
	return s
}

// newCORS builds the CORS middleware. A "*" origin is echoed back rather than
// sent literally, since browsers reject a wildcard on credentialed requests.
func newCORS(origins []string) *cors.Cors {
	opts := cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}
	if slices.Contains(origins, "*") {
		opts.AllowedOrigins = nil
		opts.AllowOriginFunc = func(string) bool { return true }
	}
	return cors.New(opts)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe starts the server with graceful shutdown support.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("answercache listening", zap.String("addr", s.cfg.Listen))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.log.Info("shutting down")
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	query, err := decodeQuery(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		if errors.Is(err, ErrMissingQuery) {
			writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := s.service.Answer(r.Context(), query)
	if err != nil {
		s.log.Error("answer failed", zap.Error(err), zap.String("request_id", requestID(r)))
		writeJSONError(w, http.StatusBadGateway, "answer generation failed")
		return
	}

	if s.journal != nil {
		entry := models.QueryLogEntry{
			RequestID: requestID(r),
			CacheKey:  res.CacheKey,
			Query:     query,
			Cached:    res.Cached,
			LatencyMs: res.Latency,
			CreatedAt: time.Now().UTC(),
		}
		go func() {
			if err := s.journal.Log(context.Background(), entry); err != nil {
				s.log.Warn("query log error", zap.Error(err))
			}
		}()
	}

	if res.Cached {
		w.Header().Set("X-Answercache-Cache", "hit")
	} else {
		w.Header().Set("X-Answercache-Cache", "miss")
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Analytics())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePrune(w http.ResponseWriter, r *http.Request) {
	res := s.service.Cache().Prune()
	s.log.Info("manual prune", zap.Int("expired", res.Expired), zap.Int("evicted", res.Evicted))
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	n := s.service.Cache().Clear()
	s.log.Info("cache cleared", zap.Int("entries", n))
	w.WriteHeader(http.StatusNoContent)
}

// decodeQuery reads {"query": string}. A missing, null or non-string query
// yields ErrMissingQuery; malformed JSON yields a decode error.
func decodeQuery(body io.Reader) (string, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		return "", fmt.Errorf("decode body: %w", err)
	}
	var req models.QueryRequest
	if v, ok := raw["query"]; ok {
		if err := json.Unmarshal(v, &req.Query); err != nil {
			return "", ErrMissingQuery
		}
	}
	if req.Query == nil {
		return "", ErrMissingQuery
	}
	return *req.Query, nil
}

// withRequestLog assigns a request id, records duration, and logs each request.
func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
			r.Header.Set("X-Request-ID", id)
		}
		w.Header().Set("X-Request-ID", id)

		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		elapsed := time.Since(start)

		if s.metrics != nil {
			s.metrics.HTTPDuration.WithLabelValues(routeLabel(r.URL.Path), strconv.Itoa(sw.status)).Observe(elapsed.Seconds())
		}
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", sw.status),
			zap.Duration("duration", elapsed),
			zap.String("request_id", id),
		)
	})
}

// routeLabel keeps metric cardinality bounded to known routes.
func routeLabel(path string) string {
	switch path {
	case "/", "/analytics", "/healthz", "/metrics", "/admin/prune", "/admin/cache":
		return path
	}
	return "other"
}

func requestID(r *http.Request) string {
	return r.Header.Get("X-Request-ID")
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	fmt.Fprintf(w, `{"error":{"message":%q,"type":"answercache_error","code":%d}}`, message, code)
}
