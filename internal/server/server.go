// Package server implements the thin HTTP gateway that exercises the
// Ingestion and Query pipelines locally. It is not the product surface —
// the real triggers are an object-store event source and an agent
// orchestration layer calling query.Pipeline.Answer directly — but it gives
// both pipelines a runnable entry point (spec.md §1).
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vicoftech/rag-core-go/internal/ingest"
	"github.com/vicoftech/rag-core-go/internal/logging"
	"github.com/vicoftech/rag-core-go/internal/query"
	"github.com/vicoftech/rag-core-go/internal/ragerr"
)

const maxRequestBodyBytes = 1 << 20 // 1 MiB

// New constructs a Server from the provided pipelines and config.
// If cfg.Logger is nil, [logging.New] is used.
func New(ingestPipeline ingester, queryPipeline answerer, cfg *Config) (*Server, error) {
	if ingestPipeline == nil || queryPipeline == nil {
		return nil, fmt.Errorf("server: both pipelines must not be nil")
	}
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 5 * time.Minute
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.New()
	}
	if cfg.MetricsRegistry == nil {
		cfg.MetricsRegistry = prometheus.DefaultRegisterer
	}
	if cfg.MetricsGatherer == nil {
		cfg.MetricsGatherer = prometheus.DefaultGatherer
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = defaultRateLimit
	}
	if cfg.RateBurst == 0 {
		cfg.RateBurst = defaultRateBurst
	}

	s := &Server{
		ingest:  ingestPipeline,
		query:   queryPipeline,
		cfg:     cfg,
		log:     cfg.Logger,
		pingers: cfg.Pingers,
		metrics: newServerMetrics(cfg.MetricsRegistry),
	}

	rl, stopRL := newRateLimiter(cfg.RateLimit, cfg.RateBurst, cfg.Logger)
	s.stopRL = stopRL

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/ingest", s.handleIngest)
	mux.HandleFunc("POST /api/query", s.handleQuery)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/ready", s.handleReady)
	mux.Handle("GET /metrics", promhttp.HandlerFor(cfg.MetricsGatherer, promhttp.HandlerOpts{}))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      requestLogger(s.log, rl.middleware(mux)),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s, nil
}

// Start begins listening and serving HTTP requests. It blocks until the
// context is cancelled, then performs a graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.log.Info("server listening", slog.String("addr", "http://"+s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: listen error: %w", err)
	case <-ctx.Done():
		if s.stopRL != nil {
			s.stopRL()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: graceful shutdown failed: %w", err)
		}
		return nil
	}
}

// handleIngest handles POST /api/ingest: build one ObjectCreatedEvent from
// the request body and run it through the Ingestion Pipeline.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)

	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Bucket == "" || req.Key == "" {
		writeError(w, http.StatusBadRequest, "bucket and key are required")
		return
	}

	event := ingest.ObjectCreatedEvent{Bucket: req.Bucket, Key: req.Key}
	if err := s.ingest.Ingest(r.Context(), event); err != nil {
		log := logging.FromContext(r.Context())
		log.Error("ingest failed", slog.Any("error", err))
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(r.Context(), w, http.StatusOK, ingestResponse{Status: "PDF procesado correctamente"})
}

// handleQuery handles POST /api/query: build one query.Request from the
// request body and run it through the Query Pipeline.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TenantID == "" || req.AgentID == "" || req.Query == "" {
		writeError(w, http.StatusBadRequest, "tenant_id, agent_id, and query are required")
		return
	}

	pipelineReq := query.Request{
		TenantID: req.TenantID,
		AgentID:  req.AgentID,
		Query:    req.Query,
	}
	if req.DocumentID != nil {
		docID, err := uuid.Parse(*req.DocumentID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "document_id is not a valid UUID")
			return
		}
		pipelineReq.DocumentID = &docID
	}

	answer, err := s.query.Answer(r.Context(), pipelineReq)
	if err != nil {
		log := logging.FromContext(r.Context())
		log.Error("query failed", slog.Any("error", err))
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(r.Context(), w, http.StatusOK, queryResponse{Answer: answer})
}

// handleHealth handles GET /api/health for liveness checks.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusForError maps a pipeline error to an HTTP status code via the
// ragerr taxonomy.
func statusForError(err error) int {
	switch {
	case errors.Is(err, ragerr.BadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ragerr.AgentNotFound):
		return http.StatusNotFound
	case errors.Is(err, ragerr.LLMUnavailable), errors.Is(err, ragerr.OCRFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.FromContext(ctx).Error("encode response failed", slog.Any("error", err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: msg})
}
