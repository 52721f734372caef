package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vicoftech/rag-core-go/internal/ingest"
	"github.com/vicoftech/rag-core-go/internal/query"
)

// Config holds the HTTP server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1).
	Host string
	// Port is the TCP port to listen on (default: 8080).
	Port int
	// ReadTimeout is the maximum duration for reading the request.
	ReadTimeout time.Duration
	// WriteTimeout is the maximum duration for writing the response.
	WriteTimeout time.Duration
	// ShutdownTimeout is the maximum duration for a graceful shutdown.
	ShutdownTimeout time.Duration
	// Logger is the structured logger used by the server and its handlers.
	// If nil, [logging.New] is used.
	Logger *slog.Logger
	// Pingers is the ordered list of dependency probes run by GET /api/ready.
	// If empty, /api/ready returns 200 with no checks (liveness-only mode).
	Pingers []Pinger
	// RateLimit is the sustained request rate allowed per IP on rate-limited
	// endpoints (requests/second). Defaults to 10 if zero.
	RateLimit float64
	// RateBurst is the maximum instantaneous burst per IP. Defaults to 20 if zero.
	RateBurst int
	// MetricsRegistry is where HTTP-layer metrics are registered. Defaults to
	// prometheus.DefaultRegisterer if nil.
	MetricsRegistry prometheus.Registerer
	// MetricsGatherer backs GET /metrics. Defaults to prometheus.DefaultGatherer if nil.
	MetricsGatherer prometheus.Gatherer
}

// ingester is the interface handleIngest calls to run one ingestion event.
// *ingest.Pipeline satisfies it; tests inject a fake.
type ingester interface {
	Ingest(ctx context.Context, event ingest.ObjectCreatedEvent) error
}

// answerer is the interface handleQuery calls to answer one request.
// *query.Pipeline satisfies it; tests inject a fake.
type answerer interface {
	Answer(ctx context.Context, req query.Request) (string, error)
}

// Server is the thin HTTP gateway that exposes the Ingestion and Query
// pipelines so they are runnable outside of their native event sources
// (object-store notifications, an agent orchestration layer), per spec.md §1.
type Server struct {
	// ingest runs one object-created event through the Ingestion Pipeline.
	ingest ingester
	// query runs one request through the Query Pipeline.
	query answerer
	// cfg holds the resolved server configuration.
	cfg *Config
	// httpServer is the underlying net/http server.
	httpServer *http.Server
	// log is the structured logger for this server instance.
	log *slog.Logger
	// pingers is the ordered list of dependency probes for GET /api/ready.
	pingers []Pinger
	// stopRL stops the rate limiter's background eviction goroutine on shutdown.
	stopRL func()
	// metrics holds the HTTP-layer Prometheus collectors.
	metrics *serverMetrics
}

// ingestRequest is the JSON body for POST /api/ingest. It mirrors the
// object-created event's two required fields (spec.md §6).
type ingestRequest struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// ingestResponse is the JSON response for POST /api/ingest.
type ingestResponse struct {
	Status string `json:"status"`
}

// queryRequest is the JSON body for POST /api/query, mirroring spec.md §6's
// query entry object.
type queryRequest struct {
	TenantID   string  `json:"tenant_id"`
	AgentID    string  `json:"agent_id"`
	Query      string  `json:"query"`
	DocumentID *string `json:"document_id,omitempty"`
}

// queryResponse is the JSON response for POST /api/query.
type queryResponse struct {
	Answer string `json:"answer"`
}

// errorResponse is the JSON body returned on any handler failure.
type errorResponse struct {
	Error string `json:"error"`
}
