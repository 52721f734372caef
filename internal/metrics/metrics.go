// Package metrics registers the Prometheus metrics emitted by the ingestion
// and query pipelines. A single [Metrics] instance is constructed at process
// start and threaded through both pipelines as an explicit dependency; it is
// nil-safe so unit tests can omit it entirely.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors owned by ragcore.
// A single instance is created in New and passed to both pipelines so tests
// can inject a fresh prometheus.Registry without polluting the default one.
type Metrics struct {
	// ChunksEmbedded counts chunks successfully embedded during ingestion.
	ChunksEmbedded prometheus.Counter

	// ChunksInserted counts chunks successfully persisted during ingestion.
	ChunksInserted prometheus.Counter

	// IngestDurationSeconds records the wall-clock duration of one ingestion
	// task, partitioned by outcome: "ok" or "error".
	IngestDurationSeconds *prometheus.HistogramVec

	// RetrievalDurationSeconds records the latency of the k-NN retrieval
	// query issued by the query pipeline.
	RetrievalDurationSeconds prometheus.Histogram

	// LLMRetriesTotal counts every generate attempt, partitioned by model
	// slot: "main" or "fallback".
	LLMRetriesTotal *prometheus.CounterVec

	// LLMFailoverTotal counts the number of query tasks that exhausted the
	// primary model's retries and fell through to the fallback model.
	LLMFailoverTotal prometheus.Counter
}

// New registers all ragcore metrics against reg and returns the populated
// Metrics. promauto.With(reg) registers into the provided registry rather
// than the global default, keeping unit tests hermetic.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ChunksEmbedded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "ragcore",
			Subsystem: "ingest",
			Name:      "chunks_embedded_total",
			Help:      "Total number of chunks successfully embedded during ingestion.",
		}),

		ChunksInserted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "ragcore",
			Subsystem: "ingest",
			Name:      "chunks_inserted_total",
			Help:      "Total number of chunks successfully persisted during ingestion.",
		}),

		IngestDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ragcore",
			Subsystem: "ingest",
			Name:      "duration_seconds",
			Help:      "Wall-clock duration of one ingestion task, partitioned by outcome.",
			Buckets:   []float64{0.5, 1, 5, 15, 30, 60, 180, 600},
		}, []string{"outcome"}),

		RetrievalDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ragcore",
			Subsystem: "query",
			Name:      "retrieval_duration_seconds",
			Help:      "Latency of the k-NN retrieval query issued by the query pipeline.",
			Buckets:   prometheus.DefBuckets,
		}),

		LLMRetriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ragcore",
			Subsystem: "query",
			Name:      "llm_retries_total",
			Help:      "Total number of LLM generate attempts, partitioned by model slot (main/fallback).",
		}, []string{"model"}),

		LLMFailoverTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "ragcore",
			Subsystem: "query",
			Name:      "llm_failover_total",
			Help:      "Total number of query tasks that fell through to the fallback model.",
		}),
	}
}
