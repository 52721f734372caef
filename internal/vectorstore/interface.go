// Package vectorstore persists agents and chunk embeddings into per-tenant
// Postgres schemas and retrieves chunks by cosine similarity via pgvector,
// per spec.md §4.4.
package vectorstore

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Agent is a tenant-scoped prompt configuration row.
type Agent struct {
	AgentID        uuid.UUID
	AgentName      string
	Description    string
	PromptTemplate string
	CreatedAt      time.Time
}

// Chunk is one embedded fragment of an ingested document.
type Chunk struct {
	AgentID      uuid.UUID
	DocumentID   uuid.UUID
	DocumentName string
	ChunkText    string
	Embedding    []float32
}

// RetrievedChunk is a Chunk as returned from a similarity search, ordered by
// ascending cosine distance.
type RetrievedChunk struct {
	ChunkText    string
	DocumentName string
	Distance     float64
}

// VectorStore is the interface the ingestion and query pipelines depend on.
type VectorStore interface {
	// Ensure provisions the tenant schema and a default agent if absent.
	Ensure(ctx context.Context, tenantID, agentID string) error

	// GetAgent returns the agent row for (tenantID, agentID), or
	// ragerr.AgentNotFound wrapped if no such row exists.
	GetAgent(ctx context.Context, tenantID, agentID string) (Agent, error)

	// InsertChunks persists chunks into the tenant schema in one transaction.
	InsertChunks(ctx context.Context, tenantID string, chunks []Chunk) error

	// Retrieve returns the topK chunks nearest to queryEmbedding within
	// (tenantID, agentID), optionally filtered to a single documentID.
	Retrieve(ctx context.Context, tenantID, agentID string, queryEmbedding []float32, topK int, documentID *uuid.UUID) ([]RetrievedChunk, error)
}
