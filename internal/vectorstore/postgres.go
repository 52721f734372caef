package vectorstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/vicoftech/rag-core-go/internal/ragerr"
)

// Store is the pgx/pgvector-backed VectorStore implementation.
type Store struct {
	pool *pgxpool.Pool
}

// New wraps an already-connected pool. Callers own the pool's lifecycle.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Connect parses dsn, opens a pool, and wraps it in a Store.
func Connect(ctx context.Context, dsn string, maxConns int32) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: parse dsn: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: connect: %w: %w", ragerr.StorageError, err)
	}
	return New(pool), nil
}

// Close releases the underlying pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Pool returns the underlying connection pool, for callers that need to
// probe it directly (e.g. a readiness check).
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// GetAgent loads the agent row for (tenantID, agentID). tenantID is checked
// against the identifier allow-list before it is interpolated as the schema
// name; agentID is bound as a query parameter. Ensure is not called here.
func (s *Store) GetAgent(ctx context.Context, tenantID, agentID string) (Agent, error) {
	if !validIdentifier(tenantID) {
		return Agent{}, fmt.Errorf("vectorstore: invalid tenant id %q: %w", tenantID, ragerr.BadRequest)
	}

	var a Agent
	err := s.pool.QueryRow(ctx, fmt.Sprintf(`
SELECT agent_id, agent_name, description, prompt_template, created_at
FROM %s.agents
WHERE agent_id = $1
`, tenantID), agentID).Scan(&a.AgentID, &a.AgentName, &a.Description, &a.PromptTemplate, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Agent{}, fmt.Errorf("vectorstore: tenant %s agent %s: %w", tenantID, agentID, ragerr.AgentNotFound)
	}
	if err != nil {
		return Agent{}, fmt.Errorf("vectorstore: get agent: %w: %w", ragerr.StorageError, err)
	}
	return a, nil
}

// InsertChunks persists chunks into tenantID.documents in one transaction. No
// partial persistence on failure, per spec.md §4.5.
func (s *Store) InsertChunks(ctx context.Context, tenantID string, chunks []Chunk) error {
	if !validIdentifier(tenantID) {
		return fmt.Errorf("vectorstore: invalid tenant id %q: %w", tenantID, ragerr.BadRequest)
	}
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("vectorstore: begin insert tx: %w: %w", ragerr.StorageError, err)
	}
	defer tx.Rollback(ctx)

	stmt := fmt.Sprintf(`
INSERT INTO %s.documents (agent_id, document_id, document_name, chunk_text, embedding)
VALUES ($1, $2, $3, $4, $5)
`, tenantID)

	for _, c := range chunks {
		if len(c.Embedding) != EmbeddingDimension {
			return fmt.Errorf("vectorstore: chunk embedding has %d dimensions, want %d: %w",
				len(c.Embedding), EmbeddingDimension, ragerr.EmbeddingShapeError)
		}
		if _, err := tx.Exec(ctx, stmt, c.AgentID, c.DocumentID, c.DocumentName, c.ChunkText, pgvector.NewVector(c.Embedding)); err != nil {
			return fmt.Errorf("vectorstore: insert chunk: %w: %w", ragerr.StorageError, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("vectorstore: commit insert tx: %w: %w", ragerr.StorageError, err)
	}
	return nil
}

// Retrieve returns up to topK chunks within (tenantID, agentID) nearest to
// queryEmbedding by cosine distance, optionally restricted to documentID,
// ordered by ascending distance then ascending row id (spec.md §4.6).
func (s *Store) Retrieve(ctx context.Context, tenantID, agentID string, queryEmbedding []float32, topK int, documentID *uuid.UUID) ([]RetrievedChunk, error) {
	if !validIdentifier(tenantID) {
		return nil, fmt.Errorf("vectorstore: invalid tenant id %q: %w", tenantID, ragerr.BadRequest)
	}
	if len(queryEmbedding) != EmbeddingDimension {
		return nil, fmt.Errorf("vectorstore: query embedding has %d dimensions, want %d: %w",
			len(queryEmbedding), EmbeddingDimension, ragerr.EmbeddingShapeError)
	}

	vec := pgvector.NewVector(queryEmbedding)

	var (
		rows pgx.Rows
		err  error
	)

	base := fmt.Sprintf(`
SELECT chunk_text, document_name, (embedding <=> $1) AS distance
FROM %s.documents
WHERE agent_id = $2`, tenantID)

	if documentID != nil {
		q := base + " AND document_id = $3 ORDER BY embedding <=> $1, id ASC LIMIT $4"
		rows, err = s.pool.Query(ctx, q, vec, agentID, *documentID, topK)
	} else {
		q := base + " ORDER BY embedding <=> $1, id ASC LIMIT $3"
		rows, err = s.pool.Query(ctx, q, vec, agentID, topK)
	}
	if err != nil {
		return nil, fmt.Errorf("vectorstore: retrieve: %w: %w", ragerr.StorageError, err)
	}
	defer rows.Close()

	var out []RetrievedChunk
	for rows.Next() {
		var rc RetrievedChunk
		if err := rows.Scan(&rc.ChunkText, &rc.DocumentName, &rc.Distance); err != nil {
			return nil, fmt.Errorf("vectorstore: scan retrieved chunk: %w: %w", ragerr.StorageError, err)
		}
		out = append(out, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("vectorstore: iterate retrieved chunks: %w: %w", ragerr.StorageError, err)
	}
	return out, nil
}
