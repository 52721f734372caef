package vectorstore

import (
	"context"
	"fmt"
	"regexp"

	"github.com/vicoftech/rag-core-go/internal/ragerr"
)

// EmbeddingDimension is the fixed width of the documents.embedding column.
const EmbeddingDimension = 1536

// IVFFlatLists is the number of lists used by the documents.embedding index.
const IVFFlatLists = 100

// identifierPattern is the system's sole injection defense for identifier
// (schema/table/index name) contexts: tenant_id is interpolated into SQL text
// rather than bound as a query parameter, since Postgres does not support
// parameterized identifiers. Values must match before interpolation; Ensure
// also checks agent_id against it, although agent_id itself is bound as a
// parameter.
var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// validIdentifier reports whether s is safe to interpolate into SQL as a
// schema, table, or index name fragment.
func validIdentifier(s string) bool {
	return s != "" && identifierPattern.MatchString(s)
}

// Ensure provisions the schema for tenantID (creating it if absent), the
// agents/documents tables, their indexes, and a default agent row, all in one
// idempotent transaction. Schema naming uses the unprefixed convention: the
// schema name is tenantID verbatim (see DESIGN.md).
func (s *Store) Ensure(ctx context.Context, tenantID, agentID string) error {
	if !validIdentifier(tenantID) {
		return fmt.Errorf("vectorstore: invalid tenant id %q: %w", tenantID, ragerr.BadRequest)
	}
	if !validIdentifier(agentID) {
		return fmt.Errorf("vectorstore: invalid agent id %q: %w", agentID, ragerr.BadRequest)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("vectorstore: begin ensure tx: %w: %w", ragerr.StorageError, err)
	}
	defer tx.Rollback(ctx)

	ddl := fmt.Sprintf(`
CREATE EXTENSION IF NOT EXISTS vector;

CREATE SCHEMA IF NOT EXISTS %[1]s;

CREATE TABLE IF NOT EXISTS %[1]s.agents (
	agent_id        UUID PRIMARY KEY,
	agent_name      TEXT NOT NULL,
	description     TEXT NOT NULL DEFAULT '',
	prompt_template TEXT NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS %[2]s_agents_agent_id_idx ON %[1]s.agents (agent_id);

CREATE TABLE IF NOT EXISTS %[1]s.documents (
	id            SERIAL PRIMARY KEY,
	agent_id      UUID NOT NULL,
	document_id   UUID NOT NULL,
	document_name TEXT NOT NULL,
	chunk_text    TEXT NOT NULL,
	embedding     vector(%[3]d) NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS %[2]s_documents_agent_id_idx ON %[1]s.documents (agent_id);
CREATE INDEX IF NOT EXISTS %[2]s_documents_document_id_idx ON %[1]s.documents (document_id);

DO $$
BEGIN
	IF NOT EXISTS (
		SELECT 1 FROM pg_indexes
		WHERE schemaname = '%[1]s' AND indexname = '%[2]s_documents_embedding_idx'
	) THEN
		EXECUTE 'CREATE INDEX %[2]s_documents_embedding_idx ON %[1]s.documents USING ivfflat (embedding vector_cosine_ops) WITH (lists = %[4]d)';
	END IF;
END
$$;
`, tenantID, sanitizedIndexPrefix(tenantID), EmbeddingDimension, IVFFlatLists)

	if _, err := tx.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("vectorstore: provision schema %s: %w: %w", tenantID, ragerr.StorageError, err)
	}

	if _, err := tx.Exec(ctx, fmt.Sprintf(`
INSERT INTO %s.agents (agent_id, agent_name, description, prompt_template)
VALUES ($1, $2, $3, $4)
ON CONFLICT (agent_id) DO NOTHING
`, tenantID), agentID, defaultAgentName, defaultAgentDescription, defaultPromptTemplate); err != nil {
		return fmt.Errorf("vectorstore: insert default agent: %w: %w", ragerr.StorageError, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("vectorstore: commit ensure tx: %w: %w", ragerr.StorageError, err)
	}
	return nil
}

const (
	defaultAgentName        = "default"
	defaultAgentDescription = "auto-provisioned default agent"
	defaultPromptTemplate   = "Answer the question using only the context below.\n\nContext:\n{context}\n\nQuestion: {query}"
)

// sanitizedIndexPrefix derives an index-name-safe fragment from an already
// validated identifier (Postgres index names may not contain '-').
func sanitizedIndexPrefix(s string) string {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '-' {
			out[i] = '_'
		} else {
			out[i] = s[i]
		}
	}
	return string(out)
}
