// Package query orchestrates one question-answering request: embed the
// query, retrieve the nearest chunks, assemble a prompt from the agent's
// template, and invoke the LLM Client, per spec.md §4.6.
package query

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vicoftech/rag-core-go/internal/embedclient"
	"github.com/vicoftech/rag-core-go/internal/llmclient"
	"github.com/vicoftech/rag-core-go/internal/logging"
	"github.com/vicoftech/rag-core-go/internal/metrics"
	"github.com/vicoftech/rag-core-go/internal/ragerr"
	"github.com/vicoftech/rag-core-go/internal/vectorstore"
)

// DefaultTopK is the fixed retrieval width, per spec.md §4.6.
const DefaultTopK = 50

// Request is one query entry, per spec.md §6.
type Request struct {
	TenantID   string
	AgentID    string
	Query      string
	DocumentID *uuid.UUID
}

// Pipeline wires together every step of spec.md §4.6.
type Pipeline struct {
	embedder embedclient.Embedder
	store    vectorstore.VectorStore
	llm      llmclient.Generator
	metrics  *metrics.Metrics
}

// New constructs a Pipeline. m may be nil.
func New(embedder embedclient.Embedder, store vectorstore.VectorStore, llm llmclient.Generator, m *metrics.Metrics) *Pipeline {
	return &Pipeline{embedder: embedder, store: store, llm: llm, metrics: m}
}

// Answer embeds req.Query, retrieves DefaultTopK nearest chunks (optionally
// filtered to req.DocumentID), assembles a prompt from the agent's template,
// invokes the LLM Client, and returns its answer verbatim.
func (p *Pipeline) Answer(ctx context.Context, req Request) (string, error) {
	log := logging.FromContext(ctx).With(
		slog.String("tenant_id", req.TenantID),
		slog.String("agent_id", req.AgentID),
	)

	if req.TenantID == "" || req.AgentID == "" || req.Query == "" {
		return "", fmt.Errorf("query: tenant_id, agent_id, and query are required: %w", ragerr.BadRequest)
	}

	agent, err := p.store.GetAgent(ctx, req.TenantID, req.AgentID)
	if err != nil {
		log.Error("query: get agent failed", slog.Any("error", err))
		return "", err
	}

	queryVec, err := p.embedder.Embed(ctx, req.Query)
	if err != nil {
		log.Error("query: embed query failed", slog.Any("error", err))
		return "", err
	}

	retrieveStart := time.Now()
	chunks, err := p.store.Retrieve(ctx, req.TenantID, req.AgentID, queryVec, DefaultTopK, req.DocumentID)
	if err != nil {
		log.Error("query: retrieve failed", slog.Any("error", err))
		return "", err
	}
	if p.metrics != nil {
		p.metrics.RetrievalDurationSeconds.Observe(time.Since(retrieveStart).Seconds())
	}

	contextText := assembleContext(chunks)
	prompt := renderTemplate(agent.PromptTemplate, contextText, req.Query)

	answer, err := p.llm.Generate(ctx, prompt)
	if err != nil {
		log.Error("query: llm generate failed", slog.Any("error", err))
		return "", err
	}

	log.Info("query: answered", slog.Int("chunk_count", len(chunks)))
	return answer, nil
}

// assembleContext joins chunk texts with a blank-line separator, in
// retrieval order (ascending cosine distance, ties by id).
func assembleContext(chunks []vectorstore.RetrievedChunk) string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.ChunkText
	}
	return strings.Join(texts, "\n\n")
}
