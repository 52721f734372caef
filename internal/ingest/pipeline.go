package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/vicoftech/rag-core-go/internal/chunk"
	"github.com/vicoftech/rag-core-go/internal/embedclient"
	"github.com/vicoftech/rag-core-go/internal/logging"
	"github.com/vicoftech/rag-core-go/internal/metrics"
	"github.com/vicoftech/rag-core-go/internal/vectorstore"
)

// Extractor produces full text and a page count from a downloaded object.
type Extractor interface {
	Extract(ctx context.Context, localPath, bucket, key string) (fullText string, pageCount int, err error)
}

// Pipeline wires together every step of spec.md §4.5.
type Pipeline struct {
	downloader Downloader
	extractor  Extractor
	embedder   embedclient.Embedder
	store      vectorstore.VectorStore
	metrics    *metrics.Metrics
	scratchDir string
}

// New constructs a Pipeline. scratchDir is where downloaded objects are
// staged before extraction; it is created if absent. m may be nil.
func New(downloader Downloader, extractor Extractor, embedder embedclient.Embedder, store vectorstore.VectorStore, m *metrics.Metrics, scratchDir string) *Pipeline {
	if scratchDir == "" {
		scratchDir = os.TempDir()
	}
	// A failure here surfaces as a scratch-file create error on download.
	_ = os.MkdirAll(scratchDir, 0o755)
	return &Pipeline{
		downloader: downloader,
		extractor:  extractor,
		embedder:   embedder,
		store:      store,
		metrics:    m,
		scratchDir: scratchDir,
	}
}

// Ingest runs one event through the full pipeline: parse the key, download
// the object, extract and chunk its text, provision the tenant schema, embed
// every chunk, and persist them all in one transaction. Any failure before
// the final insert leaves no persisted rows.
func (p *Pipeline) Ingest(ctx context.Context, event ObjectCreatedEvent) (err error) {
	log := logging.FromContext(ctx)

	start := time.Now()
	defer func() {
		if p.metrics != nil {
			outcome := "ok"
			if err != nil {
				outcome = "error"
			}
			p.metrics.IngestDurationSeconds.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
		}
	}()

	parsed, err := parseKey(event.Key)
	if err != nil {
		log.Error("ingest: parse key failed", slog.Any("error", err), slog.String("key", event.Key))
		return err
	}
	log = log.With(
		slog.String("tenant_id", parsed.TenantID),
		slog.String("agent_id", parsed.AgentID),
		slog.String("document_id", parsed.DocumentID.String()),
	)

	localPath := filepath.Join(p.scratchDir, parsed.DocumentID.String()+"-"+parsed.FileName)
	if err := p.downloader.Download(ctx, event.Bucket, event.Key, localPath); err != nil {
		log.Error("ingest: download failed", slog.Any("error", err))
		return err
	}
	defer os.Remove(localPath)

	fullText, pageCount, err := p.extractor.Extract(ctx, localPath, event.Bucket, event.Key)
	if err != nil {
		log.Error("ingest: extract failed", slog.Any("error", err), slog.Int("page_count", pageCount))
		return err
	}

	chunks := chunk.Chunk(fullText, pageCount)
	if len(chunks) == 0 {
		log.Info("ingest: no chunks produced, nothing to persist", slog.Int("page_count", pageCount))
		return nil
	}

	if err := p.store.Ensure(ctx, parsed.TenantID, parsed.AgentID); err != nil {
		log.Error("ingest: ensure schema failed", slog.Any("error", err))
		return err
	}

	rows := make([]vectorstore.Chunk, 0, len(chunks))
	agentUUID, err := uuid.Parse(parsed.AgentID)
	if err != nil {
		return fmt.Errorf("ingest: agent_id %q is not a UUID: %w", parsed.AgentID, err)
	}

	for i, text := range chunks {
		vec, err := p.embedder.Embed(ctx, text)
		if err != nil {
			log.Error("ingest: embed chunk failed", slog.Any("error", err), slog.Int("chunk_index", i))
			return fmt.Errorf("ingest: embed chunk %d of %d: %w", i, len(chunks), err)
		}
		rows = append(rows, vectorstore.Chunk{
			AgentID:      agentUUID,
			DocumentID:   parsed.DocumentID,
			DocumentName: parsed.FileName,
			ChunkText:    text,
			Embedding:    vec,
		})
		if p.metrics != nil {
			p.metrics.ChunksEmbedded.Inc()
		}
	}

	if err := p.store.InsertChunks(ctx, parsed.TenantID, rows); err != nil {
		log.Error("ingest: insert chunks failed", slog.Any("error", err))
		return err
	}
	if p.metrics != nil {
		p.metrics.ChunksInserted.Add(float64(len(rows)))
	}

	log.Info("ingest: document processed", slog.Int("chunk_count", len(rows)), slog.Int("page_count", pageCount))
	return nil
}
