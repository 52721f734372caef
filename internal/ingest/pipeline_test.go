package ingest

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/vicoftech/rag-core-go/internal/vectorstore"
)

type fakeDownloader struct {
	err    error
	called bool
}

func (f *fakeDownloader) Download(ctx context.Context, bucket, key, destPath string) error {
	f.called = true
	return f.err
}

type fakeExtractor struct {
	text      string
	pageCount int
	err       error
}

func (f *fakeExtractor) Extract(ctx context.Context, localPath, bucket, key string) (string, int, error) {
	return f.text, f.pageCount, f.err
}

type fakeEmbedder struct {
	calls int
	err   error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	vec := make([]float32, 1536)
	vec[0] = 1.0
	return vec, nil
}

type fakeStore struct {
	ensureCalled bool
	ensureErr    error
	inserted     []vectorstore.Chunk
	insertErr    error
}

func (f *fakeStore) Ensure(ctx context.Context, tenantID, agentID string) error {
	f.ensureCalled = true
	return f.ensureErr
}

func (f *fakeStore) GetAgent(ctx context.Context, tenantID, agentID string) (vectorstore.Agent, error) {
	return vectorstore.Agent{}, nil
}

func (f *fakeStore) InsertChunks(ctx context.Context, tenantID string, chunks []vectorstore.Chunk) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, chunks...)
	return nil
}

func (f *fakeStore) Retrieve(ctx context.Context, tenantID, agentID string, queryEmbedding []float32, topK int, documentID *uuid.UUID) ([]vectorstore.RetrievedChunk, error) {
	return nil, nil
}

func validEvent(agentID string) ObjectCreatedEvent {
	return ObjectCreatedEvent{
		Bucket: "ragcore-uploads",
		Key:    "acme-corp/" + agentID + "/report.pdf",
	}
}

func TestPipeline_Ingest_HappyPath(t *testing.T) {
	t.Parallel()

	agentID := uuid.New().String()
	// A single short paragraph, well above the 50-char minimum chunk filter.
	longText := "This is a long enough paragraph of extracted text that will survive the chunker's minimum length filter without being dropped entirely from the output."

	store := &fakeStore{}
	embedder := &fakeEmbedder{}
	p := New(&fakeDownloader{}, &fakeExtractor{text: longText, pageCount: 3}, embedder, store, nil, t.TempDir())

	if err := p.Ingest(context.Background(), validEvent(agentID)); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if !store.ensureCalled {
		t.Error("Ensure was not called")
	}
	if len(store.inserted) == 0 {
		t.Error("no chunks were inserted")
	}
	if embedder.calls != len(store.inserted) {
		t.Errorf("embedder called %d times, want %d (one per inserted chunk)", embedder.calls, len(store.inserted))
	}
}

func TestPipeline_Ingest_InvalidKeyFailsBeforeDownload(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	downloader := &fakeDownloader{}
	p := New(downloader, &fakeExtractor{}, &fakeEmbedder{}, store, nil, t.TempDir())

	err := p.Ingest(context.Background(), ObjectCreatedEvent{Bucket: "b", Key: "not-enough-segments"})
	if err == nil {
		t.Fatal("expected an error for a malformed key")
	}
	if downloader.called {
		t.Error("Download should not be reached for a key that fails to parse")
	}
	if store.ensureCalled {
		t.Error("Ensure should not be reached for a key that fails to parse")
	}
}

func TestPipeline_Ingest_ExtractFailureLeavesNoRows(t *testing.T) {
	t.Parallel()

	agentID := uuid.New().String()
	store := &fakeStore{}
	p := New(&fakeDownloader{}, &fakeExtractor{err: errBoom}, &fakeEmbedder{}, store, nil, t.TempDir())

	if err := p.Ingest(context.Background(), validEvent(agentID)); err == nil {
		t.Fatal("expected an error from a failing extractor")
	}
	if store.ensureCalled {
		t.Error("Ensure should not run when extraction fails")
	}
	if len(store.inserted) != 0 {
		t.Error("no rows should be persisted when extraction fails")
	}
}

func TestPipeline_Ingest_EmptyExtractionPersistsNothing(t *testing.T) {
	t.Parallel()

	agentID := uuid.New().String()
	store := &fakeStore{}
	p := New(&fakeDownloader{}, &fakeExtractor{text: "   "}, &fakeEmbedder{}, store, nil, t.TempDir())

	if err := p.Ingest(context.Background(), validEvent(agentID)); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if len(store.inserted) != 0 {
		t.Error("whitespace-only extraction should produce zero chunks and zero rows")
	}
}

func TestPipeline_Ingest_EmbedFailureAbortsBeforeInsert(t *testing.T) {
	t.Parallel()

	agentID := uuid.New().String()
	longText := "This is a long enough paragraph of extracted text that will survive the chunker's minimum length filter without being dropped entirely from the output."
	store := &fakeStore{}
	p := New(&fakeDownloader{}, &fakeExtractor{text: longText, pageCount: 1}, &fakeEmbedder{err: errBoom}, store, nil, t.TempDir())

	if err := p.Ingest(context.Background(), validEvent(agentID)); err == nil {
		t.Fatal("expected an error from a failing embedder")
	}
	if len(store.inserted) != 0 {
		t.Error("no rows should be persisted when embedding fails mid-batch")
	}
}

var errBoom = errTest("boom")

type errTest string

func (e errTest) Error() string { return string(e) }
