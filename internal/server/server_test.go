package server

import (
	"context"

	"github.com/vicoftech/rag-core-go/internal/ingest"
	"github.com/vicoftech/rag-core-go/internal/logging"
	"github.com/vicoftech/rag-core-go/internal/query"
)

// fakeIngester is a test double for the ingester interface.
type fakeIngester struct {
	err       error
	lastEvent ingest.ObjectCreatedEvent
	callCount int
}

func (f *fakeIngester) Ingest(ctx context.Context, event ingest.ObjectCreatedEvent) error {
	f.callCount++
	f.lastEvent = event
	return f.err
}

// fakeAnswerer is a test double for the answerer interface.
type fakeAnswerer struct {
	answer    string
	err       error
	lastReq   query.Request
	callCount int
}

func (f *fakeAnswerer) Answer(ctx context.Context, req query.Request) (string, error) {
	f.callCount++
	f.lastReq = req
	return f.answer, f.err
}

// newTestServer builds a *Server wired to no-op fakes for handler-level unit
// tests that do not exercise New's HTTP plumbing directly.
func newTestServer() *Server {
	return &Server{
		ingest:  &fakeIngester{},
		query:   &fakeAnswerer{},
		cfg:     &Config{},
		log:     logging.New(),
		metrics: newServerMetrics(nil),
	}
}
