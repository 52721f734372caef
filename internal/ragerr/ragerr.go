// Package ragerr defines the sentinel error taxonomy shared by the ingestion
// and query pipelines. Callers compare against these values with [errors.Is];
// packages that return a taxonomy error wrap it with context via
// fmt.Errorf("...: %w", sentinel).
package ragerr

import "errors"

var (
	// BadRequest indicates a malformed query input or ingestion key — a
	// missing required field, or a key that does not parse as
	// tenant_id/agent_id/.../file_name.
	BadRequest = errors.New("bad request")

	// AgentNotFound indicates no agent row exists for (tenant_id, agent_id)
	// during a query.
	AgentNotFound = errors.New("agent not found")

	// EmbeddingShapeError indicates the embedding service returned a response
	// shape that does not match any of the three recognized variants.
	EmbeddingShapeError = errors.New("embedding response shape unrecognized")

	// OCRFailed indicates an asynchronous OCR job reported a terminal failure
	// status.
	OCRFailed = errors.New("ocr job failed")

	// LLMUnavailable indicates both the primary and fallback models exhausted
	// their retry budgets.
	LLMUnavailable = errors.New("llm unavailable")

	// StorageError indicates a database or object-store I/O failure. Any
	// in-flight transaction is rolled back before this is returned.
	StorageError = errors.New("storage error")
)
