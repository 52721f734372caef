// Package embedclient computes dense vector embeddings via a Bedrock-hosted
// Cohere-shaped embedding model, per spec.md §4.3. It is the sole place in
// the system that understands the embedding service's request/response wire
// shape; pipelines depend only on the [Embedder] interface.
package embedclient

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/vicoftech/rag-core-go/internal/ragerr"
)

// Dimensions is the fixed output vector size. Any decoded embedding of a
// different length is a fatal programming error per spec.md §4.3.
const Dimensions = 1536

// MaxEmbedChars bounds the input text truncated before sending to the
// embedding model.
const MaxEmbedChars = 20000

// DefaultModel is used when no model id is configured.
const DefaultModel = "cohere.embed-v4:0"

// inputType is preserved as-is for both ingestion and query embedding calls,
// per spec.md §9's "do NOT guess intent" instruction: the source uses
// search_document even for queries, and this implementation does not vary it.
const inputType = "search_document"

// Embedder is the interface pipelines depend on.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Client invokes the configured Bedrock embedding model.
type Client struct {
	brc   *bedrockruntime.Client
	model string
}

// New constructs a Client. If model is empty, DefaultModel is used.
func New(brc *bedrockruntime.Client, model string) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{brc: brc, model: model}
}

// embedRequest is the wire body posted to the embedding model.
type embedRequest struct {
	Texts     []string `json:"texts"`
	InputType string   `json:"input_type"`
}

// Embed truncates text to MaxEmbedChars, invokes the embedding model, decodes
// its response via the tagged-variant probe in decode.go, and L2-normalizes
// the result to unit length (a zero-norm input vector is returned unchanged).
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if len(text) > MaxEmbedChars {
		text = text[:MaxEmbedChars]
	}

	body, err := json.Marshal(embedRequest{
		Texts:     []string{text},
		InputType: inputType,
	})
	if err != nil {
		return nil, fmt.Errorf("embedclient: marshal request: %w", err)
	}

	out, err := c.brc.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.model),
		ContentType: aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return nil, fmt.Errorf("embedclient: invoke model %s: %w", c.model, err)
	}

	vec64, err := decodeEmbeddingResponse(out.Body)
	if err != nil {
		return nil, err
	}

	normalized := normalize(vec64)
	if len(normalized) != Dimensions {
		return nil, fmt.Errorf("embedclient: model %s returned %d dimensions, want %d: %w",
			c.model, len(normalized), Dimensions, ragerr.EmbeddingShapeError)
	}

	out32 := make([]float32, len(normalized))
	for i, v := range normalized {
		out32[i] = float32(v)
	}
	return out32, nil
}

// normalize scales v to unit L2 norm. If v's norm is zero, v is returned
// unchanged (the zero vector), per spec.md §4.3 and §8.
func normalize(v []float64) []float64 {
	var sumSquares float64
	for _, x := range v {
		sumSquares += x * x
	}
	norm := math.Sqrt(sumSquares)
	if norm == 0 {
		return v
	}

	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}
