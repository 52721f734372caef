// Package llmclient generates text completions through a Bedrock-hosted chat
// model, failing over from a primary to a fallback model per spec.md §4.7.
package llmclient

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/vicoftech/rag-core-go/internal/metrics"
	"github.com/vicoftech/rag-core-go/internal/ragerr"
)

// RetriesPerModel is the number of attempts made against a single model
// before moving on to the next one in the chain.
const RetriesPerModel = 2

// RetrySleep is the pause between failed attempts against the same model.
const RetrySleep = 500 * time.Millisecond

// DefaultOutputTokens bounds a completion when the caller does not override it.
const DefaultOutputTokens = 2048

const (
	temperature = 0.1
	topP        = 0.5
)

// reasoningTags strips a model's chain-of-thought scratchpad from its answer.
// Matching is non-greedy and dotall so a multi-line block is removed whole;
// absence of the tags is not an error, the text is returned unchanged.
var reasoningTags = regexp.MustCompile(`(?s)<reasoning>.*?</reasoning>`)

// Generator is the interface pipelines depend on.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// invoker is the subset of *bedrockruntime.Client that Generate depends on.
// Wrapping it lets tests substitute a fake that reproduces the retry/failover
// chain without a live Bedrock endpoint, mirroring how vectorstore.VectorStore
// and embedclient.Embedder are already interfaces elsewhere in this tree.
type invoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// Client invokes a primary model, falling back to a secondary model if the
// primary exhausts its retry budget.
type Client struct {
	brc           invoker
	primaryModel  string
	fallbackModel string
	outputTokens  int
	metrics       *metrics.Metrics
}

// New constructs a Client. outputTokens of 0 selects DefaultOutputTokens. m
// may be nil.
func New(brc invoker, primaryModel, fallbackModel string, outputTokens int, m *metrics.Metrics) *Client {
	if outputTokens == 0 {
		outputTokens = DefaultOutputTokens
	}
	return &Client{
		brc:           brc,
		primaryModel:  primaryModel,
		fallbackModel: fallbackModel,
		outputTokens:  outputTokens,
		metrics:       m,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

// Generate answers prompt, trying the primary model RetriesPerModel times and
// then the fallback model RetriesPerModel times (four calls total, per
// spec.md §4.7) before giving up with ragerr.LLMUnavailable.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	models := []string{c.primaryModel}
	if c.fallbackModel != "" && c.fallbackModel != c.primaryModel {
		models = append(models, c.fallbackModel)
	}

	var lastErr error
	for slot, model := range models {
		slotLabel := "main"
		if slot > 0 {
			slotLabel = "fallback"
			if c.metrics != nil {
				c.metrics.LLMFailoverTotal.Inc()
			}
		}

		for attempt := 0; attempt < RetriesPerModel; attempt++ {
			if attempt > 0 {
				select {
				case <-ctx.Done():
					return "", ctx.Err()
				case <-time.After(RetrySleep):
				}
			}

			if c.metrics != nil {
				c.metrics.LLMRetriesTotal.WithLabelValues(slotLabel).Inc()
			}

			text, err := c.invoke(ctx, model, prompt)
			if err == nil {
				return stripReasoning(text), nil
			}
			lastErr = err
		}
	}

	return "", fmt.Errorf("llmclient: all models exhausted: %w: %w", ragerr.LLMUnavailable, lastErr)
}

func (c *Client) invoke(ctx context.Context, model, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   c.outputTokens,
		Temperature: temperature,
		TopP:        topP,
	})
	if err != nil {
		return "", fmt.Errorf("llmclient: marshal request: %w", err)
	}

	out, err := c.brc.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(model),
		ContentType: aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return "", fmt.Errorf("llmclient: invoke model %s: %w", model, err)
	}

	var resp chatResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return "", fmt.Errorf("llmclient: decode response from %s: %w", model, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("llmclient: model %s returned no choices", model)
	}

	return resp.Choices[0].Message.Content, nil
}

// stripReasoning removes a <reasoning>...</reasoning> block if present. It
// never errors: text with no such block is returned unchanged.
func stripReasoning(text string) string {
	return reasoningTags.ReplaceAllString(text, "")
}
