package llmclient

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vicoftech/rag-core-go/internal/metrics"
	"github.com/vicoftech/rag-core-go/internal/ragerr"
)

// fakeInvoker lets tests drive the retry/failover chain without a live
// Bedrock endpoint. Each call is recorded by the model id it targeted.
type fakeInvoker struct {
	// fail names models that should error on every attempt.
	fail map[string]bool
	// calls records, in order, the model id each InvokeModel call targeted.
	calls []string
}

func (f *fakeInvoker) InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	model := *params.ModelId
	f.calls = append(f.calls, model)

	if f.fail[model] {
		return nil, errors.New("simulated bedrock failure")
	}

	body, _ := json.Marshal(chatResponse{
		Choices: []chatChoice{{Message: chatMessage{Role: "assistant", Content: "answer from " + model}}},
	})
	return &bedrockruntime.InvokeModelOutput{Body: body}, nil
}

// TestGenerate_PrimaryExhaustsRetriesFallbackSucceeds reproduces spec.md
// scenario 5: the primary model fails RetriesPerModel times, then the
// fallback model's first attempt succeeds.
func TestGenerate_PrimaryExhaustsRetriesFallbackSucceeds(t *testing.T) {
	t.Parallel()

	fake := &fakeInvoker{fail: map[string]bool{"primary-model": true}}
	m := metrics.New(prometheus.NewRegistry())
	c := New(fake, "primary-model", "fallback-model", 0, m)

	got, err := c.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if want := "answer from fallback-model"; got != want {
		t.Errorf("Generate() = %q, want %q", got, want)
	}

	wantCalls := []string{"primary-model", "primary-model", "fallback-model"}
	if len(fake.calls) != len(wantCalls) {
		t.Fatalf("invoke calls = %v, want %v", fake.calls, wantCalls)
	}
	for i, model := range wantCalls {
		if fake.calls[i] != model {
			t.Errorf("call %d targeted %q, want %q", i, fake.calls[i], model)
		}
	}
}

// TestGenerate_AllModelsExhaustedIsLLMUnavailable reproduces the case where
// both the primary and fallback models fail every attempt.
func TestGenerate_AllModelsExhaustedIsLLMUnavailable(t *testing.T) {
	t.Parallel()

	fake := &fakeInvoker{fail: map[string]bool{"primary-model": true, "fallback-model": true}}
	c := New(fake, "primary-model", "fallback-model", 0, nil)

	_, err := c.Generate(context.Background(), "prompt")
	if !errors.Is(err, ragerr.LLMUnavailable) {
		t.Errorf("expected ragerr.LLMUnavailable, got %v", err)
	}
	if len(fake.calls) != 2*RetriesPerModel {
		t.Errorf("invoke calls = %d, want %d", len(fake.calls), 2*RetriesPerModel)
	}
}

func TestStripReasoning_RemovesBlock(t *testing.T) {
	t.Parallel()
	in := "before<reasoning>\nthinking about it\nstill thinking\n</reasoning>after"
	got := stripReasoning(in)
	want := "beforeafter"
	if got != want {
		t.Errorf("stripReasoning() = %q, want %q", got, want)
	}
}

func TestStripReasoning_NoBlockUnchanged(t *testing.T) {
	t.Parallel()
	in := "just a plain answer with no tags"
	if got := stripReasoning(in); got != in {
		t.Errorf("stripReasoning() = %q, want unchanged %q", got, in)
	}
}

func TestStripReasoning_MultipleBlocks(t *testing.T) {
	t.Parallel()
	in := "<reasoning>a</reasoning>middle<reasoning>b</reasoning>end"
	got := stripReasoning(in)
	want := "middleend"
	if got != want {
		t.Errorf("stripReasoning() = %q, want %q", got, want)
	}
}

func TestStripReasoning_Unclosed_NeverPanics(t *testing.T) {
	t.Parallel()
	in := "<reasoning>never closed"
	got := stripReasoning(in)
	if got != in {
		t.Errorf("stripReasoning() for unclosed tag = %q, want unchanged %q", got, in)
	}
}

func TestRetriesPerModel_MatchesSpec(t *testing.T) {
	t.Parallel()
	if RetriesPerModel != 2 {
		t.Errorf("RetriesPerModel = %d, want 2", RetriesPerModel)
	}
}
