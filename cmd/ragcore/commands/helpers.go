package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/textract"

	"github.com/vicoftech/rag-core-go/internal/embedclient"
	"github.com/vicoftech/rag-core-go/internal/extract"
	"github.com/vicoftech/rag-core-go/internal/ingest"
	"github.com/vicoftech/rag-core-go/internal/llmclient"
	"github.com/vicoftech/rag-core-go/internal/metrics"
	"github.com/vicoftech/rag-core-go/internal/query"
	"github.com/vicoftech/rag-core-go/internal/server"
	"github.com/vicoftech/rag-core-go/internal/vectorstore"
)

// awsClients bundles the AWS SDK clients shared by the ingest and query
// pipelines so each command only resolves the credential chain once.
type awsClients struct {
	bedrock  *bedrockruntime.Client
	s3       *s3.Client
	textract *textract.Client
}

// loadAWSClients resolves the default AWS credential chain (environment,
// shared config, EC2/ECS role) for AWS_REGION and constructs the three
// service clients the pipelines depend on.
func loadAWSClients(ctx context.Context) (*awsClients, error) {
	region := getEnvOrDefault("AWS_REGION", "us-east-1")

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}

	// AWS_ACCESS_KEY_ID/AWS_SECRET_ACCESS_KEY override the default chain
	// (env → shared config → EC2/ECS role) with a fixed static pair, e.g.
	// when running against a non-AWS S3-compatible endpoint in dev.
	if akID := os.Getenv("AWS_ACCESS_KEY_ID"); akID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(akID, os.Getenv("AWS_SECRET_ACCESS_KEY"), os.Getenv("AWS_SESSION_TOKEN")),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("aws: failed to load credential chain: %w", err)
	}

	return &awsClients{
		bedrock:  bedrockruntime.NewFromConfig(cfg),
		s3:       s3.NewFromConfig(cfg),
		textract: textract.NewFromConfig(cfg),
	}, nil
}

// connectStore opens the Postgres pool backing the vector store from
// DB_HOST/DB_PORT/DB_NAME/DB_USER/DB_PASSWORD.
func connectStore(ctx context.Context) (*vectorstore.Store, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		getEnvOrDefault("DB_USER", "postgres"),
		os.Getenv("DB_PASSWORD"),
		getEnvOrDefault("DB_HOST", "localhost"),
		getEnvInt("DB_PORT", 5432),
		getEnvOrDefault("DB_NAME", "ragcore"),
	)

	store, err := vectorstore.Connect(ctx, dsn, int32(getEnvInt("DB_MAX_CONNS", 10))) //nolint:gosec // bounded by config
	if err != nil {
		return nil, fmt.Errorf("vectorstore: failed to connect: %w", err)
	}
	return store, nil
}

// buildIngestPipeline wires the Ingestion Pipeline (spec.md §4) from the
// shared AWS clients, vector store, and metrics.
func buildIngestPipeline(clients *awsClients, store *vectorstore.Store, m *metrics.Metrics) *ingest.Pipeline {
	embedder := embedclient.New(clients.bedrock, getEnvOrDefault("EMBEDDINGS_MODEL", embedclient.DefaultModel))

	ocrCfg := extract.OCRConfig{
		MaxAttempts:  getEnvInt("OCR_POLL_MAX_ATTEMPTS", extract.DefaultOCRConfig.MaxAttempts),
		BaseInterval: time.Duration(getEnvInt("OCR_POLL_BASE_INTERVAL", int(extract.DefaultOCRConfig.BaseInterval.Seconds()))) * time.Second,
	}
	extractor := extract.New(clients.textract, ocrCfg)
	downloader := ingest.NewS3Downloader(clients.s3)

	return ingest.New(downloader, extractor, embedder, store, m, "")
}

// buildQueryPipeline wires the Query Pipeline (spec.md §4.6) from the shared
// AWS clients, vector store, and metrics.
func buildQueryPipeline(clients *awsClients, store *vectorstore.Store, m *metrics.Metrics) *query.Pipeline {
	embedder := embedclient.New(clients.bedrock, getEnvOrDefault("EMBEDDINGS_MODEL", embedclient.DefaultModel))

	llm := llmclient.New(
		clients.bedrock,
		getEnvOrDefault("MAIN_LLM_MODEL", ""),
		getEnvOrDefault("FALLBACK_LLM_MODEL", ""),
		getEnvInt("OUTPUT_TOKENS", llmclient.DefaultOutputTokens),
		m,
	)

	return query.New(embedder, store, llm, m)
}

// buildPingers constructs the readiness probes for GET /api/ready.
func buildPingers(store *vectorstore.Store) []server.Pinger {
	return []server.Pinger{
		server.NewPostgresPinger(store.Pool()),
	}
}

// getEnvOrDefault returns the value of the named environment variable, or
// fallback if the variable is unset or empty.
func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt returns the integer value of the named environment variable, or
// fallback if the variable is unset, empty, or not parseable as an integer.
func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
