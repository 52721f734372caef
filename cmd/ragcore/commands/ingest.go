package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vicoftech/rag-core-go/internal/ingest"
	"github.com/vicoftech/rag-core-go/internal/logging"
	"github.com/vicoftech/rag-core-go/internal/metrics"
)

// NewIngestCmd constructs the `ragcore ingest` command, which runs the
// Ingestion Pipeline once against a single object-store key. In production
// this same pipeline is invoked per object-created event by a queue
// consumer; this command gives operators a way to backfill or replay a
// single document without standing up the event source.
func NewIngestCmd() *cobra.Command {
	var bucket string
	var key string

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Run the ingestion pipeline against a single S3 object",
		Long: `Download, extract, chunk, embed, and persist a single PDF object.

The object key must be shaped tenant_id/agent_id/.../file_name.pdf — the
tenant_id and agent_id segments are parsed from it (spec.md §4.1). A fresh
document_id is minted for this run, so replaying the same key reprocesses
the document as new rows rather than updating existing ones.

Required environment variables:
  AWS_REGION            AWS region for Bedrock/S3/Textract clients
  DB_HOST, DB_NAME, DB_USER, DB_PASSWORD, DB_PORT
                        Postgres connection for the vector store
  EMBEDDINGS_MODEL       Bedrock embedding model id (default: cohere.embed-v4:0)

Examples:
  ragcore ingest --bucket docs-bucket --key "acme/11111111-1111-1111-1111-111111111111/handbook.pdf"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			if bucket == "" || key == "" {
				return fmt.Errorf("ingest: --bucket and --key are required")
			}

			clients, err := loadAWSClients(ctx)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			store, err := connectStore(ctx)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}
			defer store.Close()

			m := metrics.New(nil)
			pipeline := buildIngestPipeline(clients, store, m)

			if err := pipeline.Ingest(ctx, ingest.ObjectCreatedEvent{Bucket: bucket, Key: key}); err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			log.Info("ingest: document processed", "bucket", bucket, "key", key)
			return nil
		},
	}

	cmd.Flags().StringVar(&bucket, "bucket", "", "S3 bucket containing the object")
	cmd.Flags().StringVar(&key, "key", "", "S3 object key, shaped tenant_id/agent_id/.../file_name.pdf")

	return cmd
}
