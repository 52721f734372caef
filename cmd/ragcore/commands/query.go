package commands

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/vicoftech/rag-core-go/internal/logging"
	"github.com/vicoftech/rag-core-go/internal/metrics"
	"github.com/vicoftech/rag-core-go/internal/query"
)

// NewQueryCmd constructs the `ragcore query` command, which runs the Query
// Pipeline once and prints the generated answer. In production this
// pipeline is called directly by an agent orchestration layer; this command
// exists for manual testing and debugging against a live tenant.
func NewQueryCmd() *cobra.Command {
	var tenantID string
	var agentID string
	var question string
	var documentID string

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Ask a question against a tenant's agent and print the answer",
		Long: `Embed the question, retrieve the nearest chunks for (tenant_id, agent_id),
render the agent's prompt template, and generate an answer (spec.md §4.6).

Required environment variables:
  AWS_REGION             AWS region for Bedrock clients
  DB_HOST, DB_NAME, DB_USER, DB_PASSWORD, DB_PORT
                         Postgres connection for the vector store
  MAIN_LLM_MODEL         Primary Bedrock chat model id
  FALLBACK_LLM_MODEL     Fallback Bedrock chat model id, used after the
                         primary exhausts its retries

Examples:
  ragcore query --tenant acme --agent 11111111-1111-1111-1111-111111111111 --question "What is our PTO policy?"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			if tenantID == "" || agentID == "" || question == "" {
				return fmt.Errorf("query: --tenant, --agent, and --question are required")
			}

			clients, err := loadAWSClients(ctx)
			if err != nil {
				return fmt.Errorf("query: %w", err)
			}

			store, err := connectStore(ctx)
			if err != nil {
				return fmt.Errorf("query: %w", err)
			}
			defer store.Close()

			m := metrics.New(nil)
			pipeline := buildQueryPipeline(clients, store, m)

			req := query.Request{TenantID: tenantID, AgentID: agentID, Query: question}
			if documentID != "" {
				docID, err := uuid.Parse(documentID)
				if err != nil {
					return fmt.Errorf("query: --document is not a valid UUID: %w", err)
				}
				req.DocumentID = &docID
			}

			answer, err := pipeline.Answer(ctx, req)
			if err != nil {
				return fmt.Errorf("query: %w", err)
			}

			fmt.Println(answer)
			return nil
		},
	}

	cmd.Flags().StringVar(&tenantID, "tenant", "", "Tenant id (schema name)")
	cmd.Flags().StringVar(&agentID, "agent", "", "Agent id (UUID)")
	cmd.Flags().StringVar(&question, "question", "", "Question to ask")
	cmd.Flags().StringVar(&documentID, "document", "", "Restrict retrieval to a single document id (UUID, optional)")

	return cmd
}
