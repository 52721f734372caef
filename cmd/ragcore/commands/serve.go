package commands

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vicoftech/rag-core-go/internal/logging"
	"github.com/vicoftech/rag-core-go/internal/metrics"
	"github.com/vicoftech/rag-core-go/internal/server"
)

// NewServeCmd constructs the `ragcore serve` command, which starts the thin
// HTTP gateway in front of the Ingestion and Query pipelines.
func NewServeCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the ragcore HTTP gateway",
		Long: `Start the ragcore HTTP server, exposing POST /api/ingest, POST /api/query,
GET /api/health, GET /api/ready, and GET /metrics.

This gateway is a convenience entry point, not the production trigger path:
ingestion is normally driven by object-store events and queries by an agent
orchestration layer calling the pipelines in-process.

Examples:
  ragcore serve
  ragcore serve --port 9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			// SERVER_HOST/SERVER_PORT apply when the matching flag is not given;
			// unset RATE_LIMIT_RPS/RATE_LIMIT_BURST keep the server defaults.
			if !cmd.Flags().Changed("host") {
				host = getEnvOrDefault("SERVER_HOST", host)
			}
			if !cmd.Flags().Changed("port") {
				port = getEnvInt("SERVER_PORT", port)
			}
			rps, _ := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)

			clients, err := loadAWSClients(ctx)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}

			store, err := connectStore(ctx)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			defer store.Close()

			m := metrics.New(nil)
			ingestPipeline := buildIngestPipeline(clients, store, m)
			queryPipeline := buildQueryPipeline(clients, store, m)

			srv, err := server.New(ingestPipeline, queryPipeline, &server.Config{
				Host:      host,
				Port:      port,
				Logger:    log,
				Pingers:   buildPingers(store),
				RateLimit: rps,
				RateBurst: getEnvInt("RATE_LIMIT_BURST", 0),
			})
			if err != nil {
				return fmt.Errorf("serve: failed to create server: %w", err)
			}

			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Host address to bind to")
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "TCP port to listen on")

	return cmd
}
