// Package commands defines all Cobra CLI commands for the ragcore binary.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/vicoftech/rag-core-go/internal/audit"
	"github.com/vicoftech/rag-core-go/internal/config"
	"github.com/vicoftech/rag-core-go/internal/logging"
)

// configPath holds the --config flag value for YAML config file override.
var configPath string

// loadedConfigPath stores the resolved config file path for audit logging.
var loadedConfigPath string

// NewRootCmd constructs the root Cobra command that all subcommands attach to.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ragcore",
		Short: "ragcore — a multi-tenant retrieval-augmented generation backend",
		Long: `ragcore ingests PDF documents into a per-tenant pgvector store and answers
questions against them using a Bedrock-hosted embedding and chat model.

Ingestion is normally triggered by an object-store event (see 'ragcore ingest');
queries are normally issued by an agent orchestration layer (see 'ragcore query').
'ragcore serve' exposes both as a thin local HTTP gateway.

Configuration is layered: defaults, then an optional YAML config file
(~/.ragcore/config.yaml or --config), then environment variables, which
always win.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			log := logging.New()

			// Load YAML config (env vars always override YAML values).
			path, err := config.Load(configPath, log)
			if err != nil {
				return err
			}
			loadedConfigPath = path

			// Emit structured audit log for every command invocation.
			audit.LogCommandStart(log, cmd.Name(), loadedConfigPath)

			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (default: ~/.ragcore/config.yaml)")

	root.AddCommand(
		NewIngestCmd(),
		NewQueryCmd(),
		NewServeCmd(),
		NewVersionCmd(),
	)

	return root
}
