// Command ragcore is the entry point for the multi-tenant RAG backend.
// It provides a CLI interface (via Cobra) for running the ingestion and
// query pipelines ad hoc, and an HTTP gateway for local/manual use.
package main

import (
	"fmt"
	"os"

	"github.com/vicoftech/rag-core-go/cmd/ragcore/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
