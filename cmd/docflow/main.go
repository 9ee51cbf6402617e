// Command docflow is the entry point for the document processing queue:
// it serves the queue API, runs workers, and submits and fetches documents.
package main

import (
	"os"

	"github.com/docflow-io/docflow/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
