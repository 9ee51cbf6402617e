package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/docflow-io/docflow/internal/core/ports/driving"
)

var (
	submitDocID        string
	submitResetError   bool
	submitResetPending bool
)

var submitCmd = &cobra.Command{
	Use:   "submit <tool> [file]",
	Short: "Queue a document for processing",
	Long: `Queues the given file (or stdin) for processing by the named
tool and prints the document id. Submitting identical content twice is a
no-op that prints the same id.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().StringVar(&submitDocID, "id", "", "explicit document id")
	submitCmd.Flags().BoolVar(&submitResetError, "reset-error", false, "requeue if the document is in ERROR")
	submitCmd.Flags().BoolVar(&submitResetPending, "reset-pending", false, "requeue if the document is stuck in STARTED")
	rootCmd.AddCommand(submitCmd)
}

func runSubmit(cmd *cobra.Command, args []string) error {
	queue, err := ensureQueue()
	if err != nil {
		return err
	}

	var content []byte
	if len(args) == 2 {
		content, err = os.ReadFile(args[1])
	} else {
		content, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return err
	}

	taskID, docID, err := queue.Submit(cmd.Context(), args[0], string(content), driving.SubmitOptions{
		DocID:        submitDocID,
		ResetError:   submitResetError,
		ResetPending: submitResetPending,
	})
	if err != nil {
		return err
	}

	cmd.Println(docID)
	if flagVerbose {
		cmd.Printf("task: %s\n", taskID)
	}
	return nil
}
