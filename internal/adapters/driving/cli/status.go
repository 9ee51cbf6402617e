package cli

import (
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <tool> <id>",
	Short: "Print the status of a document",
	Args:  cobra.ExactArgs(2),
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	queue, err := ensureQueue()
	if err != nil {
		return err
	}

	status, err := queue.Status(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}

	cmd.Println(string(status))
	return nil
}
