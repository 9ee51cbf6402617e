package cli

import (
	"github.com/spf13/cobra"
)

var resultFormat string

var resultCmd = &cobra.Command{
	Use:   "result <tool> <id>",
	Short: "Print the stored result of a processed document",
	Long: `Prints the result of a DONE document. Fails with the stored
error text when processing failed, and with a not-ready error while the
document is still queued or in flight.`,
	Args: cobra.ExactArgs(2),
	RunE: runResult,
}

func init() {
	resultCmd.Flags().StringVar(&resultFormat, "format", "", "convert the result via the tool (e.g. json)")
	rootCmd.AddCommand(resultCmd)
}

func runResult(cmd *cobra.Command, args []string) error {
	queue, err := ensureQueue()
	if err != nil {
		return err
	}

	result, err := queue.Result(cmd.Context(), args[0], args[1], resultFormat)
	if err != nil {
		return err
	}

	cmd.Println(result)
	return nil
}
