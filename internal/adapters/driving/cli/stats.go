package cli

import (
	"github.com/spf13/cobra"

	"github.com/docflow-io/docflow/internal/core/domain"
)

var statsCmd = &cobra.Command{
	Use:   "stats <tool>",
	Short: "Print per-status document counts for a tool",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	queue, err := ensureQueue()
	if err != nil {
		return err
	}

	counts, err := queue.Statistics(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	total := 0
	for _, status := range domain.Statuses {
		if status == domain.StatusUnknown {
			continue
		}
		cmd.Printf("%-8s %d\n", string(status), counts[status])
		total += counts[status]
	}
	cmd.Printf("%-8s %d\n", "TOTAL", total)
	return nil
}
