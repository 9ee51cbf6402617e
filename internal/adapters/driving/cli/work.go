package cli

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/docflow-io/docflow/internal/core/services"
)

var (
	workProcesses    int
	workExitOnIdle   bool
	workPollInterval time.Duration
)

var workCmd = &cobra.Command{
	Use:   "work [tool]...",
	Short: "Run workers that process queued documents",
	Long: `Claims pending documents for the named tools and processes them
until interrupted. Without tool arguments, every built-in tool gets
workers. Use --server to pull work from a remote docflow server instead
of the local stores.`,
	RunE: runWork,
}

func init() {
	workCmd.Flags().IntVar(&workProcesses, "processes", 1, "worker count per tool")
	workCmd.Flags().BoolVar(&workExitOnIdle, "exit-on-idle", false, "stop when the queue is empty")
	workCmd.Flags().DurationVar(&workPollInterval, "poll-interval", services.DefaultPollInterval,
		"sleep between empty polls")
	rootCmd.AddCommand(workCmd)
}

func runWork(cmd *cobra.Command, args []string) error {
	queue, err := ensureQueue()
	if err != nil {
		return err
	}

	runners, err := runnersFor(args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = services.RunWorkers(ctx, queue, runners, workProcesses, services.WorkerConfig{
		PollInterval: workPollInterval,
		ExitOnIdle:   workExitOnIdle,
	})
	if err != nil && ctx.Err() != nil {
		// Interrupted by signal; a clean exit.
		return nil
	}
	return err
}
