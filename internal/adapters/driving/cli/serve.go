package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/docflow-io/docflow/internal/adapters/driving/rest"
	"github.com/docflow-io/docflow/internal/core/services"
)

var (
	serveAddr    string
	serveToken   string
	serveWorkers int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the queue API server",
	Long: `Starts the HTTP server exposing the queue API over the local
stores. With --workers, the server also runs embedded workers for the
built-in tools, so a single process can both queue and process.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":5001", "listen address")
	serveCmd.Flags().StringVar(&serveToken, "auth-token", "", "require this token on every request")
	serveCmd.Flags().IntVar(&serveWorkers, "workers", 0, "embedded worker count per tool")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	queue, err := ensureQueue()
	if err != nil {
		return err
	}

	token := serveToken
	if token == "" && configStore != nil {
		token = configStore.GetString("server.token")
	}

	server := rest.NewServer(queue, rest.Options{Addr: serveAddr, Token: token})
	if err := server.Start(); err != nil {
		return err
	}
	cmd.Printf("Serving queue API on %s\n", server.Addr())

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	workersDone := make(chan struct{})
	if serveWorkers > 0 {
		runners, err := runnersFor(nil)
		if err != nil {
			return err
		}
		go func() {
			defer close(workersDone)
			// Context cancellation is the shutdown path here, not an error.
			_ = services.RunWorkers(ctx, queue, runners, serveWorkers, services.WorkerConfig{})
		}()
	} else {
		close(workersDone)
	}

	select {
	case <-ctx.Done():
	case err := <-server.Err():
		return err
	}

	cmd.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	<-workersDone
	return nil
}
