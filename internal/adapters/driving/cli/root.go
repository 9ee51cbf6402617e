// Package cli wires the docflow commands. Each command lives in its own
// file and registers itself on the root command in init().
package cli

import (
	"errors"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/docflow-io/docflow/internal/adapters/driven/blob/fs"
	configfile "github.com/docflow-io/docflow/internal/adapters/driven/config/file"
	"github.com/docflow-io/docflow/internal/adapters/driven/remote"
	"github.com/docflow-io/docflow/internal/adapters/driven/storage/sqlite"
	"github.com/docflow-io/docflow/internal/adapters/driven/tools/upper"
	"github.com/docflow-io/docflow/internal/core/ports/driven"
	"github.com/docflow-io/docflow/internal/core/ports/driving"
	"github.com/docflow-io/docflow/internal/core/services"
	"github.com/docflow-io/docflow/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services used by the commands. ensureQueue populates them lazily from
// flags and config; tests replace them directly.
var (
	queueSvc     driving.Queue
	toolRegistry driving.ToolRegistry
	configStore  driven.ConfigStore
	metaStore    *sqlite.Store
)

var (
	flagVerbose   bool
	flagConfigDir string
	flagDataDir   string
	flagServer    string
	flagToken     string
)

var rootCmd = &cobra.Command{
	Use:   "docflow",
	Short: "Content-addressed document processing queue",
	Long: `docflow queues text documents for processing by named tools.
Documents are deduplicated by content, workers pull work over the queue
API, and results are fetched by document id.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(flagVerbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "config directory (default ~/.docflow)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default ~/.docflow)")
	rootCmd.PersistentFlags().StringVar(&flagServer, "server", "", "docflow server URL; when set, commands go over HTTP")
	rootCmd.PersistentFlags().StringVar(&flagToken, "token", "", "authentication token for the server")
}

// Execute runs the CLI.
func Execute() error {
	defer closeStores()
	return rootCmd.Execute()
}

// ensureQueue wires the queue service on first use. With --server (or a
// server.url config entry) it returns an HTTP client; otherwise it opens
// the local SQLite and blob stores.
func ensureQueue() (driving.Queue, error) {
	if queueSvc != nil {
		return queueSvc, nil
	}

	cfg, err := ensureConfig()
	if err != nil {
		return nil, err
	}

	server := flagServer
	if server == "" {
		server = cfg.GetString("server.url")
	}
	token := flagToken
	if token == "" {
		token = cfg.GetString("server.token")
	}

	if server != "" {
		queueSvc = remote.NewClient(server, token)
		return queueSvc, nil
	}

	registry, err := ensureRegistry()
	if err != nil {
		return nil, err
	}

	dataDir := flagDataDir
	if dataDir == "" {
		dataDir = cfg.GetString("data_dir")
	}

	var sqliteDir, blobDir string
	if dataDir != "" {
		sqliteDir = filepath.Join(dataDir, "data")
		blobDir = filepath.Join(dataDir, "blobs")
	}

	store, err := sqlite.NewStore(sqliteDir)
	if err != nil {
		return nil, err
	}
	metaStore = store

	blobs, err := fs.NewBlobStore(blobDir)
	if err != nil {
		return nil, err
	}

	queueSvc = services.NewQueueService(store.LifecycleStore(), blobs, registry)
	return queueSvc, nil
}

// ensureConfig opens the TOML config store on first use.
func ensureConfig() (driven.ConfigStore, error) {
	if configStore != nil {
		return configStore, nil
	}
	cfg, err := configfile.NewConfigStore(flagConfigDir)
	if err != nil {
		return nil, err
	}
	configStore = cfg
	return configStore, nil
}

// ensureRegistry builds the tool registry with the built-in tools.
func ensureRegistry() (driving.ToolRegistry, error) {
	if toolRegistry != nil {
		return toolRegistry, nil
	}
	registry := services.NewToolRegistry()
	if err := registry.Register(upper.New()); err != nil {
		return nil, err
	}
	toolRegistry = registry
	return toolRegistry, nil
}

// runnersFor resolves tool names against the registry. No names means all
// registered tools.
func runnersFor(names []string) ([]driven.ToolRunner, error) {
	registry, err := ensureRegistry()
	if err != nil {
		return nil, err
	}

	if len(names) == 0 {
		names = registry.Names()
	}
	if len(names) == 0 {
		return nil, errors.New("no tools registered")
	}

	runners := make([]driven.ToolRunner, 0, len(names))
	for _, name := range names {
		runner, err := registry.Get(name)
		if err != nil {
			return nil, err
		}
		runners = append(runners, runner)
	}
	return runners, nil
}

func closeStores() {
	if metaStore != nil {
		if err := metaStore.Close(); err != nil {
			logger.Warn("closing store: %v", err)
		}
		metaStore = nil
	}
}
