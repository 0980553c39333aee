// Package cli provides the cobra command tree for the notera binary.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	configfile "github.com/notera-io/notera-cli/internal/adapters/driven/config/file"
	"github.com/notera-io/notera-cli/internal/adapters/driven/embedding/lmstudio"
	"github.com/notera-io/notera-cli/internal/adapters/driven/embedding/ollama"
	"github.com/notera-io/notera-cli/internal/adapters/driven/exporter/exportfile"
	"github.com/notera-io/notera-cli/internal/adapters/driven/storage/qdrant"
	"github.com/notera-io/notera-cli/internal/adapters/driven/storage/sqlite"
	"github.com/notera-io/notera-cli/internal/core/ports/driven"
	"github.com/notera-io/notera-cli/internal/core/ports/driving"
	"github.com/notera-io/notera-cli/internal/core/services"
	"github.com/notera-io/notera-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// defaultEmbedRate throttles embedding requests per second during sync so a
// local model server is not flooded.
const defaultEmbedRate = 10

var (
	flagVerbose   bool
	flagConfigDir string
)

// Services wired by initServices. Tests inject their own implementations
// before running a command.
var (
	configStore  driven.ConfigStore
	noteExporter driven.NoteExporter
	embedder     driven.EmbeddingService
	vectorStore  driven.VectorStore
	syncRunner   driving.SyncRunner
	queryService driving.QueryService
)

var rootCmd = &cobra.Command{
	Use:   "notera",
	Short: "Semantic search over your Apple Notes",
	Long: `Notera keeps a local vector index of your Apple Notes export and
answers natural-language queries against it, ranking results by a blend of
semantic similarity and recency.

All data stays on this machine: embeddings come from a local model server
(LM Studio or Ollama) and the index lives under ~/.notera.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(flagVerbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config", "", "config directory (default ~/.notera)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// SetVersion overrides the build version string.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// initServices wires the adapters behind the port variables. Already-set
// services (e.g. injected by tests) are left alone.
func initServices(cmd *cobra.Command) error {
	if configStore == nil {
		store, err := configfile.NewConfigStore(flagConfigDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		configStore = store
	}

	if noteExporter == nil {
		noteExporter = exportfile.New(configStore.GetString("export.path"))
	}

	if embedder == nil {
		e, err := buildEmbedder(configStore)
		if err != nil {
			return err
		}
		embedder = e
	}

	if vectorStore == nil {
		s, err := buildVectorStore(cmd, configStore, embedder.Dimensions())
		if err != nil {
			return err
		}
		vectorStore = s
	}

	if syncRunner == nil {
		embedRate := configStore.GetInt("sync.embed_rate")
		if embedRate <= 0 {
			embedRate = defaultEmbedRate
		}
		limiter := rate.NewLimiter(rate.Limit(embedRate), embedRate)
		syncRunner = services.NewSyncService(noteExporter, embedder, vectorStore, limiter)
	}

	if queryService == nil {
		queryService = services.NewRetrievalService(embedder, vectorStore)
	}

	return nil
}

func buildEmbedder(cfg driven.ConfigStore) (driven.EmbeddingService, error) {
	provider := cfg.GetString("embedding.provider")

	switch provider {
	case "", "lmstudio":
		return lmstudio.NewEmbeddingService(lmstudio.Config{
			BaseURL:    cfg.GetString("embedding.base_url"),
			Model:      cfg.GetString("embedding.model"),
			Dimensions: cfg.GetInt("embedding.dimensions"),
		}), nil
	case "ollama":
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL:    cfg.GetString("embedding.base_url"),
			Model:      cfg.GetString("embedding.model"),
			Dimensions: cfg.GetInt("embedding.dimensions"),
		}), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q (want lmstudio or ollama)", provider)
	}
}

func buildVectorStore(cmd *cobra.Command, cfg driven.ConfigStore, dimensions int) (driven.VectorStore, error) {
	backend := cfg.GetString("index.backend")

	switch backend {
	case "", "sqlite":
		return sqlite.NewStore(cfg.GetString("index.data_dir"))
	case "qdrant":
		return qdrant.NewStore(cmd.Context(), qdrant.Config{
			Host:       cfg.GetString("qdrant.host"),
			Port:       cfg.GetInt("qdrant.port"),
			Collection: cfg.GetString("qdrant.collection"),
			Dimensions: dimensions,
		})
	default:
		return nil, fmt.Errorf("unknown index backend %q (want sqlite or qdrant)", backend)
	}
}
