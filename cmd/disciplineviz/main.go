// disciplineviz: Student Data Filter & Visualizer
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/seenimoa/disciplineviz/api"
	"github.com/seenimoa/disciplineviz/internal/config"
	"github.com/seenimoa/disciplineviz/internal/dataset"
	"github.com/seenimoa/disciplineviz/internal/fetch"
	"github.com/seenimoa/disciplineviz/internal/logging"
	"github.com/seenimoa/disciplineviz/internal/store"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config and logger
var (
	cfg    *config.Config
	logger *slog.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "disciplineviz",
	Short: "Student Data Filter & Visualizer",
	Long: `disciplineviz compares student discipline rates across demographic
categories. It serves the filtered dataset over HTTP, renders an
interactive dashboard (browser or terminal), and exposes the same data to
MCP clients.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		logger = logging.New(cfg.Logging)
		slog.SetDefault(logger)
		api.Version = version
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(valuesCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(statusCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("disciplineviz %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  disciplineviz: System Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:       %s (%s)\n", version, commit)
		fmt.Printf("  Config file:   %s\n", config.ConfigFilePath())
		fmt.Printf("  API Server:    %s\n", cfg.Addr())
		fmt.Printf("  Data URL:      %s\n", config.MaskURL(cfg.DataURL()))
		fmt.Println()

		fmt.Println("  Settings:")
		for _, s := range config.CheckSettings(cfg) {
			fmt.Printf("    %-22s %-36s (%s: %s)\n", s.Name+":", s.Value, s.Source, config.EnvVar(s.Key))
		}

		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}

// ════════════════════════════════════════════════════════════════════
// Shared wiring
// ════════════════════════════════════════════════════════════════════

func datasetFilter() dataset.Filter {
	return dataset.Filter{
		District:           cfg.Dataset.District,
		SchoolYear:         cfg.Dataset.SchoolYear,
		Gender:             cfg.Dataset.Gender,
		Grade:              cfg.Dataset.Grade,
		DisciplineCategory: cfg.Dataset.DisciplineCategory,
	}
}

func loadDataset() (*dataset.Dataset, error) {
	d, err := dataset.Load(cfg.Dataset.Path, datasetFilter(), dataset.WithCacheTTL(cfg.Dataset.CacheDuration()))
	if err != nil {
		return nil, err
	}
	logger.Info("dataset loaded", "path", cfg.Dataset.Path, "rows", d.Len(), "raw_rows", d.RawLen())
	return d, nil
}

// newFetcher returns the data source for client-side commands: the CSV
// itself with --local, otherwise the configured data endpoint.
func newFetcher(cmd *cobra.Command) (fetch.Fetcher, error) {
	if local, _ := cmd.Flags().GetBool("local"); local {
		return loadDataset()
	}
	return fetch.NewClient(cfg.DataURL(), fetch.WithUserAgent("disciplineviz/"+version)), nil
}

func newStore(f fetch.Fetcher) *store.Store {
	return store.New(f,
		store.WithLogger(logger),
		store.WithConcurrency(cfg.Dashboard.ConcurrentFetches),
	)
}
