package cmd

import (
	"fmt"

	"github.com/abhisek/counsel/internal/config"
	"github.com/abhisek/counsel/internal/logging"
	"github.com/abhisek/counsel/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	appCfg *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "counsel",
	Short: "Evaluate counseling strategies against a student grade model",
	Long: `counsel estimates how much each student's final grade could improve if a
set of actionable habits and supports changed, ranks students by expected
gain and effort, and drafts counseling briefs for the most promising ones.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute runs the root command.
func Execute() error {
	defer func() { _ = logger.Sync() }()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides COUNSEL_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file (overrides COUNSEL_CONFIG env var)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(featuresCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(briefCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads configuration and builds the logger before any subcommand.
func setup(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}

	l, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return err
	}
	appCfg, logger = cfg, l
	return nil
}

// resolveDBPath returns the database path using the --db flag (highest
// priority), then the configured db (COUNSEL_DB or the config file), then
// the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	p, _ := cmd.Flags().GetString("db")
	if p == "" && appCfg != nil {
		p = appCfg.DB
	}
	if p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// openStore opens the resolved database.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}
