// Package cli defines the cobra command tree for the muselog binary.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/muselabs/muselog/internal/config"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	flagDB     string
	flagLogDir string
)

var rootCmd = &cobra.Command{
	Use:   "muselog",
	Short: "Durable recording and review of model-query runs",
	Long: `Muselog records structured events from model-querying sessions into
a SQLite store, mirrors them to per-day NDJSON append logs, and serves
a small labeling workflow for quality review.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path (overrides MUSE_DB)")
	rootCmd.PersistentFlags().StringVar(&flagLogDir, "logdir", "", "NDJSON append log directory (overrides MUSE_LOGDIR; \"none\" disables)")
	rootCmd.AddCommand(initCmd, ingestCmd, reportCmd, serveCmd)
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig loads env configuration and applies flag overrides.
func loadConfig() (config.Config, error) {
	// A .env file is a dev convenience; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if flagDB != "" {
		cfg.DBPath = flagDB
	}
	if flagLogDir != "" {
		if flagLogDir == "none" {
			cfg.LogDir = ""
		} else {
			cfg.LogDir = flagLogDir
		}
	}
	return cfg, nil
}

// newLogger builds the structured logger shared by all commands.
// Diagnostics go to stderr so stdout stays clean for command output.
func newLogger(level string) *slog.Logger {
	lvl := slog.LevelInfo
	if level == "debug" {
		lvl = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return logger
}
