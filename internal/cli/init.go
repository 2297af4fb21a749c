// init.go implements "muselog init": create the schema and exit.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/muselabs/muselog/internal/storage"
	"github.com/muselabs/muselog/migrations"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the database schema",
	Long: `Create the sessions and runs tables and their indexes.
Safe to run on an existing database; applied migrations are skipped.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.LogLevel)

	store, err := storage.Open(cmd.Context(), cfg.DBPath, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.RunMigrations(cmd.Context(), migrations.FS); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized: %s\n", cfg.DBPath)
	return nil
}
