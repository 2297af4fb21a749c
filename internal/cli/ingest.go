// ingest.go implements "muselog ingest": load events from a file,
// NDJSON dump, or stdin.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/muselabs/muselog/internal/applog"
	"github.com/muselabs/muselog/internal/ingest"
	"github.com/muselabs/muselog/internal/storage"
	"github.com/muselabs/muselog/migrations"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file|-]",
	Short: "Ingest events from a JSON file, an NDJSON file, or stdin",
	Long: `Ingest events into the store and the append log. The input is
treated as a single JSON event first; if that fails it is read as
newline-delimited events. Use "-" to read NDJSON from stdin.

Malformed lines in an NDJSON input are skipped and counted.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
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

	var logWriter *applog.Writer
	if cfg.LogDir != "" {
		logWriter = applog.NewWriter(cfg.LogDir)
	}

	pipeline := ingest.New(store, logWriter, logger)
	res, err := pipeline.File(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Ingested %d event(s), skipped %d.\n", res.Stored, res.Skipped)
	return nil
}
