// report.go implements "muselog report": run one canned aggregate query.
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/muselabs/muselog/internal/report"
	"github.com/muselabs/muselog/internal/storage"
)

var reportCmd = &cobra.Command{
	Use:       "report <name>",
	Short:     "Run a canned aggregate query",
	Long:      "Run one of the fixed aggregate queries over stored runs:\n  " + strings.Join(storage.ReportNames(), "\n  "),
	Args:      cobra.ExactArgs(1),
	ValidArgs: storage.ReportNames(),
	RunE:      runReport,
}

func runReport(cmd *cobra.Command, args []string) error {
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

	rep, err := store.RunReport(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}

	return report.Render(cmd.OutOrStdout(), rep)
}
