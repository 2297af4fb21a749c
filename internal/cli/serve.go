// serve.go implements "muselog serve": the HTTP ingest + labeling server.
package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/muselabs/muselog/internal/applog"
	"github.com/muselabs/muselog/internal/ingest"
	"github.com/muselabs/muselog/internal/server"
	"github.com/muselabs/muselog/internal/storage"
	"github.com/muselabs/muselog/internal/telemetry"
	"github.com/muselabs/muselog/migrations"
	"github.com/muselabs/muselog/ui"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP ingest API and labeling UI",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("muselog starting", "version", version, "port", cfg.Port, "db", cfg.DBPath)

	otelShutdown, err := telemetry.Init(ctx, cfg.OTELEndpoint, cfg.ServiceName, version, cfg.OTELInsecure)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() { _ = otelShutdown(context.Background()) }()

	store, err := storage.Open(ctx, cfg.DBPath, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.RunMigrations(ctx, migrations.FS); err != nil {
		return err
	}

	var logWriter *applog.Writer
	if cfg.LogDir != "" {
		logWriter = applog.NewWriter(cfg.LogDir)
	}

	uiFS, err := ui.StaticFS()
	if err != nil {
		return fmt.Errorf("ui: %w", err)
	}

	srv := server.New(server.ServerConfig{
		Store:               store,
		Pipeline:            ingest.New(store, logWriter, logger),
		Logger:              logger,
		Port:                cfg.Port,
		ReadTimeout:         cfg.ReadTimeout,
		WriteTimeout:        cfg.WriteTimeout,
		Version:             version,
		MaxRequestBodyBytes: cfg.MaxRequestBodyBytes,
		UIFS:                uiFS,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
