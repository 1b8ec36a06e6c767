package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"skillboard/backend/api"
	"skillboard/backend/config"
	"skillboard/backend/handlers"
	"skillboard/backend/metrics"
	"skillboard/backend/middleware"
	"skillboard/backend/services"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard API server",
		Long: `Start the HTTP API. Records are loaded from the database or, with
source: datasets, from YAML dataset files which can be watched for changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func runServe(ctx context.Context, opts *options) error {
	cfg, logger := opts.cfg, opts.logger
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := opts.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	store, datasets, err := opts.recordStore(db)
	if err != nil {
		return err
	}

	m := metrics.New()
	recordService := opts.newRecordService(store, m)
	if err := recordService.ReloadAll(ctx); err != nil {
		// Tables that failed to load report the error state until the next reload
		logger.Error("initial load incomplete", "error", err)
	}

	if datasets != nil && cfg.WatchDatasets {
		watcher := services.NewDatasetWatcher(datasets, recordService, logger)
		go func() {
			if err := watcher.Run(ctx, nil); err != nil {
				logger.Error("dataset watcher stopped", "error", err)
			}
		}()
	}
	go services.NewRefresher(recordService, cfg.RefreshInterval, logger).Run(ctx)

	auth, err := middleware.NewAuthenticator(ctx, cfg.Firebase, cfg.IsProduction(), logger)
	if err != nil {
		return fmt.Errorf("initializing authentication: %w", err)
	}

	h := handlers.New(recordService, services.NewFilterService(db, recordService.Validator()), services.NewReportService(db, recordService), logger)
	server := api.NewServer(h, auth, api.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Development:    cfg.Env == config.EnvDevelopment,
		Metrics:        m,
		Logger:         logger,
	})

	srv := &http.Server{
		Handler:      server.Handler(),
		Addr:         cfg.Addr,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("addr", cfg.Addr), slog.String("env", cfg.Env), slog.String("source", cfg.Source))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}
