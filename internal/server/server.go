// Package server provides the main server initialization and run logic.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/stationdesk/stationdesk/internal/api"
	"github.com/stationdesk/stationdesk/internal/api/handlers"
	"github.com/stationdesk/stationdesk/internal/audit"
	"github.com/stationdesk/stationdesk/internal/config"
	"github.com/stationdesk/stationdesk/internal/db"
	"github.com/stationdesk/stationdesk/internal/logger"
	"github.com/stationdesk/stationdesk/internal/rbac"
)

// Config holds the server configuration options.
type Config struct {
	Port    int    // Port to run the server on (0 = use config default)
	Version string // Version string to report
}

// Run starts the server with the given configuration and blocks until the
// context is canceled.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Version != "" {
		handlers.Version = cfg.Version
	}

	appCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if cfg.Port != 0 {
		appCfg.Server.Port = cfg.Port
	}

	logger.Init(appCfg.Log.Format, appCfg.Log.Level)
	slog.Info("Starting Stationdesk server", "version", cfg.Version, "mode", appCfg.Server.Mode)

	database, err := db.New(appCfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	slog.Info("Database initialized", "driver", appCfg.Database.Driver)

	if err := db.Migrate(database); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Info("Database migrations completed")

	if err := rbac.InitEnforcer(database, slog.Default()); err != nil {
		return fmt.Errorf("failed to initialize RBAC enforcer: %w", err)
	}

	// The recorder must be running before the first request so no mutation
	// goes unobserved.
	store := audit.NewStore(database)
	recorder := audit.NewRecorder(store, appCfg.Audit.QueueSize, appCfg.Audit.Workers)
	recorder.Start()
	slog.Info("Audit recorder started",
		"queue_size", appCfg.Audit.QueueSize,
		"workers", appCfg.Audit.Workers,
	)

	if err := db.CreateDefaultAdmin(database, recorder); err != nil {
		return fmt.Errorf("failed to create default admin user: %w", err)
	}

	auditor := audit.NewAuditor(recorder)
	router := api.NewRouter(appCfg, database, auditor)

	addr := fmt.Sprintf(":%d", appCfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		slog.Info("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	err = g.Wait()

	// Drain pending audit writes only after the HTTP side has stopped
	// producing events.
	recorder.Stop()
	slog.Info("Audit recorder stopped")

	if err != nil {
		return err
	}
	slog.Info("Stationdesk exited")
	return nil
}

// RunWithSignalHandling starts the server and handles OS signals for graceful shutdown.
func RunWithSignalHandling(cfg Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- Run(ctx, cfg)
	}()

	select {
	case sig := <-quit:
		slog.Info("Received signal", "signal", sig)
		cancel()
		return <-errCh
	case err := <-errCh:
		return err
	}
}
