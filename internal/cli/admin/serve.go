package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloo-solutions/onboardai/internal/api/handlers"
	"github.com/cloo-solutions/onboardai/internal/jobs"
	"github.com/cloo-solutions/onboardai/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	shutdownTimeout = 30 * time.Second
	// the brief deadline plus headroom for encoding
	writeTimeout = 90 * time.Second
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the onboarding assistant API server, and the sync scheduler when enabled",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "", "Port to listen on (overrides ONBOARD_PORT)")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")
	cmd.Flags().Bool("scheduler", false, "Run the sync and intel schedules (overrides ONBOARD_SCHEDULER_ENABLED)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	app, err := loadApp(ctx, appOptions{migrate: !noMigrate})
	if err != nil {
		return err
	}
	defer app.Close()
	cfg, logger := app.Config, app.Logger

	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Port = port
	}
	if on, _ := cmd.Flags().GetBool("scheduler"); on {
		cfg.SchedulerEnabled = true
	}

	var scheduler *jobs.Scheduler
	if cfg.SchedulerEnabled {
		scheduler, err = newScheduler(app)
		if err != nil {
			return err
		}
		go scheduler.Start(ctx)
	}

	router := server.NewRouter(server.RouterConfig{
		Logger:           logger,
		AdminToken:       cfg.AdminToken,
		HealthHandler:    handlers.NewHealthHandler(app.Handles),
		AssistantHandler: handlers.NewAssistantHandler(app.Assistant),
		SyncHandler:      handlers.NewSyncHandler(app.Ingestion),
		IntelHandler:     handlers.NewIntelHandler(app.Intel),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	if scheduler != nil {
		scheduler.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exited")
	return nil
}

// newScheduler registers the periodic ingestion pass and competitor refresh.
func newScheduler(app *App) (*jobs.Scheduler, error) {
	cfg := app.Config
	scheduler := jobs.NewScheduler(app.Logger.Named("scheduler"), time.Hour)

	err := scheduler.Add("sync", cfg.SyncSchedule, func(ctx context.Context) error {
		res, err := app.Ingestion.Sync(ctx)
		if err != nil {
			return err
		}
		app.Logger.Info("scheduled sync stored items", zap.Int("total", res.Total()))
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = scheduler.Add("intel", cfg.IntelSchedule, func(ctx context.Context) error {
		_, err := app.Intel.Refresh(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return scheduler, nil
}
