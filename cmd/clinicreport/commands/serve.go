package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"

	"clinicreport/internal/backend"
	"clinicreport/internal/cli"
	"clinicreport/internal/events"
	apphttp "clinicreport/internal/http"
	applog "clinicreport/internal/log"
	"clinicreport/internal/middleware/ratelimit"
	"clinicreport/internal/report"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the report web server",
	Long: `Start the HTTP server with the expense report at /admin/expenses, the JSON
API under /api and health checks at /healthz and /readyz.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(parent context.Context) error {
	cfg, logger, err := loadConfig(false)
	if err != nil {
		return err
	}
	ctx, stop := cli.SignalContext(parent)
	defer stop()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	scope, err := report.ParseChartScope(cfg.ChartScope)
	if err != nil {
		return err
	}

	bus := events.NewBus()
	bcfg, err := backend.FromAppConfig(cfg, bus)
	if err != nil {
		return err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return fmt.Errorf("create %s backend: %w", cfg.DataBackend, err)
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", applog.FieldError, err)
		}
	}()

	sessions, closeSessions := cli.NewSessionProvider(cfg, logger)
	defer func() { _ = closeSessions() }()

	ready := res.Ping
	if p, ok := sessions.(interface{ Ping(context.Context) error }); ok {
		ready = func(ctx context.Context) error {
			if err := res.Ping(ctx); err != nil {
				return err
			}
			if err := p.Ping(ctx); err != nil {
				return fmt.Errorf("session store: %w", err)
			}
			return nil
		}
	}

	srv, err := apphttp.NewServer(apphttp.Config{
		Addr:                ":" + cfg.Port,
		Source:              res.Source,
		Sessions:            sessions,
		Events:              bus,
		Location:            loc,
		ChartScope:          scope,
		DefaultPageSize:     cfg.DefaultPageSize,
		SessionCookie:       cfg.SessionCookie,
		ControllerCacheSize: cfg.ControllerCacheSize,
		RateLimit:           ratelimit.DefaultConfig(),
		Ready:               ready,
		Logger:              logger,
	})
	if err != nil {
		return err
	}

	figure.NewColorFigure("ClinicReport", "puffy", "green", true).Print()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting clinicreport server",
			applog.FieldOperation, applog.OpStartup,
			"port", cfg.Port,
			applog.FieldBackend, cfg.DataBackend,
			"chart_scope", scope)
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
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", applog.FieldOperation, applog.OpShutdown, applog.FieldError, err)
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}
