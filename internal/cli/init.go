// Package cli holds the process setup shared by the clinicreport commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"clinicreport/internal/config"
	applog "clinicreport/internal/log"
	"clinicreport/internal/session"
)

// DevUserID identifies the session used when DEV_SESSION is enabled.
const DevUserID = "dev-admin"

// SetupLogger builds the process logger at level and makes it the slog default.
func SetupLogger(level string) *applog.Logger {
	cfg := applog.DefaultConfig()
	cfg.Level = applog.ParseLevel(level)
	logger := applog.New(cfg)
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads .env style files for local development. Missing files
// are ignored, other read errors are returned.
func LoadEnvFile(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load env file %s: %w", f, err)
		}
	}
	return nil
}

// LoadAndValidateConfig loads configuration from the environment and
// validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewSessionProvider returns the redis provider when REDIS_ADDR is set and
// a fixed development session otherwise. The cleanup func is never nil.
func NewSessionProvider(cfg *config.Config, logger *applog.Logger) (session.Provider, func() error) {
	if cfg.RedisAddr != "" {
		p := session.NewRedisProvider(session.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, logger)
		logger.Info("Using redis session provider", "addr", cfg.RedisAddr)
		return p, p.Close
	}

	logger.Warn("DEV_SESSION enabled, every request is served as the development user",
		applog.FieldUserID, DevUserID)
	return session.Static{Session: session.Session{UserID: DevUserID, Name: "Developer"}},
		func() error { return nil }
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
