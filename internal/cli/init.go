// Package cli provides common process initialization shared by
// cmd/finboard, cmd/finboard-worker and cmd/finboardctl.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"finboard/internal/amqp"
	"finboard/internal/backend"
	"finboard/internal/config"
	"finboard/internal/ledger"
	"finboard/internal/log"
)

// SetupLogger builds the process logger at the given level, writing text
// records to out, and installs it as the slog default. An unknown level
// falls back to info.
func SetupLogger(level string, out io.Writer) *log.Logger {
	cfg := log.DefaultConfig()
	if lvl, err := log.ParseLevel(level); err == nil {
		cfg.Level = lvl
	}
	if out != nil {
		cfg.Output = out
	}
	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoadConfig is LoadAndValidateConfig for long-running processes: it
// logs the problem and exits.
func MustLoadConfig(logger *log.Logger) *config.Config {
	cfg, err := LoadAndValidateConfig()
	if err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// Stack is an opened ledger together with the backend it reads from.
type Stack struct {
	Ledger  *ledger.Ledger
	Backend *backend.BackendResult
}

// Close releases the backend.
func (s *Stack) Close() error {
	if s.Backend == nil || s.Backend.Cleanup == nil {
		return nil
	}
	return s.Backend.Cleanup()
}

// OpenLedger creates the configured backend and loads the ledger from it.
func OpenLedger(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Stack, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	result, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("create %s backend: %w", bcfg.Type, err)
	}
	l, err := ledger.Open(ctx, result.KV, ledger.WithLogger(logger))
	if err != nil {
		_ = result.Cleanup()
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	return &Stack{Ledger: l, Backend: result}, nil
}

// ConnectAMQP returns a client for the configured broker, or nil when
// events are disabled.
func ConnectAMQP(cfg *config.Config, logger *log.Logger) (*amqp.Client, error) {
	if !cfg.EventsEnabled() {
		logger.Info("AMQP not configured, ledger change events disabled")
		return nil, nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to AMQP: %w", err)
	}
	return client, nil
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM.
func GracefulShutdown(logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		logger.Info("Shutdown signal received")
	}()
	return ctx, stop
}
