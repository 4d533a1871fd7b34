package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"

	"finboard/internal/cli"
	"finboard/internal/log"
	"finboard/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), os.Stdout)
	logger.Info("Starting finboard-worker")

	cfg := cli.MustLoadConfig(logger)
	if !cfg.EventsEnabled() {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}
	if cfg.DataBackend == "memory" {
		logger.Warn("Memory backend is private to this process, the worker will never see API writes")
	}

	ctx, stop := cli.GracefulShutdown(logger)
	defer stop()

	stack, err := cli.OpenLedger(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open ledger", log.FieldError, err, log.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}
	defer stack.Close()

	amqpClient, err := cli.ConnectAMQP(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	insights := worker.NewInsightsWorker(stack.Ledger, cfg.AnalyticsOptions(), logger)

	// Catch up on anything written while the worker was down.
	logger.Info("Performing startup check...")
	if err := insights.StartupCheck(ctx); err != nil {
		logger.Error("Failed startup check", log.FieldError, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := amqpClient.ConsumeLedgerChanges(gctx, insights.HandleLedgerChange)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		return insights.RunPeriodic(gctx, cfg.RefreshInterval)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	_, processed := insights.Last()
	logger.Info("Worker shutdown complete", "processed", processed)
}
