package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"finboard/internal/cache"
	"finboard/internal/cli"
	apphttp "finboard/internal/http"
	"finboard/internal/log"
	"finboard/internal/middleware/ratelimit"
	"finboard/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), os.Stdout)
	cfg := cli.MustLoadConfig(logger)

	ctx, stop := cli.GracefulShutdown(logger)
	defer stop()

	stack, err := cli.OpenLedger(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open ledger", log.FieldError, err, log.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := stack.Close(); err != nil {
			logger.Error("Failed to close backend", log.FieldError, err)
		}
	}()

	viewCache := cache.NewLRUCache[any](cfg.CacheSize, cfg.CacheTTL)
	dashboard := services.NewDashboardService(stack.Ledger, cfg.AnalyticsOptions(),
		services.WithViewCache(viewCache),
		services.WithDashboardLogger(logger))
	unsubscribe := stack.Ledger.Subscribe(dashboard.Invalidate)
	defer unsubscribe()

	cacheManager := cache.NewManager(logger)
	cacheManager.Register(viewCache)

	amqpClient, err := cli.ConnectAMQP(cfg, logger)
	if err != nil {
		// The API works without events; changes are simply not published.
		logger.Error("Failed to connect to AMQP, continuing without events", log.FieldError, err)
	}
	var notifier *services.ChangeNotifier
	if amqpClient != nil {
		defer amqpClient.Close()
		notifier = services.NewChangeNotifier(amqpClient, logger)
		notifier.Attach(stack.Ledger)
		defer notifier.Detach()
	}

	rateLimit := ratelimit.DefaultConfig()
	rateLimit.RequestsPerMinute = cfg.RateLimitRPM
	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Ledger:    stack.Ledger,
		Dashboard: dashboard,
		Ping:      stack.Backend.Ping,
		Logger:    logger,
		RateLimit: rateLimit,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting finboard server",
			"port", cfg.Port,
			log.FieldBackend, cfg.DataBackend,
			"events", amqpClient != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		logger.Info("Shutting down server")
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		cacheManager.Start(gctx, cfg.CacheTTL)
		<-gctx.Done()
		cacheManager.Stop()
		return nil
	})
	g.Go(func() error {
		// Picks up writes from finboardctl and other processes on the backend.
		return stack.Ledger.Watch(gctx, cfg.RefreshInterval)
	})
	if notifier != nil {
		g.Go(func() error { return notifier.Run(gctx) })
	}

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
