package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/angeloszaimis/static-gateway/config"
	"github.com/angeloszaimis/static-gateway/internal/assets"
	"github.com/angeloszaimis/static-gateway/internal/circuitbreaker"
	"github.com/angeloszaimis/static-gateway/internal/handler"
	"github.com/angeloszaimis/static-gateway/internal/healthcheck"
	"github.com/angeloszaimis/static-gateway/internal/httpserver"
	"github.com/angeloszaimis/static-gateway/internal/metrics"
	"github.com/angeloszaimis/static-gateway/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, true, cfg.Server.Environment)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	collector := metrics.NewCollector(cfg.Metrics.BufferSize, log)
	collector.Start(ctx)

	fetcher, err := buildFetcher(ctx, cfg, collector, log)
	if err != nil {
		log.Error("Failed to initialize asset fetcher", slog.Any("err", err))
		os.Exit(1)
	}

	gateway := handler.NewGatewayHandler(log, fetcher, cfg.Assets.IndexFile, collector)

	mux := setupRouter(gateway, collector, cfg.Assets.Mode)

	srv, err := httpserver.New(cfg.Server.Address, mux)
	if err != nil {
		log.Error("Failed to create server", slog.Any("err", err))
		os.Exit(1)
	}

	log.Info("Serving assets",
		slog.String("address", cfg.Server.Address),
		slog.String("mode", cfg.Assets.Mode),
		slog.String("source", fetcher.Name()))

	srvErrCh := make(chan error, 1)

	go func() {
		srvErrCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error("Error during shutdown", slog.Any("err", err))
		}
	case err := <-srvErrCh:
		if err != nil {
			log.Error("Error starting gateway", slog.Any("err", err))
			os.Exit(1)
		}
	}
}

func buildFetcher(ctx context.Context, cfg *config.Config, collector *metrics.Collector, log *slog.Logger) (assets.Fetcher, error) {
	switch cfg.Assets.Mode {
	case config.ModeFilesystem:
		info, err := os.Stat(cfg.Assets.Root)
		if err != nil {
			return nil, fmt.Errorf("asset root: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("asset root %s is not a directory", cfg.Assets.Root)
		}

		return assets.NewFilesystemFetcher(os.DirFS(cfg.Assets.Root), cfg.Assets.Root), nil

	case config.ModeOrigin:
		originURL, err := url.Parse(cfg.Assets.OriginURL)
		if err != nil {
			return nil, fmt.Errorf("origin URL: %w", err)
		}

		fetchTimeout, err := time.ParseDuration(cfg.Assets.FetchTimeout)
		if err != nil {
			return nil, fmt.Errorf("fetch timeout: %w", err)
		}

		resetTimeout, err := time.ParseDuration(cfg.CircuitBreaker.ResetTimeout)
		if err != nil {
			return nil, fmt.Errorf("circuit breaker reset timeout: %w", err)
		}

		probeInterval, err := time.ParseDuration(cfg.HealthCheck.Interval)
		if err != nil {
			return nil, fmt.Errorf("health check interval: %w", err)
		}

		breaker := circuitbreaker.NewCircuitBreaker(cfg.CircuitBreaker.FailureThreshold, resetTimeout)
		origin := assets.NewOriginFetcher(originURL, fetchTimeout, breaker)

		go healthcheck.Watch(ctx, origin, "/"+cfg.Assets.IndexFile, probeInterval, collector, log)

		return origin, nil

	default:
		return nil, fmt.Errorf("unknown asset mode %q", cfg.Assets.Mode)
	}
}
