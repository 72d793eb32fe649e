package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/felixgeelhaar/synapse/adapter/api"
	"github.com/felixgeelhaar/synapse/internal/app"
	"github.com/felixgeelhaar/synapse/pkg/config"
	"github.com/felixgeelhaar/synapse/pkg/observability"
	"golang.org/x/sync/errgroup"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := observability.NewLogger(cfg.LogConfig("synapse-gateway", version))

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("gateway failed", "error", err)
		os.Exit(1)
	}
}

// run serves the classification gateway. It needs no database.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	metrics := observability.NewPrometheusMetrics("synapse_gateway")
	health := observability.NewHealthRegistry()

	gateway, _, err := app.NewGateway(ctx, cfg, logger, metrics, health)
	if err != nil {
		return err
	}

	router := api.NewRouter(api.RouterConfig{
		Classifier:     gateway,
		Health:         health,
		MetricsHandler: metrics.Handler(),
		Metrics:        metrics,
		Logger:         logger,
	})

	serverCfg := api.DefaultServerConfig()
	serverCfg.Addr = cfg.GatewayAddr
	server := api.NewServer(serverCfg, router, logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
