package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/felixgeelhaar/synapse/internal/app"
	"github.com/felixgeelhaar/synapse/internal/shared/infrastructure/cache"
	"github.com/felixgeelhaar/synapse/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/synapse/pkg/config"
	"github.com/felixgeelhaar/synapse/pkg/observability"
	"github.com/go-chi/chi/v5"
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
	logger := observability.NewLogger(cfg.LogConfig("synapse-worker", version))
	logger.Info("starting synapse worker")

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("worker failed", "error", err)
		os.Exit(1)
	}
	logger.Info("worker stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer container.Close()

	processor := container.OutboxProcessor
	logger.Info("starting outbox processor",
		"poll_interval", cfg.OutboxPollInterval,
		"batch_size", cfg.OutboxBatchSize,
		"max_retries", cfg.OutboxMaxRetries,
	)
	if err := processor.Start(ctx); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	// With a broker, cached views are invalidated from the queue instead of
	// the in-process bus.
	if cfg.RabbitMQURL != "" && container.InProcessEventBus == nil {
		consumer, err := eventbus.NewRabbitMQConsumer(ctx, eventbus.RabbitMQConsumerConfig{
			URL:    cfg.RabbitMQURL,
			Logger: logger,
		}, eventbus.NewConsumerRegistry(logger))
		if err != nil {
			return err
		}
		defer consumer.Close()
		consumer.RegisterConsumer(cache.NewInvalidator(container.Views))
		g.Go(func() error { return consumer.Start(ctx) })
	}

	g.Go(func() error {
		every(ctx, cfg.OutboxCleanupInterval, func(ctx context.Context) {
			deleted, err := container.CleanupOutbox(ctx)
			if err != nil {
				logger.ErrorContext(ctx, "outbox cleanup failed", "error", err)
				return
			}
			if deleted > 0 {
				logger.InfoContext(ctx, "outbox cleanup completed", "deleted", deleted, "retention", cfg.OutboxRetention)
			}
		})
		return nil
	})

	g.Go(func() error {
		every(ctx, cfg.OutboxStatsInterval, container.ReportOutbox)
		return nil
	})

	g.Go(func() error {
		every(ctx, cfg.SweepInterval, func(ctx context.Context) {
			attempted, err := container.SweepOnce(ctx)
			if err != nil {
				logger.ErrorContext(ctx, "enrichment sweep failed", "error", err)
				return
			}
			logger.DebugContext(ctx, "enrichment sweep completed", "attempted", attempted)
		})
		return nil
	})

	if cfg.WorkerHealthAddr != "" {
		healthSrv := &http.Server{
			Addr:              cfg.WorkerHealthAddr,
			Handler:           healthRouter(container),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logger.Info("health server starting", "addr", cfg.WorkerHealthAddr)
			if err := healthSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return healthSrv.Shutdown(shutdownCtx)
		})
	}

	<-ctx.Done()
	logger.Info("shutting down worker")
	processor.Stop()

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// every runs fn on each tick until ctx ends. A non-positive interval disables it.
func every(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}

func healthRouter(container *app.Container) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		stats := container.OutboxProcessor.GetStats()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":            "ok",
			"running":           stats.IsRunning,
			"published":         stats.PublishedCount,
			"failed":            stats.FailedCount,
			"dead":              stats.DeadCount,
			"last_processed_at": stats.LastProcessedAt,
			"last_error_at":     stats.LastErrorAt,
			"last_error":        stats.LastError,
		})
	})
	r.Method(http.MethodGet, "/readyz", container.Health.ReadyHandler())
	if container.Prometheus != nil {
		r.Handle("/metrics", container.Prometheus.Handler())
	}
	return r
}
