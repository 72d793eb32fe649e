package app

import (
	"context"
	"fmt"
	"log/slog"

	classifierApp "github.com/felixgeelhaar/synapse/internal/classifier/application"
	classifierDomain "github.com/felixgeelhaar/synapse/internal/classifier/domain"
	"github.com/felixgeelhaar/synapse/internal/classifier/infrastructure/gemini"
	"github.com/felixgeelhaar/synapse/pkg/config"
	"github.com/felixgeelhaar/synapse/pkg/observability"
)

// NewGateway builds the classification gateway over Gemini behind a circuit
// breaker. A missing API key leaves the gateway without a model so every call
// reports a configuration error; the breaker is nil in that case. When health
// is non-nil the breaker state is registered as the "classifier" check.
func NewGateway(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	metrics observability.Metrics,
	health *observability.HealthRegistry,
) (*classifierApp.Gateway, *gemini.BreakerModel, error) {
	if cfg.GeminiAPIKey == "" {
		logger.Warn("GEMINI_API_KEY not set; classification is unavailable")
		return classifierApp.NewGateway(nil, logger, metrics), nil, nil
	}

	gm, err := gemini.NewModel(ctx, gemini.Config{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		BaseURL: cfg.GeminiBaseURL,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	breaker := gemini.NewBreakerModel(gm, gemini.BreakerConfig{
		MaxFailures: cfg.BreakerMaxFailures,
		OpenTimeout: cfg.BreakerOpenTimeout,
	}, logger)

	if health != nil {
		health.Register("classifier", func(context.Context) observability.HealthCheckResult {
			if state := breaker.State(); state != "closed" {
				return observability.HealthCheckResult{Status: observability.HealthStatusDegraded, Message: "breaker " + state}
			}
			return observability.HealthCheckResult{Status: observability.HealthStatusHealthy}
		})
	}

	var model classifierDomain.Model = breaker
	return classifierApp.NewGateway(model, logger, metrics), breaker, nil
}
