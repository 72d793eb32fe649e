package gemini

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/felixgeelhaar/synapse/internal/classifier/domain"
	"github.com/sony/gobreaker/v2"
)

// BreakerConfig tunes BreakerModel.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive upstream failures that opens
	// the breaker.
	MaxFailures uint32
	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout time.Duration
}

// BreakerModel stops calling a failing model for a while. Calls made while
// the breaker is open fail immediately with a 503 UpstreamError; nothing is
// retried.
type BreakerModel struct {
	next    domain.Model
	breaker *gobreaker.CircuitBreaker[string]
}

var _ domain.Model = (*BreakerModel)(nil)

// NewBreakerModel wraps next.
func NewBreakerModel(next domain.Model, cfg BreakerConfig, logger *slog.Logger) *BreakerModel {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}

	settings := gobreaker.Settings{
		Name:        "gemini",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
		// Only upstream faults count against the endpoint.
		IsSuccessful: func(err error) bool {
			var upstream *domain.UpstreamError
			if errors.As(err, &upstream) {
				return upstream.Status < http.StatusInternalServerError && upstream.Status != http.StatusTooManyRequests
			}
			return err == nil || errors.Is(err, context.Canceled)
		},
	}
	return &BreakerModel{next: next, breaker: gobreaker.NewCircuitBreaker[string](settings)}
}

// Generate calls the wrapped model unless the breaker is open.
func (b *BreakerModel) Generate(ctx context.Context, prompt string) (string, error) {
	text, err := b.breaker.Execute(func() (string, error) {
		return b.next.Generate(ctx, prompt)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", &domain.UpstreamError{Status: http.StatusServiceUnavailable, Body: err.Error()}
	}
	return text, err
}

// State reports the breaker state for health output.
func (b *BreakerModel) State() string {
	return b.breaker.State().String()
}
