// Package application implements the classifier gateway: prompt, model call
// and response parsing.
package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/felixgeelhaar/synapse/internal/classifier/domain"
	"github.com/felixgeelhaar/synapse/pkg/observability"
)

// Gateway classifies text with a generative model. It keeps no state between
// calls and never retries.
type Gateway struct {
	model      domain.Model
	vocabulary Vocabulary
	now        func() time.Time
	logger     *slog.Logger
	metrics    observability.Metrics
}

var _ domain.Classifier = (*Gateway)(nil)

// NewGateway creates a gateway. A nil model makes every call fail with
// domain.ErrConfiguration.
func NewGateway(model domain.Model, logger *slog.Logger, metrics observability.Metrics) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &Gateway{
		model:      model,
		vocabulary: DefaultVocabulary(),
		now:        time.Now,
		logger:     logger,
		metrics:    metrics,
	}
}

// WithVocabulary replaces the labels offered to the model.
func (g *Gateway) WithVocabulary(v Vocabulary) *Gateway {
	g.vocabulary = v
	return g
}

// WithClock sets the date source used in the prompt.
func (g *Gateway) WithClock(now func() time.Time) *Gateway {
	g.now = now
	return g
}

// Classify returns the parsed classification for content.
func (g *Gateway) Classify(ctx context.Context, content string) (domain.Classification, error) {
	timer := observability.StartTimer(observability.MetricClassifierDuration).WithMetrics(g.metrics)
	result, err := g.classify(ctx, content)
	timer.Stop(err)

	outcome := "ok"
	if err != nil {
		outcome = string(domain.KindOf(err))
	}
	g.metrics.Counter(observability.MetricClassifierRequests, 1, observability.T("outcome", outcome))
	return result, err
}

func (g *Gateway) classify(ctx context.Context, content string) (domain.Classification, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, domain.ErrInvalidRequest
	}
	if g.model == nil {
		return nil, domain.ErrConfiguration
	}

	text, err := g.model.Generate(ctx, BuildPrompt(g.now(), g.vocabulary, content))
	if err != nil {
		var upstream *domain.UpstreamError
		if errors.As(err, &upstream) {
			g.logger.WarnContext(ctx, "model endpoint rejected request",
				"status", upstream.Status,
				"body", upstream.Body,
			)
		}
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyResponse
	}

	result, err := ExtractClassification(text)
	if err != nil {
		g.logger.WarnContext(ctx, "unparseable model response", "length", len(text))
		return nil, err
	}
	return result, nil
}
