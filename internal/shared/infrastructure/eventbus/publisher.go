// Package eventbus moves outbox messages to consumers, either through a
// RabbitMQ topic exchange or synchronously in process.
package eventbus

import (
	"context"
	"log/slog"
)

// Publisher sends a serialized domain event under its routing key.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload []byte) error
	Close() error
}

// NoopPublisher drops everything. Used when no broker is configured in
// development.
type NoopPublisher struct {
	logger *slog.Logger
}

// NewNoopPublisher creates a NoopPublisher.
func NewNoopPublisher(logger *slog.Logger) *NoopPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoopPublisher{logger: logger}
}

// Publish logs and discards the message.
func (p *NoopPublisher) Publish(_ context.Context, routingKey string, payload []byte) error {
	p.logger.Debug("noop publish", "routing_key", routingKey, "size", len(payload))
	return nil
}

// Close does nothing.
func (p *NoopPublisher) Close() error { return nil }
