package eventbus

import (
	"context"
	"log/slog"
	"time"
)

// InProcessEventBus is the Publisher used in local mode. It hands each event
// straight to the registered consumers instead of a broker.
type InProcessEventBus struct {
	registry *ConsumerRegistry
	logger   *slog.Logger
}

// NewInProcessEventBus creates a bus with an empty registry.
func NewInProcessEventBus(logger *slog.Logger) *InProcessEventBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InProcessEventBus{
		registry: NewConsumerRegistry(logger),
		logger:   logger,
	}
}

// RegisterConsumer adds consumer to the bus.
func (b *InProcessEventBus) RegisterConsumer(consumer EventConsumer) {
	b.registry.Register(consumer)
}

// Publish decodes payload and dispatches it before returning. It never
// fails: a consumer error is logged so one bad consumer cannot stall the
// outbox.
func (b *InProcessEventBus) Publish(ctx context.Context, routingKey string, payload []byte) error {
	event, err := DecodeEvent(routingKey, payload)
	if err != nil {
		b.logger.ErrorContext(ctx, "dropping undecodable event", "routing_key", routingKey, "error", err)
		return nil
	}

	start := time.Now()
	err = b.registry.Dispatch(ctx, event)
	log := b.logger.With(
		"routing_key", routingKey,
		"event_id", event.EventID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	if err != nil {
		log.ErrorContext(ctx, "event dispatch failed", "error", err)
	} else {
		log.DebugContext(ctx, "event dispatched")
	}
	return nil
}

func (b *InProcessEventBus) Close() error { return nil }
