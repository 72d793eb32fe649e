package eventbus

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

type registration struct {
	pattern  string
	consumer EventConsumer
}

// ConsumerRegistry routes events to consumers by topic pattern.
type ConsumerRegistry struct {
	mu            sync.RWMutex
	registrations []registration
	logger        *slog.Logger
}

// NewConsumerRegistry creates an empty registry.
func NewConsumerRegistry(logger *slog.Logger) *ConsumerRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConsumerRegistry{logger: logger}
}

// Register adds consumer under each of its patterns.
func (r *ConsumerRegistry) Register(consumer EventConsumer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, pattern := range consumer.EventTypes() {
		r.registrations = append(r.registrations, registration{pattern: pattern, consumer: consumer})
		r.logger.Debug("registered event consumer", "pattern", pattern)
	}
}

// ConsumersFor returns the consumers matching routingKey. A consumer that
// registered several matching patterns appears once.
func (r *ConsumerRegistry) ConsumersFor(routingKey string) []EventConsumer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []EventConsumer
	seen := make(map[EventConsumer]bool)
	for _, reg := range r.registrations {
		if seen[reg.consumer] || !MatchTopic(reg.pattern, routingKey) {
			continue
		}
		seen[reg.consumer] = true
		out = append(out, reg.consumer)
	}
	return out
}

// Patterns lists every registered pattern, used to bind broker queues.
func (r *ConsumerRegistry) Patterns() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var out []string
	for _, reg := range r.registrations {
		if !seen[reg.pattern] {
			seen[reg.pattern] = true
			out = append(out, reg.pattern)
		}
	}
	return out
}

// Dispatch hands event to every matching consumer. All consumers run even if
// one fails; their errors are joined.
func (r *ConsumerRegistry) Dispatch(ctx context.Context, event *ConsumedEvent) error {
	consumers := r.ConsumersFor(event.RoutingKey)
	if len(consumers) == 0 {
		r.logger.Debug("no consumers for event", "routing_key", event.RoutingKey)
		return nil
	}

	var errs []error
	for _, consumer := range consumers {
		if err := consumer.Handle(ctx, event); err != nil {
			r.logger.Error("consumer failed",
				"routing_key", event.RoutingKey,
				"event_id", event.EventID,
				"error", err,
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
