package eventbus_test

import (
	"context"
	"errors"
	"testing"

	"github.com/felixgeelhaar/synapse/internal/shared/infrastructure/eventbus"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingConsumer struct {
	patterns []string
	events   []*eventbus.ConsumedEvent
	err      error
}

func (c *recordingConsumer) EventTypes() []string { return c.patterns }

func (c *recordingConsumer) Handle(_ context.Context, event *eventbus.ConsumedEvent) error {
	c.events = append(c.events, event)
	return c.err
}

func TestMatchTopic(t *testing.T) {
	tests := []struct {
		pattern, key string
		want         bool
	}{
		{"entries.entry.created", "entries.entry.created", true},
		{"entries.entry.created", "entries.entry.updated", false},
		{"entries.*.created", "entries.entry.created", true},
		{"entries.*", "entries.entry.created", false},
		{"entries.#", "entries.entry.created", true},
		{"entries.#", "entries", true},
		{"#", "goals.goal.progress_changed", true},
		{"#.deleted", "goals.goal.deleted", true},
		{"#.deleted", "goals.goal.created", false},
		{"goals.#.changed", "goals.goal.progress.changed", true},
		{"goals.#", "entries.entry.created", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"~"+tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, eventbus.MatchTopic(tt.pattern, tt.key))
		})
	}
}

func TestConsumerRegistry_DispatchByPattern(t *testing.T) {
	registry := eventbus.NewConsumerRegistry(nil)
	entries := &recordingConsumer{patterns: []string{"entries.#", "entries.entry.*"}}
	goals := &recordingConsumer{patterns: []string{"goals.#"}}
	registry.Register(entries)
	registry.Register(goals)

	event := &eventbus.ConsumedEvent{EventID: uuid.New(), RoutingKey: "entries.entry.enriched"}
	require.NoError(t, registry.Dispatch(context.Background(), event))

	assert.Len(t, entries.events, 1, "matching twice still delivers once")
	assert.Empty(t, goals.events)
	assert.ElementsMatch(t, []string{"entries.#", "entries.entry.*", "goals.#"}, registry.Patterns())
}

func TestConsumerRegistry_DispatchJoinsErrors(t *testing.T) {
	registry := eventbus.NewConsumerRegistry(nil)
	errA, errB := errors.New("cache down"), errors.New("disk full")
	first := &recordingConsumer{patterns: []string{"#"}, err: errA}
	second := &recordingConsumer{patterns: []string{"#"}}
	third := &recordingConsumer{patterns: []string{"#"}, err: errB}
	registry.Register(first)
	registry.Register(second)
	registry.Register(third)

	err := registry.Dispatch(context.Background(), &eventbus.ConsumedEvent{RoutingKey: "goals.goal.deleted"})

	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	assert.Len(t, second.events, 1, "later consumers still run")
}

func TestConsumerRegistry_NoConsumers(t *testing.T) {
	registry := eventbus.NewConsumerRegistry(nil)
	assert.NoError(t, registry.Dispatch(context.Background(), &eventbus.ConsumedEvent{RoutingKey: "x"}))
	assert.Empty(t, registry.ConsumersFor("x"))
}
