package cache

import (
	"context"
	"strings"

	"github.com/felixgeelhaar/synapse/internal/shared/infrastructure/eventbus"
	"github.com/google/uuid"
)

// Invalidator consumes domain events and marks the owner's views stale. It
// covers writes made by other processes sharing the same cache.
type Invalidator struct {
	views *Views
}

// NewInvalidator creates an Invalidator for views.
func NewInvalidator(views *Views) *Invalidator {
	return &Invalidator{views: views}
}

// EventTypes implements eventbus.EventConsumer.
func (i *Invalidator) EventTypes() []string {
	return []string{"entries.#", "goals.#", "taxonomy.#"}
}

// Handle implements eventbus.EventConsumer.
func (i *Invalidator) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	userID := event.Metadata.UserID
	if userID == uuid.Nil {
		return nil
	}
	i.views.MarkStale(ctx, userID, StaleViewsFor(event.RoutingKey)...)
	return nil
}

// StaleViewsFor maps a routing key to the views it invalidates.
func StaleViewsFor(routingKey string) []View {
	boundedContext, _, _ := strings.Cut(routingKey, ".")
	switch boundedContext {
	case "entries":
		return []View{ViewEntries, ViewStats}
	case "goals":
		return []View{ViewGoals, ViewStats}
	case "taxonomy":
		return []View{ViewEntries}
	default:
		return nil
	}
}
