package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleEvent struct {
	BaseEvent
	Name string `json:"name"`
}

func TestBaseAggregateRoot_RecordsEvents(t *testing.T) {
	now := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	root := NewBaseAggregateRoot(now)

	assert.NotEqual(t, uuid.Nil, root.ID())
	assert.Equal(t, now, root.CreatedAt())
	assert.Equal(t, now, root.UpdatedAt())
	assert.Empty(t, root.DomainEvents())

	root.AddDomainEvent(&sampleEvent{BaseEvent: NewBaseEvent(root.ID(), "Sample", "sample.created")})
	require.Len(t, root.DomainEvents(), 1)

	root.ClearDomainEvents()
	assert.Empty(t, root.DomainEvents())
}

func TestBaseEntity_Touch(t *testing.T) {
	created := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	e := RehydrateBaseEntity(uuid.New(), created, created)
	e.Touch()
	assert.True(t, e.UpdatedAt().After(created))
	assert.Equal(t, created, e.CreatedAt())
}

func TestBaseEvent_SerializesRoutingFields(t *testing.T) {
	aggID := uuid.New()
	userID := uuid.New()
	event := &sampleEvent{
		BaseEvent: NewBaseEvent(aggID, "Sample", "sample.created"),
		Name:      "hello",
	}
	event.SetMetadata(EventMetadata{UserID: userID})

	raw, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "sample.created", decoded["routing_key"])
	assert.Equal(t, aggID.String(), decoded["aggregate_id"])
	assert.Equal(t, "Sample", decoded["aggregate_type"])
	assert.Equal(t, "hello", decoded["name"])

	meta, ok := decoded["metadata"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, userID.String(), meta["user_id"])
}
