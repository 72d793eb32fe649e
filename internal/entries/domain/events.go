package domain

import (
	"github.com/felixgeelhaar/synapse/internal/shared/contract"
	sharedDomain "github.com/felixgeelhaar/synapse/internal/shared/domain"
	"github.com/google/uuid"
)

const aggregateType = "Entry"

// EntryCreated is emitted when an entry is captured.
type EntryCreated struct {
	sharedDomain.BaseEvent
	EntryID    uuid.UUID  `json:"entry_id"`
	UserID     uuid.UUID  `json:"user_id"`
	EntryType  string     `json:"entry_type"`
	CategoryID *uuid.UUID `json:"category_id,omitempty"`
	Content    string     `json:"content"`
}

// NewEntryCreated creates an EntryCreated event.
func NewEntryCreated(e *Entry) *EntryCreated {
	return &EntryCreated{
		BaseEvent:  sharedDomain.NewBaseEvent(e.ID(), aggregateType, "entries.entry.created"),
		EntryID:    e.ID(),
		UserID:     e.UserID(),
		EntryType:  string(e.Type()),
		CategoryID: e.CategoryID(),
		Content:    e.Content(),
	}
}

// EntryStatusChanged is emitted on status moves (toggles, kanban drags).
type EntryStatusChanged struct {
	sharedDomain.BaseEvent
	EntryID uuid.UUID `json:"entry_id"`
	UserID  uuid.UUID `json:"user_id"`
	From    string    `json:"from"`
	To      string    `json:"to"`
}

// NewEntryStatusChanged creates an EntryStatusChanged event.
func NewEntryStatusChanged(e *Entry, from contract.Status) *EntryStatusChanged {
	return &EntryStatusChanged{
		BaseEvent: sharedDomain.NewBaseEvent(e.ID(), aggregateType, "entries.entry.status_changed"),
		EntryID:   e.ID(),
		UserID:    e.UserID(),
		From:      string(from),
		To:        string(e.Status()),
	}
}

// EntryUpdated is emitted when entry fields are edited.
type EntryUpdated struct {
	sharedDomain.BaseEvent
	EntryID uuid.UUID `json:"entry_id"`
	UserID  uuid.UUID `json:"user_id"`
	Fields  []string  `json:"fields"`
}

// NewEntryUpdated creates an EntryUpdated event.
func NewEntryUpdated(e *Entry, fields []string) *EntryUpdated {
	return &EntryUpdated{
		BaseEvent: sharedDomain.NewBaseEvent(e.ID(), aggregateType, "entries.entry.updated"),
		EntryID:   e.ID(),
		UserID:    e.UserID(),
		Fields:    fields,
	}
}

// EntryEnriched is emitted when the sweeper adds an emoji.
type EntryEnriched struct {
	sharedDomain.BaseEvent
	EntryID uuid.UUID `json:"entry_id"`
	UserID  uuid.UUID `json:"user_id"`
	Emoji   string    `json:"emoji"`
}

// NewEntryEnriched creates an EntryEnriched event.
func NewEntryEnriched(e *Entry, emoji string) *EntryEnriched {
	return &EntryEnriched{
		BaseEvent: sharedDomain.NewBaseEvent(e.ID(), aggregateType, "entries.entry.enriched"),
		EntryID:   e.ID(),
		UserID:    e.UserID(),
		Emoji:     emoji,
	}
}

// EntryDeleted is emitted when an entry is removed.
type EntryDeleted struct {
	sharedDomain.BaseEvent
	EntryID uuid.UUID `json:"entry_id"`
	UserID  uuid.UUID `json:"user_id"`
}

// NewEntryDeleted creates an EntryDeleted event.
func NewEntryDeleted(e *Entry) *EntryDeleted {
	return &EntryDeleted{
		BaseEvent: sharedDomain.NewBaseEvent(e.ID(), aggregateType, "entries.entry.deleted"),
		EntryID:   e.ID(),
		UserID:    e.UserID(),
	}
}
