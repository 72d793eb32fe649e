package domain

import (
	"context"

	"github.com/felixgeelhaar/synapse/internal/shared/contract"
	"github.com/google/uuid"
)

// Filter narrows a listing. Zero values match everything.
type Filter struct {
	UserID     uuid.UUID
	Types      []contract.EntryType
	Statuses   []contract.Status
	CategoryID *uuid.UUID
	SubjectID  *uuid.UUID
	Limit      int
}

// Count is the number of entries with one type and status.
type Count struct {
	Type   contract.EntryType
	Status contract.Status
	Total  int
}

// Repository persists entries. Lookups that match nothing return nil
// without an error.
type Repository interface {
	// Save inserts or fully updates an entry.
	Save(ctx context.Context, entry *Entry) error
	// SaveMetadata writes only the metadata bag.
	SaveMetadata(ctx context.Context, entry *Entry) error
	FindByID(ctx context.Context, userID, id uuid.UUID) (*Entry, error)
	// List returns entries newest first.
	List(ctx context.Context, filter Filter) ([]*Entry, error)
	Counts(ctx context.Context, userID uuid.UUID) ([]Count, error)
	// UserIDs returns every user that owns at least one entry.
	UserIDs(ctx context.Context) ([]uuid.UUID, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
