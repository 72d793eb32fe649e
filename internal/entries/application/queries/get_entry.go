package queries

import (
	"context"

	"github.com/felixgeelhaar/synapse/internal/entries/domain"
	"github.com/google/uuid"
)

// GetEntryQuery fetches one entry.
type GetEntryQuery struct {
	UserID  uuid.UUID
	EntryID uuid.UUID
}

// GetEntryHandler handles GetEntryQuery.
type GetEntryHandler struct {
	entryRepo domain.Repository
}

// NewGetEntryHandler creates a new GetEntryHandler.
func NewGetEntryHandler(entryRepo domain.Repository) *GetEntryHandler {
	return &GetEntryHandler{entryRepo: entryRepo}
}

// Handle executes the query.
func (h *GetEntryHandler) Handle(ctx context.Context, query GetEntryQuery) (*EntryDTO, error) {
	entry, err := h.entryRepo.FindByID(ctx, query.UserID, query.EntryID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, domain.ErrEntryNotFound
	}
	dto := ToEntryDTO(entry)
	return &dto, nil
}
