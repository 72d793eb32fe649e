package commands

import (
	"context"

	"github.com/felixgeelhaar/synapse/internal/entries/domain"
	sharedApplication "github.com/felixgeelhaar/synapse/internal/shared/application"
	"github.com/felixgeelhaar/synapse/internal/shared/contract"
	"github.com/felixgeelhaar/synapse/internal/shared/infrastructure/cache"
	"github.com/felixgeelhaar/synapse/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// ChangeStatusCommand moves an entry to a status, e.g. a kanban drag.
type ChangeStatusCommand struct {
	UserID  uuid.UUID
	EntryID uuid.UUID
	Status  string
}

// ToggleStatusCommand flips an entry between done and pending.
type ToggleStatusCommand struct {
	UserID  uuid.UUID
	EntryID uuid.UUID
}

// StatusResult reports the entry's status after the change.
type StatusResult struct {
	EntryID uuid.UUID
	Status  contract.Status
}

// ChangeStatusHandler handles ChangeStatusCommand and ToggleStatusCommand.
type ChangeStatusHandler struct {
	writer entryWriter
}

// NewChangeStatusHandler creates a new ChangeStatusHandler.
func NewChangeStatusHandler(
	entryRepo domain.Repository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	views *cache.Views,
) *ChangeStatusHandler {
	return &ChangeStatusHandler{writer: entryWriter{entryRepo: entryRepo, outboxRepo: outboxRepo, uow: uow, views: views}}
}

// Handle sets the status.
func (h *ChangeStatusHandler) Handle(ctx context.Context, cmd ChangeStatusCommand) (*StatusResult, error) {
	status, err := contract.ParseStatus(cmd.Status)
	if err != nil {
		return nil, err
	}

	entry, err := h.writer.mutate(ctx, cmd.UserID, cmd.EntryID,
		func(e *domain.Entry) error { return e.ChangeStatus(status) },
		h.writer.entryRepo.Save,
	)
	if err != nil {
		return nil, err
	}
	return &StatusResult{EntryID: entry.ID(), Status: entry.Status()}, nil
}

// Toggle flips done and pending.
func (h *ChangeStatusHandler) Toggle(ctx context.Context, cmd ToggleStatusCommand) (*StatusResult, error) {
	entry, err := h.writer.mutate(ctx, cmd.UserID, cmd.EntryID,
		func(e *domain.Entry) error {
			e.ToggleStatus()
			return nil
		},
		h.writer.entryRepo.Save,
	)
	if err != nil {
		return nil, err
	}
	return &StatusResult{EntryID: entry.ID(), Status: entry.Status()}, nil
}
