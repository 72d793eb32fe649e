package commands

import (
	"context"

	"github.com/felixgeelhaar/synapse/internal/entries/domain"
	sharedApplication "github.com/felixgeelhaar/synapse/internal/shared/application"
	"github.com/felixgeelhaar/synapse/internal/shared/infrastructure/cache"
	"github.com/felixgeelhaar/synapse/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// DeleteEntryCommand removes an entry.
type DeleteEntryCommand struct {
	UserID  uuid.UUID
	EntryID uuid.UUID
}

// DeleteEntryHandler handles DeleteEntryCommand.
type DeleteEntryHandler struct {
	writer entryWriter
}

// NewDeleteEntryHandler creates a new DeleteEntryHandler.
func NewDeleteEntryHandler(
	entryRepo domain.Repository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	views *cache.Views,
) *DeleteEntryHandler {
	return &DeleteEntryHandler{writer: entryWriter{entryRepo: entryRepo, outboxRepo: outboxRepo, uow: uow, views: views}}
}

// Handle executes the command.
func (h *DeleteEntryHandler) Handle(ctx context.Context, cmd DeleteEntryCommand) error {
	_, err := h.writer.mutate(ctx, cmd.UserID, cmd.EntryID,
		func(e *domain.Entry) error {
			e.MarkDeleted()
			return nil
		},
		func(txCtx context.Context, e *domain.Entry) error {
			return h.writer.entryRepo.Delete(txCtx, e.UserID(), e.ID())
		},
	)
	return err
}
