package commands

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/synapse/internal/entries/domain"
	sharedApplication "github.com/felixgeelhaar/synapse/internal/shared/application"
	"github.com/felixgeelhaar/synapse/internal/shared/infrastructure/cache"
	"github.com/felixgeelhaar/synapse/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// ErrAlreadyEnriched is returned when the stored entry already has an emoji.
var ErrAlreadyEnriched = errors.New("entry already has an emoji")

// EnrichEntryCommand adds an emoji to an entry's metadata.
type EnrichEntryCommand struct {
	UserID  uuid.UUID
	EntryID uuid.UUID
	Emoji   string
}

// EnrichEntryHandler handles EnrichEntryCommand. Only the metadata column is
// written; other metadata keys are kept.
type EnrichEntryHandler struct {
	writer entryWriter
}

// NewEnrichEntryHandler creates a new EnrichEntryHandler.
func NewEnrichEntryHandler(
	entryRepo domain.Repository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	views *cache.Views,
) *EnrichEntryHandler {
	return &EnrichEntryHandler{writer: entryWriter{entryRepo: entryRepo, outboxRepo: outboxRepo, uow: uow, views: views}}
}

// Handle executes the command.
func (h *EnrichEntryHandler) Handle(ctx context.Context, cmd EnrichEntryCommand) error {
	_, err := h.writer.mutate(ctx, cmd.UserID, cmd.EntryID,
		func(e *domain.Entry) error {
			if e.HasEmoji() {
				return ErrAlreadyEnriched
			}
			return e.SetEmoji(cmd.Emoji)
		},
		h.writer.entryRepo.SaveMetadata,
	)
	return err
}
