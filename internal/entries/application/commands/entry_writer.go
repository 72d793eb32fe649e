// Package commands holds the entry write operations. Every write runs in a
// unit of work, records its events in the outbox and then marks the owner's
// cached views stale.
package commands

import (
	"context"

	"github.com/felixgeelhaar/synapse/internal/entries/domain"
	sharedApplication "github.com/felixgeelhaar/synapse/internal/shared/application"
	"github.com/felixgeelhaar/synapse/internal/shared/infrastructure/cache"
	"github.com/felixgeelhaar/synapse/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// staleViews are the views any entry write invalidates.
var staleViews = []cache.View{cache.ViewEntries, cache.ViewStats}

type entryWriter struct {
	entryRepo  domain.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	views      *cache.Views
}

// mutate loads the entry, applies change and persists it with persist.
// A change that records no events skips the write.
func (w entryWriter) mutate(
	ctx context.Context,
	userID, entryID uuid.UUID,
	change func(*domain.Entry) error,
	persist func(context.Context, *domain.Entry) error,
) (*domain.Entry, error) {
	var entry *domain.Entry

	err := sharedApplication.WithUnitOfWork(ctx, w.uow, func(txCtx context.Context) error {
		var err error
		entry, err = w.entryRepo.FindByID(txCtx, userID, entryID)
		if err != nil {
			return err
		}
		if entry == nil {
			return domain.ErrEntryNotFound
		}

		if err := change(entry); err != nil {
			return err
		}
		events := entry.DomainEvents()
		if len(events) == 0 {
			return nil
		}

		if err := persist(txCtx, entry); err != nil {
			return err
		}
		sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(txCtx, userID))
		return outbox.Record(txCtx, w.outboxRepo, events)
	})
	if err != nil {
		return nil, err
	}

	if len(entry.DomainEvents()) > 0 {
		entry.ClearDomainEvents()
		w.views.MarkStale(ctx, userID, staleViews...)
	}
	return entry, nil
}
