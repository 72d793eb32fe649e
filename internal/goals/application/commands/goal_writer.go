// Package commands holds the goal write operations.
package commands

import (
	"context"

	"github.com/felixgeelhaar/synapse/internal/goals/domain"
	sharedApplication "github.com/felixgeelhaar/synapse/internal/shared/application"
	"github.com/felixgeelhaar/synapse/internal/shared/infrastructure/cache"
	"github.com/felixgeelhaar/synapse/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

var staleViews = []cache.View{cache.ViewGoals, cache.ViewStats}

type goalWriter struct {
	goalRepo   domain.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	views      *cache.Views
}

// mutate loads the goal, applies change and persists it with persist. A
// change that records no events skips the write.
func (w goalWriter) mutate(
	ctx context.Context,
	userID, goalID uuid.UUID,
	change func(*domain.Goal) error,
	persist func(context.Context, *domain.Goal) error,
) (*domain.Goal, error) {
	var goal *domain.Goal

	err := sharedApplication.WithUnitOfWork(ctx, w.uow, func(txCtx context.Context) error {
		var err error
		goal, err = w.goalRepo.FindByID(txCtx, userID, goalID)
		if err != nil {
			return err
		}
		if goal == nil {
			return domain.ErrGoalNotFound
		}

		if err := change(goal); err != nil {
			return err
		}
		events := goal.DomainEvents()
		if len(events) == 0 {
			return nil
		}

		if err := persist(txCtx, goal); err != nil {
			return err
		}
		sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(txCtx, userID))
		return outbox.Record(txCtx, w.outboxRepo, events)
	})
	if err != nil {
		return nil, err
	}

	if len(goal.DomainEvents()) > 0 {
		goal.ClearDomainEvents()
		w.views.MarkStale(ctx, userID, staleViews...)
	}
	return goal, nil
}
