package commands

import (
	"context"

	"github.com/felixgeelhaar/synapse/internal/goals/domain"
	sharedApplication "github.com/felixgeelhaar/synapse/internal/shared/application"
	"github.com/felixgeelhaar/synapse/internal/shared/infrastructure/cache"
	"github.com/felixgeelhaar/synapse/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// DeactivateGoalCommand stops tracking a goal.
type DeactivateGoalCommand struct {
	UserID uuid.UUID
	GoalID uuid.UUID
}

// DeactivateGoalHandler handles DeactivateGoalCommand.
type DeactivateGoalHandler struct {
	writer goalWriter
}

// NewDeactivateGoalHandler creates a new DeactivateGoalHandler.
func NewDeactivateGoalHandler(
	goalRepo domain.Repository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	views *cache.Views,
) *DeactivateGoalHandler {
	return &DeactivateGoalHandler{writer: goalWriter{goalRepo: goalRepo, outboxRepo: outboxRepo, uow: uow, views: views}}
}

// Handle executes the command.
func (h *DeactivateGoalHandler) Handle(ctx context.Context, cmd DeactivateGoalCommand) error {
	_, err := h.writer.mutate(ctx, cmd.UserID, cmd.GoalID,
		func(g *domain.Goal) error {
			g.Deactivate()
			return nil
		},
		h.writer.goalRepo.Save,
	)
	return err
}

// DeleteGoalCommand removes a goal. The companion entry written at capture
// is kept as history.
type DeleteGoalCommand struct {
	UserID uuid.UUID
	GoalID uuid.UUID
}

// DeleteGoalHandler handles DeleteGoalCommand.
type DeleteGoalHandler struct {
	writer goalWriter
}

// NewDeleteGoalHandler creates a new DeleteGoalHandler.
func NewDeleteGoalHandler(
	goalRepo domain.Repository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	views *cache.Views,
) *DeleteGoalHandler {
	return &DeleteGoalHandler{writer: goalWriter{goalRepo: goalRepo, outboxRepo: outboxRepo, uow: uow, views: views}}
}

// Handle executes the command.
func (h *DeleteGoalHandler) Handle(ctx context.Context, cmd DeleteGoalCommand) error {
	_, err := h.writer.mutate(ctx, cmd.UserID, cmd.GoalID,
		func(g *domain.Goal) error {
			g.MarkDeleted()
			return nil
		},
		func(txCtx context.Context, g *domain.Goal) error {
			return h.writer.goalRepo.Delete(txCtx, g.UserID(), g.ID())
		},
	)
	return err
}
