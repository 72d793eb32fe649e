package commands

import (
	"context"
	"errors"
	"time"

	"github.com/felixgeelhaar/synapse/internal/goals/domain"
	sharedApplication "github.com/felixgeelhaar/synapse/internal/shared/application"
	"github.com/felixgeelhaar/synapse/internal/shared/infrastructure/cache"
	"github.com/felixgeelhaar/synapse/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// ErrZeroDelta is returned for a progress adjustment of zero.
var ErrZeroDelta = errors.New("progress delta cannot be zero")

// AdjustGoalProgressCommand increments (positive Delta) or decrements a goal.
type AdjustGoalProgressCommand struct {
	UserID uuid.UUID
	GoalID uuid.UUID
	Delta  int
}

// AdjustGoalProgressResult is the goal state after the adjustment.
type AdjustGoalProgressResult struct {
	GoalID      uuid.UUID
	Progress    int
	Target      int
	Completed   bool
	PeriodLabel string
}

// AdjustGoalProgressHandler handles AdjustGoalProgressCommand.
type AdjustGoalProgressHandler struct {
	writer goalWriter
	now    func() time.Time
}

// NewAdjustGoalProgressHandler creates a new AdjustGoalProgressHandler.
func NewAdjustGoalProgressHandler(
	goalRepo domain.Repository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	views *cache.Views,
) *AdjustGoalProgressHandler {
	return &AdjustGoalProgressHandler{
		writer: goalWriter{goalRepo: goalRepo, outboxRepo: outboxRepo, uow: uow, views: views},
		now:    time.Now,
	}
}

// WithClock replaces the time source.
func (h *AdjustGoalProgressHandler) WithClock(now func() time.Time) *AdjustGoalProgressHandler {
	h.now = now
	return h
}

// Handle executes the command.
func (h *AdjustGoalProgressHandler) Handle(ctx context.Context, cmd AdjustGoalProgressCommand) (*AdjustGoalProgressResult, error) {
	if cmd.Delta == 0 {
		return nil, ErrZeroDelta
	}

	goal, err := h.writer.mutate(ctx, cmd.UserID, cmd.GoalID,
		func(g *domain.Goal) error { return g.AdjustProgress(cmd.Delta, h.now()) },
		h.writer.goalRepo.Save,
	)
	if err != nil {
		return nil, err
	}

	return &AdjustGoalProgressResult{
		GoalID:      goal.ID(),
		Progress:    goal.Progress(),
		Target:      goal.Target(),
		Completed:   goal.IsCompleted(),
		PeriodLabel: goal.PeriodLabel(),
	}, nil
}
