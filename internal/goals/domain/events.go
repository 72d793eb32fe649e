package domain

import (
	sharedDomain "github.com/felixgeelhaar/synapse/internal/shared/domain"
	"github.com/google/uuid"
)

const aggregateType = "Goal"

// GoalCreated is emitted when a goal is captured.
type GoalCreated struct {
	sharedDomain.BaseEvent
	GoalID     uuid.UUID `json:"goal_id"`
	UserID     uuid.UUID `json:"user_id"`
	Title      string    `json:"title"`
	Target     int       `json:"target"`
	PeriodType string    `json:"period_type"`
}

// NewGoalCreated creates a GoalCreated event.
func NewGoalCreated(g *Goal) *GoalCreated {
	return &GoalCreated{
		BaseEvent:  sharedDomain.NewBaseEvent(g.ID(), aggregateType, "goals.goal.created"),
		GoalID:     g.ID(),
		UserID:     g.UserID(),
		Title:      g.Title(),
		Target:     g.Target(),
		PeriodType: g.PeriodType().String(),
	}
}

// GoalProgressChanged is emitted on every progress increment or decrement.
type GoalProgressChanged struct {
	sharedDomain.BaseEvent
	GoalID     uuid.UUID `json:"goal_id"`
	UserID     uuid.UUID `json:"user_id"`
	From       int       `json:"from"`
	To         int       `json:"to"`
	Completed  bool      `json:"completed"`
	RolledOver bool      `json:"rolled_over"`
}

// NewGoalProgressChanged creates a GoalProgressChanged event.
func NewGoalProgressChanged(g *Goal, from int, rolledOver bool) *GoalProgressChanged {
	return &GoalProgressChanged{
		BaseEvent:  sharedDomain.NewBaseEvent(g.ID(), aggregateType, "goals.goal.progress_changed"),
		GoalID:     g.ID(),
		UserID:     g.UserID(),
		From:       from,
		To:         g.Progress(),
		Completed:  g.IsCompleted(),
		RolledOver: rolledOver,
	}
}

// GoalDeactivated is emitted when tracking stops.
type GoalDeactivated struct {
	sharedDomain.BaseEvent
	GoalID uuid.UUID `json:"goal_id"`
	UserID uuid.UUID `json:"user_id"`
}

// NewGoalDeactivated creates a GoalDeactivated event.
func NewGoalDeactivated(g *Goal) *GoalDeactivated {
	return &GoalDeactivated{
		BaseEvent: sharedDomain.NewBaseEvent(g.ID(), aggregateType, "goals.goal.deactivated"),
		GoalID:    g.ID(),
		UserID:    g.UserID(),
	}
}

// GoalDeleted is emitted when a goal is removed.
type GoalDeleted struct {
	sharedDomain.BaseEvent
	GoalID uuid.UUID `json:"goal_id"`
	UserID uuid.UUID `json:"user_id"`
}

// NewGoalDeleted creates a GoalDeleted event.
func NewGoalDeleted(g *Goal) *GoalDeleted {
	return &GoalDeleted{
		BaseEvent: sharedDomain.NewBaseEvent(g.ID(), aggregateType, "goals.goal.deleted"),
		GoalID:    g.ID(),
		UserID:    g.UserID(),
	}
}
