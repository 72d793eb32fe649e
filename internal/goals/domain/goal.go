// Package domain holds the Goal aggregate: a numeric target tracked over a
// weekly or monthly period.
package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/felixgeelhaar/synapse/internal/shared/contract"
	sharedDomain "github.com/felixgeelhaar/synapse/internal/shared/domain"
	"github.com/google/uuid"
)

var (
	ErrEmptyTitle    = errors.New("goal title cannot be empty")
	ErrInvalidTarget = errors.New("goal target must be positive")
	ErrInvalidPeriod = errors.New("goal period must be weekly or monthly")
	ErrGoalNotFound  = errors.New("goal not found")
	ErrGoalInactive  = errors.New("goal is no longer active")
)

// Goal is a recurring target, e.g. "run 3 times a week".
type Goal struct {
	sharedDomain.BaseAggregateRoot
	userID      uuid.UUID
	title       string
	emoji       string
	target      int
	progress    int
	unit        string
	periodType  contract.PeriodType
	periodStart time.Time
	active      bool
}

// NewGoalParams holds everything needed to create a goal.
type NewGoalParams struct {
	UserID     uuid.UUID
	Title      string
	Emoji      string
	Target     int
	Unit       string
	PeriodType contract.PeriodType
	Now        time.Time
}

// NewGoal creates an active goal with zero progress whose period contains Now.
func NewGoal(p NewGoalParams) (*Goal, error) {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if p.Target <= 0 {
		return nil, ErrInvalidTarget
	}
	if !p.PeriodType.IsValid() {
		return nil, ErrInvalidPeriod
	}
	now := p.Now
	if now.IsZero() {
		now = time.Now()
	}

	g := &Goal{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(now),
		userID:            p.UserID,
		title:             title,
		emoji:             strings.TrimSpace(p.Emoji),
		target:            p.Target,
		unit:              strings.TrimSpace(p.Unit),
		periodType:        p.PeriodType,
		periodStart:       contract.PeriodStart(p.PeriodType, now),
		active:            true,
	}
	g.AddDomainEvent(NewGoalCreated(g))
	return g, nil
}

// RehydrateGoalParams is persisted goal state.
type RehydrateGoalParams struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Title       string
	Emoji       string
	Target      int
	Progress    int
	Unit        string
	PeriodType  contract.PeriodType
	PeriodStart time.Time
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RehydrateGoal recreates a goal from storage without recording events.
func RehydrateGoal(p RehydrateGoalParams) *Goal {
	return &Goal{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(p.ID, p.CreatedAt, p.UpdatedAt),
		userID:            p.UserID,
		title:             p.Title,
		emoji:             p.Emoji,
		target:            p.Target,
		progress:          p.Progress,
		unit:              p.Unit,
		periodType:        p.PeriodType,
		periodStart:       p.PeriodStart,
		active:            p.Active,
	}
}

func (g *Goal) UserID() uuid.UUID               { return g.userID }
func (g *Goal) Title() string                   { return g.title }
func (g *Goal) Emoji() string                   { return g.emoji }
func (g *Goal) Target() int                     { return g.target }
func (g *Goal) Progress() int                   { return g.progress }
func (g *Goal) Unit() string                    { return g.unit }
func (g *Goal) PeriodType() contract.PeriodType { return g.periodType }
func (g *Goal) PeriodStart() time.Time          { return g.periodStart }
func (g *Goal) IsActive() bool                  { return g.active }

// PeriodEnd is the exclusive end of the current period.
func (g *Goal) PeriodEnd() time.Time {
	return contract.PeriodEnd(g.periodType, g.periodStart)
}

// PeriodLabel renders the current period, e.g. "week of Mar 2, 2026".
func (g *Goal) PeriodLabel() string {
	return contract.PeriodLabel(g.periodType, g.periodStart)
}

// IsCompleted reports whether progress has reached the target.
func (g *Goal) IsCompleted() bool {
	return g.progress >= g.target
}

// Percent is progress as a share of target, capped at 100.
func (g *Goal) Percent() int {
	if g.target <= 0 {
		return 0
	}
	return min(100, g.progress*100/g.target)
}

// AdjustProgress adds delta to progress, never going below zero. When the
// stored period has ended, the goal first moves to the period containing now
// and progress restarts from zero.
func (g *Goal) AdjustProgress(delta int, now time.Time) error {
	if !g.active {
		return ErrGoalInactive
	}

	from := g.progress
	rolledOver := false
	if !now.Before(g.PeriodEnd()) {
		g.periodStart = contract.PeriodStart(g.periodType, now)
		g.progress = 0
		rolledOver = true
	}

	g.progress = max(0, g.progress+delta)
	if g.progress == from && !rolledOver {
		return nil
	}

	g.Touch()
	g.AddDomainEvent(NewGoalProgressChanged(g, from, rolledOver))
	return nil
}

// Deactivate stops tracking the goal. Deactivating twice is a no-op.
func (g *Goal) Deactivate() {
	if !g.active {
		return
	}
	g.active = false
	g.Touch()
	g.AddDomainEvent(NewGoalDeactivated(g))
}

// MarkDeleted records the deletion event; removal is the repository's job.
func (g *Goal) MarkDeleted() {
	g.AddDomainEvent(NewGoalDeleted(g))
}
