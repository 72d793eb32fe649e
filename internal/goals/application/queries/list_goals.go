package queries

import (
	"context"
	"time"

	"github.com/felixgeelhaar/synapse/internal/goals/domain"
	"github.com/felixgeelhaar/synapse/internal/shared/infrastructure/cache"
	"github.com/google/uuid"
)

// GoalDTO is a goal as shown to clients.
type GoalDTO struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Emoji       string    `json:"emoji,omitempty"`
	Target      int       `json:"target"`
	Progress    int       `json:"progress"`
	Unit        string    `json:"unit,omitempty"`
	Percent     int       `json:"percent"`
	Completed   bool      `json:"completed"`
	PeriodType  string    `json:"period_type"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	PeriodLabel string    `json:"period_label"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToGoalDTO converts a goal.
func ToGoalDTO(g *domain.Goal) GoalDTO {
	return GoalDTO{
		ID:          g.ID(),
		Title:       g.Title(),
		Emoji:       g.Emoji(),
		Target:      g.Target(),
		Progress:    g.Progress(),
		Unit:        g.Unit(),
		Percent:     g.Percent(),
		Completed:   g.IsCompleted(),
		PeriodType:  g.PeriodType().String(),
		PeriodStart: g.PeriodStart(),
		PeriodEnd:   g.PeriodEnd(),
		PeriodLabel: g.PeriodLabel(),
		Active:      g.IsActive(),
		CreatedAt:   g.CreatedAt(),
	}
}

// ListGoalsQuery lists a user's goals. Only active goals are returned unless
// IncludeInactive is set.
type ListGoalsQuery struct {
	UserID          uuid.UUID
	IncludeInactive bool
}

// ListGoalsHandler handles ListGoalsQuery.
type ListGoalsHandler struct {
	goalRepo domain.Repository
	views    *cache.Views
}

// NewListGoalsHandler creates a new ListGoalsHandler. views may be nil.
func NewListGoalsHandler(goalRepo domain.Repository, views *cache.Views) *ListGoalsHandler {
	return &ListGoalsHandler{goalRepo: goalRepo, views: views}
}

// Handle executes the query.
func (h *ListGoalsHandler) Handle(ctx context.Context, query ListGoalsQuery) ([]GoalDTO, error) {
	variant := "active"
	if query.IncludeInactive {
		variant = "all"
	}

	var dtos []GoalDTO
	if h.views.Load(ctx, query.UserID, cache.ViewGoals, variant, &dtos) {
		return dtos, nil
	}

	fill := h.views.StartFill(query.UserID, cache.ViewGoals, variant)
	goals, err := h.goalRepo.List(ctx, query.UserID, !query.IncludeInactive)
	if err != nil {
		return nil, err
	}
	dtos = make([]GoalDTO, 0, len(goals))
	for _, g := range goals {
		dtos = append(dtos, ToGoalDTO(g))
	}
	h.views.SaveFill(ctx, fill, dtos)
	return dtos, nil
}
