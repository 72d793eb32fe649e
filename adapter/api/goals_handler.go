package api

import (
	"net/http"
	"strconv"

	"github.com/felixgeelhaar/synapse/internal/goals/application/commands"
	"github.com/felixgeelhaar/synapse/internal/goals/application/queries"
)

// GoalsResponse is the body of GET /api/v1/goals.
type GoalsResponse struct {
	Goals []queries.GoalDTO `json:"goals"`
}

// AdjustGoalRequest is the body of POST /api/v1/goals/{id}/progress.
type AdjustGoalRequest struct {
	Delta int `json:"delta" validate:"required,min=-1000,max=1000"`
}

// GoalProgressResponse is the goal state after an adjustment.
type GoalProgressResponse struct {
	ID          string `json:"id"`
	Progress    int    `json:"progress"`
	Target      int    `json:"target"`
	Completed   bool   `json:"completed"`
	PeriodLabel string `json:"period_label"`
}

// listGoals handles GET /api/v1/goals. ?all=true includes inactive goals.
func (h *handler) listGoals(w http.ResponseWriter, r *http.Request) {
	all, _ := strconv.ParseBool(r.URL.Query().Get("all"))

	goals, err := h.container.ListGoalsHandler.Handle(r.Context(), queries.ListGoalsQuery{
		UserID:          userFrom(r.Context()),
		IncludeInactive: all,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if goals == nil {
		goals = []queries.GoalDTO{}
	}
	writeJSON(w, http.StatusOK, GoalsResponse{Goals: goals})
}

// adjustGoal handles POST /api/v1/goals/{id}/progress.
func (h *handler) adjustGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	req, err := decodeJSON[AdjustGoalRequest](w, r, strictJSON)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.container.AdjustGoalProgressHandler.Handle(r.Context(), commands.AdjustGoalProgressCommand{
		UserID: userFrom(r.Context()),
		GoalID: id,
		Delta:  req.Delta,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, GoalProgressResponse{
		ID:          result.GoalID.String(),
		Progress:    result.Progress,
		Target:      result.Target,
		Completed:   result.Completed,
		PeriodLabel: result.PeriodLabel,
	})
}

// deactivateGoal handles POST /api/v1/goals/{id}/deactivate.
func (h *handler) deactivateGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	err = h.container.DeactivateGoalHandler.Handle(r.Context(), commands.DeactivateGoalCommand{
		UserID: userFrom(r.Context()),
		GoalID: id,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// deleteGoal handles DELETE /api/v1/goals/{id}.
func (h *handler) deleteGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	err = h.container.DeleteGoalHandler.Handle(r.Context(), commands.DeleteGoalCommand{
		UserID: userFrom(r.Context()),
		GoalID: id,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
