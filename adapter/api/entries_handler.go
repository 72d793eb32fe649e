package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/felixgeelhaar/synapse/internal/entries/application/commands"
	"github.com/felixgeelhaar/synapse/internal/entries/application/queries"
	"github.com/google/uuid"
)

const maxListLimit = 500

// EntriesResponse is the body of GET /api/v1/entries.
type EntriesResponse struct {
	View    string             `json:"view"`
	Entries []queries.EntryDTO `json:"entries"`
}

// BoardResponse is the body of GET /api/v1/entries/board.
type BoardResponse struct {
	Columns []queries.StatusColumn `json:"columns"`
}

// StatusResponse reports an entry's status after a change.
type StatusResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// listEntries handles GET /api/v1/entries.
func (h *handler) listEntries(w http.ResponseWriter, r *http.Request) {
	query, err := listQuery(r, r.URL.Query().Get("view"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	entries, err := h.container.ListEntriesHandler.Handle(r.Context(), query)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if entries == nil {
		entries = []queries.EntryDTO{}
	}
	writeJSON(w, http.StatusOK, EntriesResponse{View: query.View, Entries: entries})
}

// board handles GET /api/v1/entries/board.
func (h *handler) board(w http.ResponseWriter, r *http.Request) {
	query, err := listQuery(r, queries.ViewKanban)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	entries, err := h.container.ListEntriesHandler.Handle(r.Context(), query)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, BoardResponse{Columns: queries.GroupByStatus(entries)})
}

func listQuery(r *http.Request, view string) (queries.ListEntriesQuery, error) {
	query := queries.ListEntriesQuery{
		UserID:       userFrom(r.Context()),
		View:         view,
		Types:        listParam(r, "type"),
		Statuses:     listParam(r, "status"),
		CategorySlug: r.URL.Query().Get("category"),
		SubjectSlug:  r.URL.Query().Get("subject"),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 || limit > maxListLimit {
			return query, &bindError{msg: "limit must be between 0 and " + strconv.Itoa(maxListLimit)}
		}
		query.Limit = limit
	}
	return query, nil
}

// getEntry handles GET /api/v1/entries/{id}.
func (h *handler) getEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	entry, err := h.container.GetEntryHandler.Handle(r.Context(), queries.GetEntryQuery{
		UserID:  userFrom(r.Context()),
		EntryID: id,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// UpdateEntryRequest is the body of PATCH /api/v1/entries/{id}. Absent
// fields are unchanged; an empty category, subject or date clears it.
type UpdateEntryRequest struct {
	Content   *string   `json:"content" validate:"omitempty,max=10000"`
	Tags      *[]string `json:"tags" validate:"omitempty,max=32"`
	Priority  *string   `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Category  *string   `json:"category" validate:"omitempty,max=64"`
	Subject   *string   `json:"subject" validate:"omitempty,max=64"`
	StartDate *string   `json:"start_date"`
	DueDate   *string   `json:"due_date"`
}

func (req UpdateEntryRequest) command(r *http.Request, id uuid.UUID) (commands.UpdateEntryCommand, error) {
	cmd := commands.UpdateEntryCommand{
		UserID:       userFrom(r.Context()),
		EntryID:      id,
		Content:      req.Content,
		Priority:     req.Priority,
		CategorySlug: req.Category,
		SubjectSlug:  req.Subject,
	}
	if req.Tags != nil {
		cmd.Tags, cmd.SetTags = *req.Tags, true
	}

	var err error
	cmd.StartDate, cmd.ClearStartDate, err = dateChange("start_date", req.StartDate)
	if err != nil {
		return cmd, err
	}
	cmd.DueDate, cmd.ClearDueDate, err = dateChange("due_date", req.DueDate)
	if err != nil {
		return cmd, err
	}
	return cmd, nil
}

// dateChange turns an optional date field into set/clear instructions.
func dateChange(field string, raw *string) (*time.Time, bool, error) {
	switch {
	case raw == nil:
		return nil, false, nil
	case *raw == "":
		return nil, true, nil
	}
	t, err := parseDate(field, *raw)
	if err != nil {
		return nil, false, err
	}
	return &t, false, nil
}

// updateEntry handles PATCH /api/v1/entries/{id} and returns the stored entry.
func (h *handler) updateEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	req, err := decodeJSON[UpdateEntryRequest](w, r, strictJSON)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	cmd, err := req.command(r, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.container.UpdateEntryHandler.Handle(r.Context(), cmd); err != nil {
		h.fail(w, r, err)
		return
	}

	entry, err := h.container.GetEntryHandler.Handle(r.Context(), queries.GetEntryQuery{UserID: cmd.UserID, EntryID: id})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// ChangeStatusRequest is the body of PUT /api/v1/entries/{id}/status.
type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required,max=32"`
}

// changeStatus handles PUT /api/v1/entries/{id}/status.
func (h *handler) changeStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	req, err := decodeJSON[ChangeStatusRequest](w, r, strictJSON)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.container.ChangeStatusHandler.Handle(r.Context(), commands.ChangeStatusCommand{
		UserID:  userFrom(r.Context()),
		EntryID: id,
		Status:  req.Status,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{ID: result.EntryID.String(), Status: result.Status.String()})
}

// toggleStatus handles POST /api/v1/entries/{id}/toggle.
func (h *handler) toggleStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.container.ChangeStatusHandler.Toggle(r.Context(), commands.ToggleStatusCommand{
		UserID:  userFrom(r.Context()),
		EntryID: id,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{ID: result.EntryID.String(), Status: result.Status.String()})
}

// deleteEntry handles DELETE /api/v1/entries/{id}.
func (h *handler) deleteEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	err = h.container.DeleteEntryHandler.Handle(r.Context(), commands.DeleteEntryCommand{
		UserID:  userFrom(r.Context()),
		EntryID: id,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// stats handles GET /api/v1/stats.
func (h *handler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.container.EntryStatsHandler.Handle(r.Context(), queries.EntryStatsQuery{UserID: userFrom(r.Context())})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
