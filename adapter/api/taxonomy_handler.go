package api

import (
	"net/http"

	"github.com/felixgeelhaar/synapse/internal/taxonomy/application/commands"
	"github.com/felixgeelhaar/synapse/internal/taxonomy/application/queries"
)

// CreateCategoryRequest is the body of POST /api/v1/categories.
type CreateCategoryRequest struct {
	Slug  string `json:"slug" validate:"required,max=64"`
	Name  string `json:"name" validate:"required,max=128"`
	Icon  string `json:"icon" validate:"max=16"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
}

// CreateSubjectRequest is the body of POST /api/v1/subjects.
type CreateSubjectRequest struct {
	Category string `json:"category" validate:"max=64"`
	Slug     string `json:"slug" validate:"required,max=64"`
	Name     string `json:"name" validate:"required,max=128"`
	Color    string `json:"color" validate:"omitempty,hexcolor"`
}

// CreatedResponse identifies a new category or subject.
type CreatedResponse struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
}

// listCategories handles GET /api/v1/categories.
func (h *handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.container.ListCategoriesHandler.Handle(r.Context(), queries.ListCategoriesQuery{
		UserID: userFrom(r.Context()),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if categories == nil {
		categories = []queries.CategoryDTO{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

// createCategory handles POST /api/v1/categories.
func (h *handler) createCategory(w http.ResponseWriter, r *http.Request) {
	req, err := decodeJSON[CreateCategoryRequest](w, r, strictJSON)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.container.CreateCategoryHandler.Handle(r.Context(), commands.CreateCategoryCommand{
		UserID: userFrom(r.Context()),
		Slug:   req.Slug,
		Name:   req.Name,
		Icon:   req.Icon,
		Color:  req.Color,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, CreatedResponse{ID: result.CategoryID.String(), Slug: result.Slug})
}

// listSubjects handles GET /api/v1/subjects. ?category= narrows to one
// category.
func (h *handler) listSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.container.ListSubjectsHandler.Handle(r.Context(), queries.ListSubjectsQuery{
		UserID:       userFrom(r.Context()),
		CategorySlug: r.URL.Query().Get("category"),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if subjects == nil {
		subjects = []queries.SubjectDTO{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"subjects": subjects})
}

// createSubject handles POST /api/v1/subjects.
func (h *handler) createSubject(w http.ResponseWriter, r *http.Request) {
	req, err := decodeJSON[CreateSubjectRequest](w, r, strictJSON)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.container.CreateSubjectHandler.Handle(r.Context(), commands.CreateSubjectCommand{
		UserID:       userFrom(r.Context()),
		CategorySlug: req.Category,
		Slug:         req.Slug,
		Name:         req.Name,
		Color:        req.Color,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, CreatedResponse{ID: result.SubjectID.String(), Slug: req.Slug})
}
