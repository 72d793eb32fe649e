package queries

import (
	"context"

	"github.com/felixgeelhaar/synapse/internal/shared/contract"
	"github.com/felixgeelhaar/synapse/internal/taxonomy/domain"
	"github.com/google/uuid"
)

// SubjectDTO is a subject as shown to clients.
type SubjectDTO struct {
	ID           uuid.UUID  `json:"id"`
	Slug         string     `json:"slug"`
	Name         string     `json:"name"`
	Color        string     `json:"color,omitempty"`
	CategoryID   *uuid.UUID `json:"category_id,omitempty"`
	CategorySlug string     `json:"category_slug,omitempty"`
}

// ListSubjectsQuery lists subjects, optionally inside one category.
type ListSubjectsQuery struct {
	UserID       uuid.UUID
	CategorySlug string
}

// ListSubjectsHandler handles ListSubjectsQuery.
type ListSubjectsHandler struct {
	categoryRepo domain.CategoryRepository
	subjectRepo  domain.SubjectRepository
}

// NewListSubjectsHandler creates a new ListSubjectsHandler.
func NewListSubjectsHandler(categoryRepo domain.CategoryRepository, subjectRepo domain.SubjectRepository) *ListSubjectsHandler {
	return &ListSubjectsHandler{categoryRepo: categoryRepo, subjectRepo: subjectRepo}
}

// Handle executes the query. An unknown category slug yields no subjects.
func (h *ListSubjectsHandler) Handle(ctx context.Context, query ListSubjectsQuery) ([]SubjectDTO, error) {
	categories, err := h.categoryRepo.ListByUser(ctx, query.UserID)
	if err != nil {
		return nil, err
	}
	slugs := make(map[uuid.UUID]string, len(categories))
	var filter *uuid.UUID
	wanted := contract.NormalizeSlug(query.CategorySlug)
	for _, c := range categories {
		slugs[c.ID()] = c.Slug()
		if wanted != "" && c.Slug() == wanted {
			id := c.ID()
			filter = &id
		}
	}
	if wanted != "" && filter == nil {
		return []SubjectDTO{}, nil
	}

	subjects, err := h.subjectRepo.ListByUser(ctx, query.UserID, filter)
	if err != nil {
		return nil, err
	}

	dtos := make([]SubjectDTO, 0, len(subjects))
	for _, s := range subjects {
		dto := SubjectDTO{
			ID:         s.ID(),
			Slug:       s.Slug(),
			Name:       s.Name(),
			Color:      s.Color(),
			CategoryID: s.CategoryID(),
		}
		if s.CategoryID() != nil {
			dto.CategorySlug = slugs[*s.CategoryID()]
		}
		dtos = append(dtos, dto)
	}
	return dtos, nil
}
