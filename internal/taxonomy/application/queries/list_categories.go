package queries

import (
	"context"
	"time"

	"github.com/felixgeelhaar/synapse/internal/taxonomy/domain"
	"github.com/google/uuid"
)

// CategoryDTO is a category as shown to clients.
type CategoryDTO struct {
	ID        uuid.UUID `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon,omitempty"`
	Color     string    `json:"color,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ListCategoriesQuery lists a user's categories.
type ListCategoriesQuery struct {
	UserID uuid.UUID
}

// ListCategoriesHandler handles ListCategoriesQuery.
type ListCategoriesHandler struct {
	categoryRepo domain.CategoryRepository
}

// NewListCategoriesHandler creates a new ListCategoriesHandler.
func NewListCategoriesHandler(categoryRepo domain.CategoryRepository) *ListCategoriesHandler {
	return &ListCategoriesHandler{categoryRepo: categoryRepo}
}

// Handle executes the query.
func (h *ListCategoriesHandler) Handle(ctx context.Context, query ListCategoriesQuery) ([]CategoryDTO, error) {
	categories, err := h.categoryRepo.ListByUser(ctx, query.UserID)
	if err != nil {
		return nil, err
	}

	dtos := make([]CategoryDTO, 0, len(categories))
	for _, c := range categories {
		dtos = append(dtos, ToCategoryDTO(c))
	}
	return dtos, nil
}

// ToCategoryDTO converts a category.
func ToCategoryDTO(c *domain.Category) CategoryDTO {
	return CategoryDTO{
		ID:        c.ID(),
		Slug:      c.Slug(),
		Name:      c.Name(),
		Icon:      c.Icon(),
		Color:     c.Color(),
		CreatedAt: c.CreatedAt(),
	}
}
