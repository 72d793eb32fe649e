package domain

import (
	"context"

	"github.com/google/uuid"
)

// CategoryRepository persists categories. Lookups that match nothing return
// nil without an error.
type CategoryRepository interface {
	// Create inserts a category; a duplicate slug returns ErrCategoryExists.
	Create(ctx context.Context, category *Category) error
	FindByID(ctx context.Context, userID, id uuid.UUID) (*Category, error)
	FindBySlug(ctx context.Context, userID uuid.UUID, slug string) (*Category, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Category, error)
}

// SubjectRepository persists subjects.
type SubjectRepository interface {
	// Create inserts a subject; a duplicate slug returns ErrSubjectExists.
	Create(ctx context.Context, subject *Subject) error
	FindBySlug(ctx context.Context, userID uuid.UUID, slug string) (*Subject, error)
	// ListByUser returns the user's subjects, restricted to categoryID when set.
	ListByUser(ctx context.Context, userID uuid.UUID, categoryID *uuid.UUID) ([]*Subject, error)
}
