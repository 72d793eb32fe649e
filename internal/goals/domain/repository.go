package domain

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists goals. FindByID returns nil without an error when
// nothing matches.
type Repository interface {
	// Save inserts or fully updates a goal.
	Save(ctx context.Context, goal *Goal) error
	FindByID(ctx context.Context, userID, id uuid.UUID) (*Goal, error)
	// List returns goals newest first, only active ones when activeOnly is set.
	List(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]*Goal, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
