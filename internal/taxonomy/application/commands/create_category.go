package commands

import (
	"context"

	sharedApplication "github.com/felixgeelhaar/synapse/internal/shared/application"
	"github.com/felixgeelhaar/synapse/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/synapse/internal/taxonomy/domain"
	"github.com/google/uuid"
)

// CreateCategoryCommand adds a category for a user.
type CreateCategoryCommand struct {
	UserID uuid.UUID
	Slug   string
	Name   string
	Icon   string
	Color  string
}

// CreateCategoryResult identifies the new category.
type CreateCategoryResult struct {
	CategoryID uuid.UUID
	Slug       string
}

// CreateCategoryHandler handles CreateCategoryCommand.
type CreateCategoryHandler struct {
	categoryRepo domain.CategoryRepository
	outboxRepo   outbox.Repository
	uow          sharedApplication.UnitOfWork
}

// NewCreateCategoryHandler creates a new CreateCategoryHandler.
func NewCreateCategoryHandler(categoryRepo domain.CategoryRepository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *CreateCategoryHandler {
	return &CreateCategoryHandler{categoryRepo: categoryRepo, outboxRepo: outboxRepo, uow: uow}
}

// Handle executes the command.
func (h *CreateCategoryHandler) Handle(ctx context.Context, cmd CreateCategoryCommand) (*CreateCategoryResult, error) {
	category, err := domain.NewCategory(cmd.UserID, cmd.Slug, cmd.Name, cmd.Icon, cmd.Color)
	if err != nil {
		return nil, err
	}

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if err := h.categoryRepo.Create(txCtx, category); err != nil {
			return err
		}
		events := category.DomainEvents()
		sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(txCtx, cmd.UserID))
		return outbox.Record(txCtx, h.outboxRepo, events)
	})
	if err != nil {
		return nil, err
	}
	category.ClearDomainEvents()

	return &CreateCategoryResult{CategoryID: category.ID(), Slug: category.Slug()}, nil
}
