package commands

import (
	"context"

	sharedApplication "github.com/felixgeelhaar/synapse/internal/shared/application"
	"github.com/felixgeelhaar/synapse/internal/shared/contract"
	"github.com/felixgeelhaar/synapse/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/synapse/internal/taxonomy/domain"
	"github.com/google/uuid"
)

// CreateSubjectCommand adds a subject, optionally under a category slug.
type CreateSubjectCommand struct {
	UserID       uuid.UUID
	CategorySlug string
	Slug         string
	Name         string
	Color        string
}

// CreateSubjectResult identifies the new subject.
type CreateSubjectResult struct {
	SubjectID  uuid.UUID
	CategoryID *uuid.UUID
}

// CreateSubjectHandler handles CreateSubjectCommand.
type CreateSubjectHandler struct {
	categoryRepo domain.CategoryRepository
	subjectRepo  domain.SubjectRepository
	outboxRepo   outbox.Repository
	uow          sharedApplication.UnitOfWork
}

// NewCreateSubjectHandler creates a new CreateSubjectHandler.
func NewCreateSubjectHandler(
	categoryRepo domain.CategoryRepository,
	subjectRepo domain.SubjectRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
) *CreateSubjectHandler {
	return &CreateSubjectHandler{
		categoryRepo: categoryRepo,
		subjectRepo:  subjectRepo,
		outboxRepo:   outboxRepo,
		uow:          uow,
	}
}

// Handle executes the command. Naming a category that does not exist is an
// error here, unlike capture where unknown slugs are tolerated.
func (h *CreateSubjectHandler) Handle(ctx context.Context, cmd CreateSubjectCommand) (*CreateSubjectResult, error) {
	var result *CreateSubjectResult

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		var categoryID *uuid.UUID
		if slug := contract.NormalizeSlug(cmd.CategorySlug); slug != "" {
			category, err := h.categoryRepo.FindBySlug(txCtx, cmd.UserID, slug)
			if err != nil {
				return err
			}
			if category == nil {
				return domain.ErrCategoryMissing
			}
			id := category.ID()
			categoryID = &id
		}

		subject, err := domain.NewSubject(cmd.UserID, categoryID, cmd.Slug, cmd.Name, cmd.Color)
		if err != nil {
			return err
		}
		if err := h.subjectRepo.Create(txCtx, subject); err != nil {
			return err
		}

		events := subject.DomainEvents()
		sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(txCtx, cmd.UserID))
		if err := outbox.Record(txCtx, h.outboxRepo, events); err != nil {
			return err
		}

		result = &CreateSubjectResult{SubjectID: subject.ID(), CategoryID: categoryID}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
