package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/synapse/internal/entries/domain"
	sharedApplication "github.com/felixgeelhaar/synapse/internal/shared/application"
	"github.com/felixgeelhaar/synapse/internal/shared/contract"
	"github.com/felixgeelhaar/synapse/internal/shared/infrastructure/cache"
	"github.com/felixgeelhaar/synapse/internal/shared/infrastructure/outbox"
	taxonomyDomain "github.com/felixgeelhaar/synapse/internal/taxonomy/domain"
	"github.com/google/uuid"
)

// UpdateEntryCommand edits an entry. Nil fields are unchanged. An empty
// CategorySlug or SubjectSlug clears the reference.
type UpdateEntryCommand struct {
	UserID         uuid.UUID
	EntryID        uuid.UUID
	Content        *string
	Tags           []string
	SetTags        bool
	Priority       *string
	CategorySlug   *string
	SubjectSlug    *string
	StartDate      *time.Time
	ClearStartDate bool
	DueDate        *time.Time
	ClearDueDate   bool
}

// UpdateEntryHandler handles UpdateEntryCommand.
type UpdateEntryHandler struct {
	writer       entryWriter
	categoryRepo taxonomyDomain.CategoryRepository
	subjectRepo  taxonomyDomain.SubjectRepository
}

// NewUpdateEntryHandler creates a new UpdateEntryHandler.
func NewUpdateEntryHandler(
	entryRepo domain.Repository,
	categoryRepo taxonomyDomain.CategoryRepository,
	subjectRepo taxonomyDomain.SubjectRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	views *cache.Views,
) *UpdateEntryHandler {
	return &UpdateEntryHandler{
		writer:       entryWriter{entryRepo: entryRepo, outboxRepo: outboxRepo, uow: uow, views: views},
		categoryRepo: categoryRepo,
		subjectRepo:  subjectRepo,
	}
}

// Handle executes the command. Naming a category or subject that does not
// exist is an error.
func (h *UpdateEntryHandler) Handle(ctx context.Context, cmd UpdateEntryCommand) error {
	changes := domain.Changes{
		Content:        cmd.Content,
		Tags:           cmd.Tags,
		SetTags:        cmd.SetTags,
		StartDate:      cmd.StartDate,
		ClearStartDate: cmd.ClearStartDate,
		DueDate:        cmd.DueDate,
		ClearDueDate:   cmd.ClearDueDate,
	}
	if cmd.Priority != nil {
		p := contract.NormalizePriority(*cmd.Priority)
		changes.Priority = &p
	}

	if cmd.CategorySlug != nil {
		id, err := h.resolveCategory(ctx, cmd.UserID, *cmd.CategorySlug)
		if err != nil {
			return err
		}
		changes.CategoryID, changes.ClearCategory = id, id == nil
	}
	if cmd.SubjectSlug != nil {
		id, err := h.resolveSubject(ctx, cmd.UserID, *cmd.SubjectSlug)
		if err != nil {
			return err
		}
		changes.SubjectID, changes.ClearSubject = id, id == nil
	}

	_, err := h.writer.mutate(ctx, cmd.UserID, cmd.EntryID,
		func(e *domain.Entry) error { return e.Update(changes) },
		h.writer.entryRepo.Save,
	)
	return err
}

func (h *UpdateEntryHandler) resolveCategory(ctx context.Context, userID uuid.UUID, slug string) (*uuid.UUID, error) {
	slug = contract.NormalizeSlug(slug)
	if slug == "" {
		return nil, nil
	}
	category, err := h.categoryRepo.FindBySlug(ctx, userID, slug)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, taxonomyDomain.ErrCategoryMissing
	}
	id := category.ID()
	return &id, nil
}

func (h *UpdateEntryHandler) resolveSubject(ctx context.Context, userID uuid.UUID, slug string) (*uuid.UUID, error) {
	slug = contract.NormalizeSlug(slug)
	if slug == "" {
		return nil, nil
	}
	subject, err := h.subjectRepo.FindBySlug(ctx, userID, slug)
	if err != nil {
		return nil, err
	}
	if subject == nil {
		return nil, taxonomyDomain.ErrSubjectMissing
	}
	id := subject.ID()
	return &id, nil
}
