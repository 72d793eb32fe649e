// Package application runs a capture: classify the text, then store either
// one entry or one goal with its companion entry.
package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/synapse/internal/capture/domain"
	classifierDomain "github.com/felixgeelhaar/synapse/internal/classifier/domain"
	entryQueries "github.com/felixgeelhaar/synapse/internal/entries/application/queries"
	entryDomain "github.com/felixgeelhaar/synapse/internal/entries/domain"
	goalQueries "github.com/felixgeelhaar/synapse/internal/goals/application/queries"
	goalDomain "github.com/felixgeelhaar/synapse/internal/goals/domain"
	sharedApplication "github.com/felixgeelhaar/synapse/internal/shared/application"
	"github.com/felixgeelhaar/synapse/internal/shared/contract"
	sharedDomain "github.com/felixgeelhaar/synapse/internal/shared/domain"
	"github.com/felixgeelhaar/synapse/internal/shared/infrastructure/cache"
	"github.com/felixgeelhaar/synapse/internal/shared/infrastructure/outbox"
	taxonomyDomain "github.com/felixgeelhaar/synapse/internal/taxonomy/domain"
	"github.com/felixgeelhaar/synapse/pkg/observability"
	"github.com/google/uuid"
)

// CaptureCommand is one piece of free text typed by a user.
type CaptureCommand struct {
	UserID uuid.UUID
	Text   string
}

// CaptureResult tells which records were written. Entry is always set: on the
// goal path it is the companion history entry.
type CaptureResult struct {
	Kind         domain.Kind            `json:"kind"`
	Entry        *entryQueries.EntryDTO `json:"entry"`
	Goal         *goalQueries.GoalDTO   `json:"goal,omitempty"`
	PeriodLabel  string                 `json:"period_label,omitempty"`
	CategoryName string                 `json:"category_name,omitempty"`
}

// CaptureHandler handles CaptureCommand.
type CaptureHandler struct {
	classifier   classifierDomain.Classifier
	entryRepo    entryDomain.Repository
	goalRepo     goalDomain.Repository
	categoryRepo taxonomyDomain.CategoryRepository
	subjectRepo  taxonomyDomain.SubjectRepository
	outboxRepo   outbox.Repository
	uow          sharedApplication.UnitOfWork
	views        *cache.Views
	now          func() time.Time
	logger       *slog.Logger
	metrics      observability.Metrics
}

// CaptureDeps groups the collaborators of a CaptureHandler. Views, Logger and
// Metrics are optional.
type CaptureDeps struct {
	Classifier   classifierDomain.Classifier
	EntryRepo    entryDomain.Repository
	GoalRepo     goalDomain.Repository
	CategoryRepo taxonomyDomain.CategoryRepository
	SubjectRepo  taxonomyDomain.SubjectRepository
	OutboxRepo   outbox.Repository
	UnitOfWork   sharedApplication.UnitOfWork
	Views        *cache.Views
	Logger       *slog.Logger
	Metrics      observability.Metrics
}

// NewCaptureHandler creates a new CaptureHandler.
func NewCaptureHandler(deps CaptureDeps) *CaptureHandler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &CaptureHandler{
		classifier:   deps.Classifier,
		entryRepo:    deps.EntryRepo,
		goalRepo:     deps.GoalRepo,
		categoryRepo: deps.CategoryRepo,
		subjectRepo:  deps.SubjectRepo,
		outboxRepo:   deps.OutboxRepo,
		uow:          deps.UnitOfWork,
		views:        deps.Views,
		now:          time.Now,
		logger:       logger,
		metrics:      metrics,
	}
}

// WithClock replaces the time source used for goal periods.
func (h *CaptureHandler) WithClock(now func() time.Time) *CaptureHandler {
	h.now = now
	return h
}

// Handle classifies cmd.Text and stores the result. Classifier errors are
// returned unchanged; storage failures come back as *domain.PersistenceError.
// Nothing is retried.
func (h *CaptureHandler) Handle(ctx context.Context, cmd CaptureCommand) (*CaptureResult, error) {
	if cmd.UserID == uuid.Nil {
		return nil, domain.ErrUnauthenticated
	}

	classification, err := h.classifier.Classify(ctx, cmd.Text)
	if err != nil {
		return nil, err
	}

	var result *CaptureResult
	if domain.KindOf(classification) == domain.KindGoal {
		result, err = h.captureGoal(ctx, cmd, classification)
	} else {
		result, err = h.captureEntry(ctx, cmd, classification)
	}
	if err != nil {
		var persistErr *domain.PersistenceError
		if !errors.As(err, &persistErr) && !isValidation(err) {
			err = &domain.PersistenceError{Op: "commit " + string(domain.KindOf(classification)), Err: err}
		}
		h.logger.ErrorContext(ctx, "capture failed", "user_id", cmd.UserID, "error", err)
		return nil, err
	}

	h.metrics.Counter(observability.MetricCaptures, 1, observability.T("kind", string(result.Kind)))
	if result.Kind == domain.KindGoal {
		h.views.MarkStale(ctx, cmd.UserID, cache.ViewGoals, cache.ViewEntries, cache.ViewStats)
	} else {
		h.views.MarkStale(ctx, cmd.UserID, cache.ViewEntries, cache.ViewStats)
	}
	h.logger.InfoContext(ctx, "captured",
		"user_id", cmd.UserID,
		"kind", result.Kind,
		"entry_id", result.Entry.ID,
	)
	return result, nil
}

func (h *CaptureHandler) captureEntry(ctx context.Context, cmd CaptureCommand, c classifierDomain.Classification) (*CaptureResult, error) {
	draft := domain.NewEntryDraft(c)
	var (
		entry        *entryDomain.Entry
		categoryName string
	)

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		categoryID, name, err := h.resolveCategory(txCtx, cmd.UserID, draft.CategorySlug)
		if err != nil {
			return err
		}
		categoryName = name
		subjectID, err := h.resolveSubject(txCtx, cmd.UserID, draft.SubjectSlug)
		if err != nil {
			return err
		}

		entry, err = entryDomain.NewEntry(entryDomain.NewEntryParams{
			UserID:     cmd.UserID,
			CategoryID: categoryID,
			SubjectID:  subjectID,
			Content:    cmd.Text,
			Type:       draft.Type,
			Metadata:   draft.Metadata,
			Tags:       draft.Tags,
			Priority:   draft.Priority,
			DueDate:    draft.DueDate,
		})
		if err != nil {
			return err
		}
		if err := h.entryRepo.Save(txCtx, entry); err != nil {
			return &domain.PersistenceError{Op: "save entry", Err: err}
		}
		return h.record(txCtx, cmd.UserID, entry.DomainEvents())
	})
	if err != nil {
		return nil, err
	}
	entry.ClearDomainEvents()

	dto := entryQueries.ToEntryDTO(entry)
	return &CaptureResult{Kind: domain.KindEntry, Entry: &dto, CategoryName: categoryName}, nil
}

func (h *CaptureHandler) captureGoal(ctx context.Context, cmd CaptureCommand, c classifierDomain.Classification) (*CaptureResult, error) {
	draft := domain.NewGoalDraft(cmd.Text, c)
	var (
		goal  *goalDomain.Goal
		entry *entryDomain.Entry
	)

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		var err error
		goal, err = goalDomain.NewGoal(goalDomain.NewGoalParams{
			UserID:     cmd.UserID,
			Title:      draft.Title,
			Emoji:      draft.Emoji,
			Target:     draft.Target,
			Unit:       draft.Unit,
			PeriodType: draft.PeriodType,
			Now:        h.now(),
		})
		if err != nil {
			return err
		}
		if err := h.goalRepo.Save(txCtx, goal); err != nil {
			return &domain.PersistenceError{Op: "save goal", Err: err}
		}

		categoryID, _, err := h.resolveCategory(txCtx, cmd.UserID, contract.NormalizeSlug(c.CategorySlug()))
		if err != nil {
			return err
		}
		entry, err = entryDomain.NewEntry(entryDomain.NewEntryParams{
			UserID:     cmd.UserID,
			CategoryID: categoryID,
			Content:    cmd.Text,
			Type:       contract.EntryTypeTask,
			Metadata:   domain.CompanionMetadata(c.Metadata(), goal.ID().String()),
		})
		if err != nil {
			return err
		}
		if err := h.entryRepo.Save(txCtx, entry); err != nil {
			return &domain.PersistenceError{Op: "save goal entry", Err: err}
		}

		events := make([]sharedDomain.DomainEvent, 0, 2)
		events = append(events, goal.DomainEvents()...)
		events = append(events, entry.DomainEvents()...)
		return h.record(txCtx, cmd.UserID, events)
	})
	if err != nil {
		return nil, err
	}
	goal.ClearDomainEvents()
	entry.ClearDomainEvents()

	goalDTO := goalQueries.ToGoalDTO(goal)
	entryDTO := entryQueries.ToEntryDTO(entry)
	return &CaptureResult{
		Kind:        domain.KindGoal,
		Entry:       &entryDTO,
		Goal:        &goalDTO,
		PeriodLabel: goal.PeriodLabel(),
	}, nil
}

func (h *CaptureHandler) record(ctx context.Context, userID uuid.UUID, events []sharedDomain.DomainEvent) error {
	sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(ctx, userID))
	if err := outbox.Record(ctx, h.outboxRepo, events); err != nil {
		return &domain.PersistenceError{Op: "record events", Err: err}
	}
	return nil
}

// resolveCategory looks up slug. A missing category is a null reference.
func (h *CaptureHandler) resolveCategory(ctx context.Context, userID uuid.UUID, slug string) (*uuid.UUID, string, error) {
	if slug == "" {
		return nil, "", nil
	}
	category, err := h.categoryRepo.FindBySlug(ctx, userID, slug)
	if err != nil {
		return nil, "", &domain.PersistenceError{Op: "find category", Err: err}
	}
	if category == nil {
		return nil, "", nil
	}
	id := category.ID()
	return &id, category.Name(), nil
}

func (h *CaptureHandler) resolveSubject(ctx context.Context, userID uuid.UUID, slug string) (*uuid.UUID, error) {
	if slug == "" || h.subjectRepo == nil {
		return nil, nil
	}
	subject, err := h.subjectRepo.FindBySlug(ctx, userID, slug)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "find subject", Err: err}
	}
	if subject == nil {
		return nil, nil
	}
	id := subject.ID()
	return &id, nil
}

func isValidation(err error) bool {
	for _, target := range []error{
		entryDomain.ErrEmptyContent,
		entryDomain.ErrInvalidEntryType,
		goalDomain.ErrEmptyTitle,
		goalDomain.ErrInvalidTarget,
		goalDomain.ErrInvalidPeriod,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
