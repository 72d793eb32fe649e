package commands

import (
	"context"
	_ "embed"
	"fmt"

	sharedApplication "github.com/felixgeelhaar/synapse/internal/shared/application"
	sharedDomain "github.com/felixgeelhaar/synapse/internal/shared/domain"
	"github.com/felixgeelhaar/synapse/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/synapse/internal/taxonomy/domain"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// CategorySeed is one category from the defaults file.
type CategorySeed struct {
	Slug  string `yaml:"slug"`
	Name  string `yaml:"name"`
	Icon  string `yaml:"icon"`
	Color string `yaml:"color"`
}

type seedFile struct {
	Categories []CategorySeed `yaml:"categories"`
}

// DefaultCategories returns the built-in categories.
func DefaultCategories() ([]CategorySeed, error) {
	var f seedFile
	if err := yaml.Unmarshal(defaultsYAML, &f); err != nil {
		return nil, fmt.Errorf("parse default categories: %w", err)
	}
	return f.Categories, nil
}

// SeedDefaultsCommand creates the built-in categories a user is missing.
type SeedDefaultsCommand struct {
	UserID uuid.UUID
}

// SeedDefaultsResult lists the slugs that were created.
type SeedDefaultsResult struct {
	Created []string
}

// SeedDefaultsHandler handles SeedDefaultsCommand. Running it twice is a no-op.
type SeedDefaultsHandler struct {
	categoryRepo domain.CategoryRepository
	outboxRepo   outbox.Repository
	uow          sharedApplication.UnitOfWork
	seeds        []CategorySeed
}

// NewSeedDefaultsHandler creates a handler seeding DefaultCategories.
func NewSeedDefaultsHandler(categoryRepo domain.CategoryRepository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) (*SeedDefaultsHandler, error) {
	seeds, err := DefaultCategories()
	if err != nil {
		return nil, err
	}
	return &SeedDefaultsHandler{categoryRepo: categoryRepo, outboxRepo: outboxRepo, uow: uow, seeds: seeds}, nil
}

// Handle executes the command.
func (h *SeedDefaultsHandler) Handle(ctx context.Context, cmd SeedDefaultsCommand) (*SeedDefaultsResult, error) {
	result := &SeedDefaultsResult{}

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		var events []sharedDomain.DomainEvent
		for _, seed := range h.seeds {
			existing, err := h.categoryRepo.FindBySlug(txCtx, cmd.UserID, seed.Slug)
			if err != nil {
				return err
			}
			if existing != nil {
				continue
			}

			category, err := domain.NewCategory(cmd.UserID, seed.Slug, seed.Name, seed.Icon, seed.Color)
			if err != nil {
				return err
			}
			if err := h.categoryRepo.Create(txCtx, category); err != nil {
				return err
			}
			events = append(events, category.DomainEvents()...)
			result.Created = append(result.Created, category.Slug())
		}

		sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(txCtx, cmd.UserID))
		return outbox.Record(txCtx, h.outboxRepo, events)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
