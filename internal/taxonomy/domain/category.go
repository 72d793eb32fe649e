// Package domain models the user-scoped lookup dimensions entries are filed
// under: categories and the subjects inside them.
package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/felixgeelhaar/synapse/internal/shared/contract"
	sharedDomain "github.com/felixgeelhaar/synapse/internal/shared/domain"
	"github.com/google/uuid"
)

var (
	ErrEmptySlug       = errors.New("slug cannot be empty")
	ErrEmptyName       = errors.New("name cannot be empty")
	ErrCategoryExists  = errors.New("category already exists")
	ErrSubjectExists   = errors.New("subject already exists")
	ErrCategoryMissing = errors.New("category not found")
	ErrSubjectMissing  = errors.New("subject not found")
)

// Category groups entries, e.g. home, work, uni, ideas.
type Category struct {
	sharedDomain.BaseAggregateRoot
	userID uuid.UUID
	slug   string
	name   string
	icon   string
	color  string
}

// NewCategory creates a category. The slug is normalized; the name defaults
// to the slug.
func NewCategory(userID uuid.UUID, slug, name, icon, color string) (*Category, error) {
	slug = contract.NormalizeSlug(slug)
	if slug == "" {
		return nil, ErrEmptySlug
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = slug
	}

	c := &Category{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(time.Now()),
		userID:            userID,
		slug:              slug,
		name:              name,
		icon:              strings.TrimSpace(icon),
		color:             strings.TrimSpace(color),
	}
	c.AddDomainEvent(NewCategoryCreated(c))
	return c, nil
}

// RehydrateCategory recreates a category from storage.
func RehydrateCategory(id, userID uuid.UUID, slug, name, icon, color string, createdAt time.Time) *Category {
	return &Category{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(id, createdAt, createdAt),
		userID:            userID,
		slug:              slug,
		name:              name,
		icon:              icon,
		color:             color,
	}
}

func (c *Category) UserID() uuid.UUID { return c.userID }
func (c *Category) Slug() string      { return c.slug }
func (c *Category) Name() string      { return c.name }
func (c *Category) Icon() string      { return c.icon }
func (c *Category) Color() string     { return c.color }

// Subject is a finer grouping, usually inside a category (a course, a
// client, a project).
type Subject struct {
	sharedDomain.BaseAggregateRoot
	userID     uuid.UUID
	categoryID *uuid.UUID
	slug       string
	name       string
	color      string
}

// NewSubject creates a subject, optionally attached to a category.
func NewSubject(userID uuid.UUID, categoryID *uuid.UUID, slug, name, color string) (*Subject, error) {
	slug = contract.NormalizeSlug(slug)
	if slug == "" {
		return nil, ErrEmptySlug
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	s := &Subject{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(time.Now()),
		userID:            userID,
		categoryID:        categoryID,
		slug:              slug,
		name:              name,
		color:             strings.TrimSpace(color),
	}
	s.AddDomainEvent(NewSubjectCreated(s))
	return s, nil
}

// RehydrateSubject recreates a subject from storage.
func RehydrateSubject(id, userID uuid.UUID, categoryID *uuid.UUID, slug, name, color string, createdAt time.Time) *Subject {
	return &Subject{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(id, createdAt, createdAt),
		userID:            userID,
		categoryID:        categoryID,
		slug:              slug,
		name:              name,
		color:             color,
	}
}

func (s *Subject) UserID() uuid.UUID      { return s.userID }
func (s *Subject) CategoryID() *uuid.UUID { return s.categoryID }
func (s *Subject) Slug() string           { return s.slug }
func (s *Subject) Name() string           { return s.name }
func (s *Subject) Color() string          { return s.color }
