package domain

import (
	sharedDomain "github.com/felixgeelhaar/synapse/internal/shared/domain"
	"github.com/google/uuid"
)

const (
	categoryAggregate = "Category"
	subjectAggregate  = "Subject"
)

// CategoryCreated is emitted when a category is added.
type CategoryCreated struct {
	sharedDomain.BaseEvent
	CategoryID uuid.UUID `json:"category_id"`
	UserID     uuid.UUID `json:"user_id"`
	Slug       string    `json:"slug"`
	Name       string    `json:"name"`
}

// NewCategoryCreated creates a CategoryCreated event.
func NewCategoryCreated(c *Category) *CategoryCreated {
	return &CategoryCreated{
		BaseEvent:  sharedDomain.NewBaseEvent(c.ID(), categoryAggregate, "taxonomy.category.created"),
		CategoryID: c.ID(),
		UserID:     c.UserID(),
		Slug:       c.Slug(),
		Name:       c.Name(),
	}
}

// SubjectCreated is emitted when a subject is added.
type SubjectCreated struct {
	sharedDomain.BaseEvent
	SubjectID  uuid.UUID  `json:"subject_id"`
	UserID     uuid.UUID  `json:"user_id"`
	CategoryID *uuid.UUID `json:"category_id,omitempty"`
	Slug       string     `json:"slug"`
}

// NewSubjectCreated creates a SubjectCreated event.
func NewSubjectCreated(s *Subject) *SubjectCreated {
	return &SubjectCreated{
		BaseEvent:  sharedDomain.NewBaseEvent(s.ID(), subjectAggregate, "taxonomy.subject.created"),
		SubjectID:  s.ID(),
		UserID:     s.UserID(),
		CategoryID: s.CategoryID(),
		Slug:       s.Slug(),
	}
}
