// Package domain models captured entries: tasks, notes, insights and
// bookmarks.
package domain

import (
	"errors"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/felixgeelhaar/synapse/internal/shared/contract"
	sharedDomain "github.com/felixgeelhaar/synapse/internal/shared/domain"
	"github.com/google/uuid"
)

var (
	ErrEmptyContent     = errors.New("entry content cannot be empty")
	ErrInvalidEntryType = errors.New("invalid entry type")
	ErrEntryNotFound    = errors.New("entry not found")
	ErrEmptyEmoji       = errors.New("emoji cannot be empty")
)

// Entry is one captured item.
type Entry struct {
	sharedDomain.BaseAggregateRoot
	userID     uuid.UUID
	categoryID *uuid.UUID
	subjectID  *uuid.UUID
	content    string
	entryType  contract.EntryType
	status     contract.Status
	metadata   map[string]any
	tags       []string
	priority   contract.Priority
	startDate  *time.Time
	dueDate    *time.Time
}

// NewEntryParams holds everything needed to create an entry.
type NewEntryParams struct {
	UserID     uuid.UUID
	CategoryID *uuid.UUID
	SubjectID  *uuid.UUID
	Content    string
	Type       contract.EntryType
	Metadata   map[string]any
	Tags       []string
	Priority   contract.Priority
	StartDate  *time.Time
	DueDate    *time.Time
}

// NewEntry creates a pending entry. The type must already be one of the
// stored kinds; callers coerce classifier output first.
func NewEntry(p NewEntryParams) (*Entry, error) {
	content := strings.TrimSpace(p.Content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	if !p.Type.IsValid() {
		return nil, ErrInvalidEntryType
	}
	metadata := p.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	priority := p.Priority
	if !priority.IsValid() {
		priority = contract.PriorityMedium
	}

	e := &Entry{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(time.Now()),
		userID:            p.UserID,
		categoryID:        p.CategoryID,
		subjectID:         p.SubjectID,
		content:           content,
		entryType:         p.Type,
		status:            contract.StatusPending,
		metadata:          metadata,
		tags:              normalizeTags(p.Tags),
		priority:          priority,
		startDate:         p.StartDate,
		dueDate:           p.DueDate,
	}
	e.AddDomainEvent(NewEntryCreated(e))
	return e, nil
}

// RehydrateEntryParams is persisted entry state.
type RehydrateEntryParams struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	CategoryID *uuid.UUID
	SubjectID  *uuid.UUID
	Content    string
	Type       contract.EntryType
	Status     contract.Status
	Metadata   map[string]any
	Tags       []string
	Priority   contract.Priority
	StartDate  *time.Time
	DueDate    *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// RehydrateEntry recreates an entry from storage without recording events.
func RehydrateEntry(p RehydrateEntryParams) *Entry {
	metadata := p.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	return &Entry{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(p.ID, p.CreatedAt, p.UpdatedAt),
		userID:            p.UserID,
		categoryID:        p.CategoryID,
		subjectID:         p.SubjectID,
		content:           p.Content,
		entryType:         p.Type,
		status:            p.Status,
		metadata:          metadata,
		tags:              p.Tags,
		priority:          p.Priority,
		startDate:         p.StartDate,
		dueDate:           p.DueDate,
	}
}

func (e *Entry) UserID() uuid.UUID           { return e.userID }
func (e *Entry) CategoryID() *uuid.UUID      { return e.categoryID }
func (e *Entry) SubjectID() *uuid.UUID       { return e.subjectID }
func (e *Entry) Content() string             { return e.content }
func (e *Entry) Type() contract.EntryType    { return e.entryType }
func (e *Entry) Status() contract.Status     { return e.status }
func (e *Entry) Tags() []string              { return e.tags }
func (e *Entry) Priority() contract.Priority { return e.priority }
func (e *Entry) StartDate() *time.Time       { return e.startDate }
func (e *Entry) DueDate() *time.Time         { return e.dueDate }

// Metadata returns a copy of the metadata bag.
func (e *Entry) Metadata() map[string]any {
	return maps.Clone(e.metadata)
}

// Emoji returns metadata.emoji, or "" when unset.
func (e *Entry) Emoji() string {
	return EmojiOf(e.metadata)
}

// HasEmoji reports whether the entry already carries a visual tag.
func (e *Entry) HasEmoji() bool {
	return e.Emoji() != ""
}

// ChangeStatus moves the entry to status. Setting the current status is a no-op.
func (e *Entry) ChangeStatus(status contract.Status) error {
	if !status.IsValid() {
		return contract.ErrInvalidStatus
	}
	if status == e.status {
		return nil
	}
	from := e.status
	e.status = status
	e.Touch()
	e.AddDomainEvent(NewEntryStatusChanged(e, from))
	return nil
}

// ToggleStatus flips done and pending; any other status becomes done.
func (e *Entry) ToggleStatus() {
	_ = e.ChangeStatus(e.status.Toggle())
}

// Changes lists edits to apply. Nil fields are left alone; Clear* flags
// remove optional values.
type Changes struct {
	Content        *string
	Tags           []string
	SetTags        bool
	Priority       *contract.Priority
	CategoryID     *uuid.UUID
	ClearCategory  bool
	SubjectID      *uuid.UUID
	ClearSubject   bool
	StartDate      *time.Time
	ClearStartDate bool
	DueDate        *time.Time
	ClearDueDate   bool
}

// Update applies changes and records which fields moved.
func (e *Entry) Update(c Changes) error {
	var fields []string

	if c.Content != nil {
		content := strings.TrimSpace(*c.Content)
		if content == "" {
			return ErrEmptyContent
		}
		if content != e.content {
			e.content = content
			fields = append(fields, "content")
		}
	}
	if c.SetTags {
		e.tags = normalizeTags(c.Tags)
		fields = append(fields, "tags")
	}
	if c.Priority != nil && *c.Priority != e.priority {
		e.priority = contract.NormalizePriority(string(*c.Priority))
		fields = append(fields, "priority")
	}
	if c.ClearCategory || c.CategoryID != nil {
		e.categoryID = c.CategoryID
		fields = append(fields, "category")
	}
	if c.ClearSubject || c.SubjectID != nil {
		e.subjectID = c.SubjectID
		fields = append(fields, "subject")
	}
	if c.ClearStartDate || c.StartDate != nil {
		e.startDate = c.StartDate
		fields = append(fields, "start_date")
	}
	if c.ClearDueDate || c.DueDate != nil {
		e.dueDate = c.DueDate
		fields = append(fields, "due_date")
	}

	if len(fields) == 0 {
		return nil
	}
	e.Touch()
	e.AddDomainEvent(NewEntryUpdated(e, fields))
	return nil
}

// SetEmoji adds metadata.emoji, keeping every other metadata key.
func (e *Entry) SetEmoji(emoji string) error {
	emoji = strings.TrimSpace(emoji)
	if emoji == "" {
		return ErrEmptyEmoji
	}
	e.metadata[contract.MetaEmoji] = emoji
	e.Touch()
	e.AddDomainEvent(NewEntryEnriched(e, emoji))
	return nil
}

// MarkDeleted records the deletion event. The repository removes the row.
func (e *Entry) MarkDeleted() {
	e.AddDomainEvent(NewEntryDeleted(e))
}

// EmojiOf reads a non-blank emoji from a metadata bag.
func EmojiOf(metadata map[string]any) string {
	emoji, _ := metadata[contract.MetaEmoji].(string)
	return strings.TrimSpace(emoji)
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" && !slices.Contains(out, tag) {
			out = append(out, tag)
		}
	}
	return out
}
