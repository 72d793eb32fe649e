package queries

import (
	"time"

	"github.com/felixgeelhaar/synapse/internal/entries/domain"
	"github.com/google/uuid"
)

// EntryDTO is an entry as shown to clients.
type EntryDTO struct {
	ID         uuid.UUID      `json:"id"`
	UserID     uuid.UUID      `json:"user_id"`
	CategoryID *uuid.UUID     `json:"category_id,omitempty"`
	SubjectID  *uuid.UUID     `json:"subject_id,omitempty"`
	Content    string         `json:"content"`
	Type       string         `json:"entry_type"`
	Status     string         `json:"status"`
	Metadata   map[string]any `json:"metadata"`
	Tags       []string       `json:"tags"`
	Priority   string         `json:"priority"`
	StartDate  *time.Time     `json:"start_date,omitempty"`
	DueDate    *time.Time     `json:"due_date,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// Emoji returns metadata.emoji, or "" when the entry has not been tagged.
func (d EntryDTO) Emoji() string {
	return domain.EmojiOf(d.Metadata)
}

// ToEntryDTO converts an entry.
func ToEntryDTO(e *domain.Entry) EntryDTO {
	metadata := e.Metadata()
	if metadata == nil {
		metadata = map[string]any{}
	}
	tags := e.Tags()
	if tags == nil {
		tags = []string{}
	}
	return EntryDTO{
		ID:         e.ID(),
		UserID:     e.UserID(),
		CategoryID: e.CategoryID(),
		SubjectID:  e.SubjectID(),
		Content:    e.Content(),
		Type:       e.Type().String(),
		Status:     e.Status().String(),
		Metadata:   metadata,
		Tags:       tags,
		Priority:   e.Priority().String(),
		StartDate:  e.StartDate(),
		DueDate:    e.DueDate(),
		CreatedAt:  e.CreatedAt(),
		UpdatedAt:  e.UpdatedAt(),
	}
}

func toEntryDTOs(entries []*domain.Entry) []EntryDTO {
	dtos := make([]EntryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, ToEntryDTO(e))
	}
	return dtos
}
