package contract

import "strings"

// DefaultCategorySlug is used when a classification carries no category.
const DefaultCategorySlug = "ideas"

// DefaultCategorySlugs is the category vocabulary offered to the classifier
// when a user has not defined their own.
var DefaultCategorySlugs = []string{"home", "work", "uni", "ideas"}

// Priority ranks an entry.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Priorities lists the priority vocabulary in ascending order.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// IsValid reports whether p is a known priority.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	default:
		return false
	}
}

// String returns the raw value.
func (p Priority) String() string { return string(p) }

// NormalizePriority maps a raw value onto the vocabulary, defaulting to medium.
func NormalizePriority(raw string) Priority {
	p := Priority(strings.ToLower(strings.TrimSpace(raw)))
	if p.IsValid() {
		return p
	}
	return PriorityMedium
}

// Metadata keys understood across the pipeline.
const (
	MetaEmoji       = "emoji"
	MetaSummary     = "summary"
	MetaTags        = "tags"
	MetaPriority    = "priority"
	MetaTitle       = "title"
	MetaTarget      = "target"
	MetaUnit        = "unit"
	MetaPeriodType  = "period_type"
	MetaGoalTrigger = "goal_trigger"
	MetaGoalID      = "goal_id"
	MetaDueDate     = "due_date"
	MetaSubject     = "subject"
)

// NormalizeSlug lowercases and trims a lookup slug.
func NormalizeSlug(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
