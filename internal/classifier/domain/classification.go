// Package domain defines what a classification is and how the classifier
// fails.
package domain

import (
	"strings"

	"github.com/felixgeelhaar/synapse/internal/shared/contract"
)

// Classification is the object the model produced, kept exactly as parsed so
// callers can pass it through unchanged. Accessors read the well-known keys
// without validating them against any vocabulary.
type Classification map[string]any

// CategorySlug returns the raw category_slug value.
func (c Classification) CategorySlug() string {
	return stringField(c, "category_slug")
}

// EntryType returns the raw entry_type value.
func (c Classification) EntryType() string {
	return stringField(c, "entry_type")
}

// Metadata returns the metadata bag, never nil.
func (c Classification) Metadata() map[string]any {
	if m, ok := c["metadata"].(map[string]any); ok && m != nil {
		return m
	}
	return map[string]any{}
}

// Emoji returns metadata.emoji when it is a non-blank string.
func (c Classification) Emoji() string {
	emoji, _ := c.Metadata()[contract.MetaEmoji].(string)
	return strings.TrimSpace(emoji)
}

// HasRequiredKeys reports whether both category_slug and entry_type are present.
func (c Classification) HasRequiredKeys() bool {
	_, hasCategory := c["category_slug"]
	_, hasType := c["entry_type"]
	return hasCategory && hasType
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
