// Package contract holds the closed vocabularies shared by the classifier,
// the capture orchestrator, the domain aggregates and the storage schema.
package contract

import "strings"

// EntryType is the kind of a captured entry.
type EntryType string

const (
	EntryTypeTask     EntryType = "task"
	EntryTypeNote     EntryType = "note"
	EntryTypeInsight  EntryType = "insight"
	EntryTypeBookmark EntryType = "bookmark"

	// EntryTypeGoal is produced by the classifier but is never stored on an entry.
	// It routes a capture to the goal path.
	EntryTypeGoal EntryType = "goal"
)

// DefaultEntryType is used when a classification carries a kind outside the stored set.
const DefaultEntryType = EntryTypeNote

// StoredEntryTypes lists the kinds the entries table accepts.
var StoredEntryTypes = []EntryType{
	EntryTypeTask,
	EntryTypeNote,
	EntryTypeInsight,
	EntryTypeBookmark,
}

// ClassifierEntryTypes lists the kinds the classifier is allowed to emit.
var ClassifierEntryTypes = append(append([]EntryType{}, StoredEntryTypes...), EntryTypeGoal)

// IsValid reports whether t can be stored on an entry.
func (t EntryType) IsValid() bool {
	switch t {
	case EntryTypeTask, EntryTypeNote, EntryTypeInsight, EntryTypeBookmark:
		return true
	default:
		return false
	}
}

// String returns the raw value.
func (t EntryType) String() string { return string(t) }

// NormalizeEntryType maps a raw classifier value onto the stored set.
// Unknown values, including "goal", fall back to DefaultEntryType.
func NormalizeEntryType(raw string) EntryType {
	t := EntryType(strings.ToLower(strings.TrimSpace(raw)))
	if t.IsValid() {
		return t
	}
	return DefaultEntryType
}

// IsGoal reports whether a raw classifier value selects the goal path.
func IsGoal(raw string) bool {
	return EntryType(strings.ToLower(strings.TrimSpace(raw))) == EntryTypeGoal
}

// EntryTypeStrings returns the values of types as strings.
func EntryTypeStrings(types []EntryType) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}
