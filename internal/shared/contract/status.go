package contract

import (
	"errors"
	"strings"
)

// ErrInvalidStatus is returned when a status is outside the lifecycle set.
var ErrInvalidStatus = errors.New("invalid entry status")

// Status is the lifecycle state of an entry.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
	StatusArchived   Status = "archived"
)

// Statuses lists the lifecycle states in board order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusDone, StatusArchived}

// IsValid reports whether s is a known lifecycle state.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusDone, StatusArchived:
		return true
	default:
		return false
	}
}

// String returns the raw value.
func (s Status) String() string { return string(s) }

// ParseStatus validates a raw status value. Hyphens and spaces are accepted
// as separators ("in-progress", "in progress").
func ParseStatus(raw string) (Status, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)
	s := Status(normalized)
	if !s.IsValid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// Toggle returns the status a checkbox toggle moves to: done goes back to
// pending, anything else becomes done.
func (s Status) Toggle() Status {
	if s == StatusDone {
		return StatusPending
	}
	return StatusDone
}
