package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/felixgeelhaar/synapse/internal/entries/application/queries"
	"github.com/google/uuid"
)

// PrintJSON writes v as indented JSON.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ShortID is the prefix shown in listings. Commands accept it back.
func ShortID(id uuid.UUID) string {
	return id.String()[:8]
}

// StatusIcon renders a lifecycle status as a checkbox.
func StatusIcon(status string) string {
	switch status {
	case "done":
		return "[x]"
	case "in_progress":
		return "[>]"
	case "archived":
		return "[-]"
	default:
		return "[ ]"
	}
}

// PriorityBadge renders a priority, empty for medium.
func PriorityBadge(priority string) string {
	switch priority {
	case "urgent":
		return " (!!!)"
	case "high":
		return " (!)"
	case "low":
		return " (.)"
	default:
		return ""
	}
}

// PrintEntry writes one entry as a two or three line block.
func PrintEntry(w io.Writer, e queries.EntryDTO, detailed bool) {
	emoji := e.Emoji()
	if emoji != "" {
		emoji += " "
	}
	fmt.Fprintf(w, "%s %s%s%s\n", StatusIcon(e.Status), emoji, e.Content, PriorityBadge(e.Priority))
	fmt.Fprintf(w, "   ID: %s  type: %s\n", ShortID(e.ID), e.Type)

	if e.DueDate != nil {
		fmt.Fprintf(w, "   Due: %s\n", e.DueDate.Format("2006-01-02"))
	}
	if len(e.Tags) > 0 {
		fmt.Fprintf(w, "   Tags: %s\n", strings.Join(e.Tags, ", "))
	}
	if !detailed {
		return
	}
	if e.StartDate != nil {
		fmt.Fprintf(w, "   Start: %s\n", e.StartDate.Format("2006-01-02"))
	}
	fmt.Fprintf(w, "   Created: %s\n", e.CreatedAt.Format("2006-01-02 15:04"))
	keys := make([]string, 0, len(e.Metadata))
	for key := range e.Metadata {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(w, "   %s: %v\n", key, e.Metadata[key])
	}
}
