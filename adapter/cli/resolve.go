package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	entryQueries "github.com/felixgeelhaar/synapse/internal/entries/application/queries"
	goalQueries "github.com/felixgeelhaar/synapse/internal/goals/application/queries"
	"github.com/google/uuid"
)

var (
	ErrNoMatch   = errors.New("no match for id")
	ErrAmbiguous = errors.New("id prefix matches more than one item")
)

// ResolveEntryID accepts a full UUID or the short prefix printed by list
// commands.
func (a *App) ResolveEntryID(ctx context.Context, raw string) (uuid.UUID, error) {
	if id, err := uuid.Parse(raw); err == nil {
		return id, nil
	}
	entries, err := a.Container.ListEntriesHandler.Handle(ctx, entryQueries.ListEntriesQuery{UserID: a.CurrentUserID})
	if err != nil {
		return uuid.Nil, err
	}
	ids := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	return matchPrefix(raw, ids)
}

// ResolveGoalID is ResolveEntryID for goals, inactive ones included.
func (a *App) ResolveGoalID(ctx context.Context, raw string) (uuid.UUID, error) {
	if id, err := uuid.Parse(raw); err == nil {
		return id, nil
	}
	goals, err := a.Container.ListGoalsHandler.Handle(ctx, goalQueries.ListGoalsQuery{UserID: a.CurrentUserID, IncludeInactive: true})
	if err != nil {
		return uuid.Nil, err
	}
	ids := make([]uuid.UUID, 0, len(goals))
	for _, g := range goals {
		ids = append(ids, g.ID)
	}
	return matchPrefix(raw, ids)
}

func matchPrefix(prefix string, ids []uuid.UUID) (uuid.UUID, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return uuid.Nil, fmt.Errorf("%w %q", ErrNoMatch, prefix)
	}
	var found []uuid.UUID
	for _, id := range ids {
		if strings.HasPrefix(id.String(), prefix) {
			found = append(found, id)
		}
	}
	switch len(found) {
	case 0:
		return uuid.Nil, fmt.Errorf("%w %q", ErrNoMatch, prefix)
	case 1:
		return found[0], nil
	default:
		return uuid.Nil, fmt.Errorf("%w: %q", ErrAmbiguous, prefix)
	}
}
