package enrichment

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/synapse/internal/entries/application/queries"
	"github.com/felixgeelhaar/synapse/internal/entries/domain"
)

// SweepAll runs one pass per known user over their most recent entries, as
// the worker does on every tick. Only listing the users can fail; a user whose
// entries cannot be read is skipped.
func (s *Sweeper) SweepAll(ctx context.Context, repo domain.Repository, recent int) (int, error) {
	userIDs, err := repo.UserIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list entry owners: %w", err)
	}

	attempted := 0
	for _, userID := range userIDs {
		if ctx.Err() != nil {
			break
		}
		entries, err := repo.List(ctx, domain.Filter{UserID: userID, Limit: recent})
		if err != nil {
			s.logger.WarnContext(ctx, "list entries for sweep failed", "user_id", userID, "error", err)
			continue
		}
		dtos := make([]queries.EntryDTO, 0, len(entries))
		for _, e := range entries {
			dtos = append(dtos, queries.ToEntryDTO(e))
		}
		attempted += s.Sweep(ctx, dtos)
	}
	return attempted, nil
}
