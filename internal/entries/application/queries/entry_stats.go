package queries

import (
	"context"

	"github.com/felixgeelhaar/synapse/internal/entries/domain"
	"github.com/felixgeelhaar/synapse/internal/shared/contract"
	"github.com/felixgeelhaar/synapse/internal/shared/infrastructure/cache"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

const statsVariant = "summary"

// EntryStatsDTO summarizes a user's entries.
type EntryStatsDTO struct {
	Total     int            `json:"total"`
	ByStatus  map[string]int `json:"by_status"`
	ByType    map[string]int `json:"by_type"`
	DoneRatio float64        `json:"done_ratio"`
}

// EntryStatsQuery requests the summary for one user.
type EntryStatsQuery struct {
	UserID uuid.UUID
}

// EntryStatsHandler handles EntryStatsQuery.
type EntryStatsHandler struct {
	entryRepo domain.Repository
	views     *cache.Views
	group     singleflight.Group
}

// NewEntryStatsHandler creates a new EntryStatsHandler. views may be nil.
func NewEntryStatsHandler(entryRepo domain.Repository, views *cache.Views) *EntryStatsHandler {
	return &EntryStatsHandler{entryRepo: entryRepo, views: views}
}

// Handle executes the query. Archived entries count toward the total but
// not toward the done ratio.
func (h *EntryStatsHandler) Handle(ctx context.Context, query EntryStatsQuery) (*EntryStatsDTO, error) {
	var stats EntryStatsDTO
	if h.views.Load(ctx, query.UserID, cache.ViewStats, statsVariant, &stats) {
		return &stats, nil
	}

	v, err, _ := h.group.Do(query.UserID.String(), func() (any, error) {
		fill := h.views.StartFill(query.UserID, cache.ViewStats, statsVariant)
		counts, err := h.entryRepo.Counts(ctx, query.UserID)
		if err != nil {
			return nil, err
		}
		computed := summarize(counts)
		h.views.SaveFill(ctx, fill, computed)
		return computed, nil
	})
	if err != nil {
		return nil, err
	}
	stats = v.(EntryStatsDTO)
	return &stats, nil
}

func summarize(counts []domain.Count) EntryStatsDTO {
	stats := EntryStatsDTO{
		ByStatus: make(map[string]int, len(contract.Statuses)),
		ByType:   make(map[string]int, len(contract.StoredEntryTypes)),
	}
	for _, s := range contract.Statuses {
		stats.ByStatus[s.String()] = 0
	}
	for _, t := range contract.StoredEntryTypes {
		stats.ByType[t.String()] = 0
	}

	for _, c := range counts {
		stats.Total += c.Total
		stats.ByStatus[c.Status.String()] += c.Total
		stats.ByType[c.Type.String()] += c.Total
	}

	active := stats.Total - stats.ByStatus[contract.StatusArchived.String()]
	if active > 0 {
		stats.DoneRatio = float64(stats.ByStatus[contract.StatusDone.String()]) / float64(active)
	}
	return stats
}
