package queries

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/felixgeelhaar/synapse/internal/entries/domain"
	"github.com/felixgeelhaar/synapse/internal/shared/contract"
	"github.com/felixgeelhaar/synapse/internal/shared/infrastructure/cache"
	taxonomyDomain "github.com/felixgeelhaar/synapse/internal/taxonomy/domain"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// ErrUnknownView is returned for a view name outside ViewNames.
var ErrUnknownView = errors.New("unknown entries view")

// View names a preset listing.
const (
	ViewAll    = ""
	ViewTasks  = "tasks"
	ViewKanban = "kanban"
	ViewNotes  = "notes"
)

// ViewNames lists the accepted presets.
var ViewNames = []string{ViewTasks, ViewKanban, ViewNotes}

// ListEntriesQuery lists a user's entries. View presets fill Types and
// Statuses when they are empty.
type ListEntriesQuery struct {
	UserID       uuid.UUID
	View         string
	Types        []string
	Statuses     []string
	CategorySlug string
	SubjectSlug  string
	Limit        int
}

// ListEntriesHandler handles ListEntriesQuery. Results are cached per user
// and query; concurrent identical loads share one database read.
type ListEntriesHandler struct {
	entryRepo    domain.Repository
	categoryRepo taxonomyDomain.CategoryRepository
	subjectRepo  taxonomyDomain.SubjectRepository
	views        *cache.Views
	group        singleflight.Group
	onLoad       func([]EntryDTO)
}

// NewListEntriesHandler creates a new ListEntriesHandler. views may be nil.
func NewListEntriesHandler(
	entryRepo domain.Repository,
	categoryRepo taxonomyDomain.CategoryRepository,
	subjectRepo taxonomyDomain.SubjectRepository,
	views *cache.Views,
) *ListEntriesHandler {
	return &ListEntriesHandler{
		entryRepo:    entryRepo,
		categoryRepo: categoryRepo,
		subjectRepo:  subjectRepo,
		views:        views,
	}
}

// WithLoadHook registers fn to receive every loaded list. fn must not block.
func (h *ListEntriesHandler) WithLoadHook(fn func([]EntryDTO)) *ListEntriesHandler {
	h.onLoad = fn
	return h
}

// Handle executes the query. An unknown category or subject slug yields an
// empty list.
func (h *ListEntriesHandler) Handle(ctx context.Context, query ListEntriesQuery) ([]EntryDTO, error) {
	filter, err := h.baseFilter(query)
	if err != nil {
		return nil, err
	}
	variant := cacheVariant(query, filter)

	var dtos []EntryDTO
	if !h.views.Load(ctx, query.UserID, cache.ViewEntries, variant, &dtos) {
		v, err, _ := h.group.Do(query.UserID.String()+"|"+variant, func() (any, error) {
			fill := h.views.StartFill(query.UserID, cache.ViewEntries, variant)
			loaded, err := h.load(ctx, query, filter)
			if err != nil {
				return nil, err
			}
			h.views.SaveFill(ctx, fill, loaded)
			return loaded, nil
		})
		if err != nil {
			return nil, err
		}
		dtos = v.([]EntryDTO)
	}

	if h.onLoad != nil {
		h.onLoad(dtos)
	}
	return dtos, nil
}

func (h *ListEntriesHandler) baseFilter(query ListEntriesQuery) (domain.Filter, error) {
	filter := domain.Filter{UserID: query.UserID, Limit: query.Limit}

	types, statuses := query.Types, query.Statuses
	switch strings.ToLower(strings.TrimSpace(query.View)) {
	case ViewAll:
	case ViewTasks, ViewKanban:
		if len(types) == 0 {
			types = []string{string(contract.EntryTypeTask)}
		}
		if len(statuses) == 0 {
			statuses = []string{
				string(contract.StatusPending),
				string(contract.StatusInProgress),
				string(contract.StatusDone),
			}
		}
	case ViewNotes:
		if len(types) == 0 {
			types = []string{
				string(contract.EntryTypeNote),
				string(contract.EntryTypeInsight),
				string(contract.EntryTypeBookmark),
			}
		}
	default:
		return filter, fmt.Errorf("%w: %q", ErrUnknownView, query.View)
	}

	for _, raw := range types {
		t := contract.EntryType(strings.ToLower(strings.TrimSpace(raw)))
		if !t.IsValid() {
			return filter, fmt.Errorf("%w: %q", domain.ErrInvalidEntryType, raw)
		}
		filter.Types = append(filter.Types, t)
	}
	for _, raw := range statuses {
		s, err := contract.ParseStatus(raw)
		if err != nil {
			return filter, fmt.Errorf("%w: %q", err, raw)
		}
		filter.Statuses = append(filter.Statuses, s)
	}
	return filter, nil
}

func (h *ListEntriesHandler) load(ctx context.Context, query ListEntriesQuery, filter domain.Filter) ([]EntryDTO, error) {
	if slug := contract.NormalizeSlug(query.CategorySlug); slug != "" {
		category, err := h.categoryRepo.FindBySlug(ctx, query.UserID, slug)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return []EntryDTO{}, nil
		}
		id := category.ID()
		filter.CategoryID = &id
	}
	if slug := contract.NormalizeSlug(query.SubjectSlug); slug != "" {
		subject, err := h.subjectRepo.FindBySlug(ctx, query.UserID, slug)
		if err != nil {
			return nil, err
		}
		if subject == nil {
			return []EntryDTO{}, nil
		}
		id := subject.ID()
		filter.SubjectID = &id
	}

	entries, err := h.entryRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return toEntryDTOs(entries), nil
}

// cacheVariant renders the resolved query as a stable cache key suffix.
func cacheVariant(query ListEntriesQuery, filter domain.Filter) string {
	types := contract.EntryTypeStrings(filter.Types)
	slices.Sort(types)
	statuses := make([]string, len(filter.Statuses))
	for i, s := range filter.Statuses {
		statuses[i] = s.String()
	}
	slices.Sort(statuses)

	return fmt.Sprintf("t=%s;s=%s;c=%s;sub=%s;n=%d",
		strings.Join(types, ","),
		strings.Join(statuses, ","),
		contract.NormalizeSlug(query.CategorySlug),
		contract.NormalizeSlug(query.SubjectSlug),
		filter.Limit,
	)
}

// StatusColumn is one kanban column.
type StatusColumn struct {
	Status  string     `json:"status"`
	Entries []EntryDTO `json:"entries"`
}

// GroupByStatus splits entries into board columns in lifecycle order. Every
// status gets a column, empty or not.
func GroupByStatus(entries []EntryDTO) []StatusColumn {
	columns := make([]StatusColumn, len(contract.Statuses))
	index := make(map[string]int, len(contract.Statuses))
	for i, s := range contract.Statuses {
		columns[i] = StatusColumn{Status: s.String(), Entries: []EntryDTO{}}
		index[s.String()] = i
	}
	for _, e := range entries {
		if i, ok := index[e.Status]; ok {
			columns[i].Entries = append(columns[i].Entries, e)
		}
	}
	return columns
}
