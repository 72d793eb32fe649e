package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/synapse/internal/entries/domain"
	"github.com/felixgeelhaar/synapse/internal/entries/infrastructure/persistence"
	"github.com/felixgeelhaar/synapse/internal/shared/contract"
	"github.com/felixgeelhaar/synapse/internal/shared/infrastructure/cache"
	"github.com/felixgeelhaar/synapse/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/synapse/internal/shared/infrastructure/database/databasetest"
	"github.com/felixgeelhaar/synapse/internal/shared/infrastructure/outbox"
	taxonomyDomain "github.com/felixgeelhaar/synapse/internal/taxonomy/domain"
	taxonomyPersistence "github.com/felixgeelhaar/synapse/internal/taxonomy/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	entries    *persistence.EntryRepository
	categories *taxonomyPersistence.CategoryRepository
	subjects   *taxonomyPersistence.SubjectRepository
	outbox     *outbox.SQLRepository
	uow        *database.UnitOfWork
	views      *cache.Views
	userID     uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := databasetest.OpenSQLite(t)
	return &fixture{
		entries:    persistence.NewEntryRepository(conn),
		categories: taxonomyPersistence.NewCategoryRepository(conn),
		subjects:   taxonomyPersistence.NewSubjectRepository(conn),
		outbox:     outbox.NewSQLRepository(conn),
		uow:        database.NewUnitOfWork(conn),
		views:      cache.NewViews(cache.NewMemoryStore(), time.Minute, nil, nil),
		userID:     uuid.New(),
	}
}

func (f *fixture) seedEntry(t *testing.T, metadata map[string]any) *domain.Entry {
	t.Helper()
	e, err := domain.NewEntry(domain.NewEntryParams{
		UserID:   f.userID,
		Content:  "renew passport",
		Type:     contract.EntryTypeTask,
		Metadata: metadata,
	})
	require.NoError(t, err)
	require.NoError(t, f.entries.Save(context.Background(), e))
	return e
}

func (f *fixture) cacheStats(t *testing.T) {
	t.Helper()
	f.views.Save(context.Background(), f.userID, cache.ViewStats, "all", map[string]int{"total": 1})
}

func (f *fixture) statsCached() bool {
	var v map[string]int
	return f.views.Load(context.Background(), f.userID, cache.ViewStats, "all", &v)
}

func (f *fixture) routingKeys(t *testing.T) []string {
	t.Helper()
	msgs, err := f.outbox.GetUnpublished(context.Background(), 100)
	require.NoError(t, err)
	keys := make([]string, len(msgs))
	for i, m := range msgs {
		keys[i] = m.RoutingKey
	}
	return keys
}

func TestChangeStatusHandler(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	entry := f.seedEntry(t, nil)
	f.cacheStats(t)
	handler := NewChangeStatusHandler(f.entries, f.outbox, f.uow, f.views)

	result, err := handler.Handle(ctx, ChangeStatusCommand{UserID: f.userID, EntryID: entry.ID(), Status: "in-progress"})

	require.NoError(t, err)
	assert.Equal(t, contract.StatusInProgress, result.Status)
	stored, _ := f.entries.FindByID(ctx, f.userID, entry.ID())
	assert.Equal(t, contract.StatusInProgress, stored.Status())
	assert.Equal(t, []string{"entries.entry.status_changed"}, f.routingKeys(t))
	assert.False(t, f.statsCached(), "stats view is stale after a write")
}

func TestChangeStatusHandler_Errors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	entry := f.seedEntry(t, nil)
	handler := NewChangeStatusHandler(f.entries, f.outbox, f.uow, f.views)

	_, err := handler.Handle(ctx, ChangeStatusCommand{UserID: f.userID, EntryID: entry.ID(), Status: "someday"})
	assert.ErrorIs(t, err, contract.ErrInvalidStatus)

	_, err = handler.Handle(ctx, ChangeStatusCommand{UserID: uuid.New(), EntryID: entry.ID(), Status: "done"})
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)
}

func TestChangeStatusHandler_SameStatusWritesNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	entry := f.seedEntry(t, nil)
	f.cacheStats(t)
	handler := NewChangeStatusHandler(f.entries, f.outbox, f.uow, f.views)

	_, err := handler.Handle(ctx, ChangeStatusCommand{UserID: f.userID, EntryID: entry.ID(), Status: "pending"})

	require.NoError(t, err)
	assert.Empty(t, f.routingKeys(t))
	assert.True(t, f.statsCached())
}

func TestChangeStatusHandler_Toggle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	entry := f.seedEntry(t, nil)
	handler := NewChangeStatusHandler(f.entries, f.outbox, f.uow, f.views)
	cmd := ToggleStatusCommand{UserID: f.userID, EntryID: entry.ID()}

	result, err := handler.Toggle(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, contract.StatusDone, result.Status)

	result, err = handler.Toggle(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, contract.StatusPending, result.Status)
}

func TestUpdateEntryHandler(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	entry := f.seedEntry(t, nil)
	work, err := taxonomyDomain.NewCategory(f.userID, "work", "Work", "", "")
	require.NoError(t, err)
	require.NoError(t, f.categories.Create(ctx, work))
	handler := NewUpdateEntryHandler(f.entries, f.categories, f.subjects, f.outbox, f.uow, f.views)

	content := "renew passport before June"
	priority := "URGENT"
	category := "work"
	due := time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC)
	err = handler.Handle(ctx, UpdateEntryCommand{
		UserID:       f.userID,
		EntryID:      entry.ID(),
		Content:      &content,
		Priority:     &priority,
		CategorySlug: &category,
		DueDate:      &due,
		Tags:         []string{"travel"},
		SetTags:      true,
	})
	require.NoError(t, err)

	stored, err := f.entries.FindByID(ctx, f.userID, entry.ID())
	require.NoError(t, err)
	assert.Equal(t, content, stored.Content())
	assert.Equal(t, contract.PriorityUrgent, stored.Priority())
	assert.Equal(t, work.ID(), *stored.CategoryID())
	assert.True(t, due.Equal(*stored.DueDate()))
	assert.Equal(t, []string{"travel"}, stored.Tags())

	none := ""
	require.NoError(t, handler.Handle(ctx, UpdateEntryCommand{UserID: f.userID, EntryID: entry.ID(), CategorySlug: &none}))
	stored, _ = f.entries.FindByID(ctx, f.userID, entry.ID())
	assert.Nil(t, stored.CategoryID())
}

func TestUpdateEntryHandler_UnknownReferences(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	entry := f.seedEntry(t, nil)
	handler := NewUpdateEntryHandler(f.entries, f.categories, f.subjects, f.outbox, f.uow, f.views)
	unknown := "space"

	err := handler.Handle(ctx, UpdateEntryCommand{UserID: f.userID, EntryID: entry.ID(), CategorySlug: &unknown})
	assert.ErrorIs(t, err, taxonomyDomain.ErrCategoryMissing)

	err = handler.Handle(ctx, UpdateEntryCommand{UserID: f.userID, EntryID: entry.ID(), SubjectSlug: &unknown})
	assert.ErrorIs(t, err, taxonomyDomain.ErrSubjectMissing)
}

func TestDeleteEntryHandler(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	entry := f.seedEntry(t, nil)
	handler := NewDeleteEntryHandler(f.entries, f.outbox, f.uow, f.views)

	require.NoError(t, handler.Handle(ctx, DeleteEntryCommand{UserID: f.userID, EntryID: entry.ID()}))

	stored, err := f.entries.FindByID(ctx, f.userID, entry.ID())
	require.NoError(t, err)
	assert.Nil(t, stored)
	assert.Equal(t, []string{"entries.entry.deleted"}, f.routingKeys(t))

	err = handler.Handle(ctx, DeleteEntryCommand{UserID: f.userID, EntryID: entry.ID()})
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)
}

func TestEnrichEntryHandler(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	entry := f.seedEntry(t, map[string]any{"summary": "passport", "tags": []any{"travel"}})
	handler := NewEnrichEntryHandler(f.entries, f.outbox, f.uow, f.views)

	require.NoError(t, handler.Handle(ctx, EnrichEntryCommand{UserID: f.userID, EntryID: entry.ID(), Emoji: "🛂"}))

	stored, err := f.entries.FindByID(ctx, f.userID, entry.ID())
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"summary": "passport", "tags": []any{"travel"}, "emoji": "🛂"}, stored.Metadata())
	assert.Equal(t, []string{"entries.entry.enriched"}, f.routingKeys(t))

	err = handler.Handle(ctx, EnrichEntryCommand{UserID: f.userID, EntryID: entry.ID(), Emoji: "🧳"})
	assert.ErrorIs(t, err, ErrAlreadyEnriched)
	stored, _ = f.entries.FindByID(ctx, f.userID, entry.ID())
	assert.Equal(t, "🛂", stored.Emoji())
}

type failingOutbox struct {
	outbox.Repository
}

func (failingOutbox) SaveBatch(context.Context, []*outbox.Message) error {
	return errors.New("outbox unavailable")
}

func TestEntryWriter_RollsBackWhenOutboxFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	entry := f.seedEntry(t, nil)
	handler := NewChangeStatusHandler(f.entries, failingOutbox{}, f.uow, f.views)

	_, err := handler.Handle(ctx, ChangeStatusCommand{UserID: f.userID, EntryID: entry.ID(), Status: "done"})
	require.Error(t, err)

	stored, _ := f.entries.FindByID(ctx, f.userID, entry.ID())
	assert.Equal(t, contract.StatusPending, stored.Status())
}
