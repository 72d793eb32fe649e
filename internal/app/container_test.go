package app_test

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/felixgeelhaar/synapse/internal/app"
	"github.com/felixgeelhaar/synapse/internal/app/apptest"
	captureApp "github.com/felixgeelhaar/synapse/internal/capture/application"
	classifierApp "github.com/felixgeelhaar/synapse/internal/classifier/application"
	classifierDomain "github.com/felixgeelhaar/synapse/internal/classifier/domain"
	"github.com/felixgeelhaar/synapse/internal/classifier/infrastructure/remote"
	entryQueries "github.com/felixgeelhaar/synapse/internal/entries/application/queries"
	"github.com/felixgeelhaar/synapse/internal/shared/infrastructure/cache"
	taxonomyCommands "github.com/felixgeelhaar/synapse/internal/taxonomy/application/commands"
	taxonomyQueries "github.com/felixgeelhaar/synapse/internal/taxonomy/application/queries"
	"github.com/felixgeelhaar/synapse/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var workTask = classifierDomain.Classification{
	"category_slug": "work",
	"entry_type":    "task",
	"metadata":      map[string]any{"emoji": "🚀", "summary": "ship it"},
}

func TestNewContainer_LocalMode(t *testing.T) {
	c := apptest.NewContainer(t, apptest.Static(workTask))

	assert.True(t, c.IsLocalMode())
	assert.Equal(t, apptest.UserID, c.DefaultUserID())
	assert.Nil(t, c.Prometheus, "injected metrics replace the registry")
	assert.Nil(t, c.RedisClient)
	assert.NotNil(t, c.InProcessEventBus)
	assert.NotNil(t, c.OutboxProcessor)
	assert.NotNil(t, c.Sweeper)

	categories, err := c.ListCategoriesHandler.Handle(context.Background(), taxonomyQueries.ListCategoriesQuery{UserID: apptest.UserID})
	require.NoError(t, err)
	slugs := make([]string, 0, len(categories))
	for _, cat := range categories {
		slugs = append(slugs, cat.Slug)
	}
	assert.ElementsMatch(t, []string{"home", "work", "uni", "ideas"}, slugs)

	health := c.Health.Check(context.Background())
	assert.Equal(t, observability.HealthStatusHealthy, health.Status)
	assert.Contains(t, health.Checks, "database")
}

func TestNewContainer_SeedIsIdempotent(t *testing.T) {
	c := apptest.NewContainer(t, apptest.Static(workTask))

	result, err := c.SeedDefaultsHandler.Handle(context.Background(), taxonomyCommands.SeedDefaultsCommand{UserID: apptest.UserID})
	require.NoError(t, err)
	assert.Empty(t, result.Created)
}

func TestNewContainer_ReopensExistingDatabase(t *testing.T) {
	cfg := apptest.Config(t)
	cfg.SQLitePath = filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	first, err := app.NewContainer(ctx, cfg, apptest.Logger(), app.WithClassifier(apptest.Static(workTask)))
	require.NoError(t, err)
	_, err = first.CaptureHandler.Handle(ctx, captureApp.CaptureCommand{UserID: apptest.UserID, Text: "ship the release"})
	require.NoError(t, err)
	first.Close()

	second, err := app.NewContainer(ctx, cfg, apptest.Logger(), app.WithClassifier(apptest.Static(workTask)))
	require.NoError(t, err)
	defer second.Close()

	entries, err := second.ListEntriesHandler.Handle(ctx, entryQueries.ListEntriesQuery{UserID: apptest.UserID})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.NotNil(t, second.Prometheus)
}

func TestContainer_OutboxInvalidatesViews(t *testing.T) {
	c := apptest.NewContainer(t, apptest.Static(workTask))
	ctx := context.Background()

	_, err := c.CaptureHandler.Handle(ctx, captureApp.CaptureCommand{UserID: apptest.UserID, Text: "ship the release"})
	require.NoError(t, err)

	// Poison the cached list as if another process had cached it before the write.
	c.Views.Save(ctx, apptest.UserID, cache.ViewEntries, "t=;s=;c=;sub=;n=0", []entryQueries.EntryDTO{})
	pending, _, err := c.OutboxRepo.Counts(ctx)
	require.NoError(t, err)
	require.Positive(t, pending)

	require.NoError(t, c.OutboxProcessor.ProcessOnce(ctx))

	pending, _, err = c.OutboxRepo.Counts(ctx)
	require.NoError(t, err)
	assert.Zero(t, pending)

	entries, err := c.ListEntriesHandler.Handle(ctx, entryQueries.ListEntriesQuery{UserID: apptest.UserID})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "🚀", entries[0].Emoji())

	removed, err := c.CleanupOutbox(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed, "published messages are younger than the retention window")
	c.ReportOutbox(ctx)
}

func TestContainer_SweepOnce(t *testing.T) {
	var calls atomic.Int32
	classifier := &apptest.Classifier{Fn: func(string) (classifierDomain.Classification, error) {
		if calls.Add(1) == 1 {
			return classifierDomain.Classification{"category_slug": "ideas", "entry_type": "note", "metadata": map[string]any{}}, nil
		}
		return classifierDomain.Classification{"category_slug": "ideas", "entry_type": "note", "metadata": map[string]any{"emoji": "📌"}}, nil
	}}
	c := apptest.NewContainer(t, classifier)
	ctx := context.Background()

	captured, err := c.CaptureHandler.Handle(ctx, captureApp.CaptureCommand{UserID: apptest.UserID, Text: "a thought"})
	require.NoError(t, err)
	assert.Empty(t, captured.Entry.Emoji())

	attempted, err := c.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, attempted)

	got, err := c.GetEntryHandler.Handle(ctx, entryQueries.GetEntryQuery{UserID: apptest.UserID, EntryID: captured.Entry.ID})
	require.NoError(t, err)
	assert.Equal(t, "📌", got.Emoji())

	attempted, err = c.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, attempted, "tagged entries are not revisited")
}

func TestNewContainer_ClassifierSelection(t *testing.T) {
	ctx := context.Background()

	t.Run("remote gateway when a URL is set", func(t *testing.T) {
		cfg := apptest.Config(t)
		cfg.GatewayURL = "http://gateway.invalid"
		c, err := app.NewContainer(ctx, cfg, apptest.Logger(), app.WithMetrics(observability.NoopMetrics{}))
		require.NoError(t, err)
		defer c.Close()

		assert.IsType(t, &remote.Client{}, c.Classifier)
	})

	t.Run("gateway without a key reports configuration errors", func(t *testing.T) {
		c, err := app.NewContainer(ctx, apptest.Config(t), apptest.Logger(), app.WithMetrics(observability.NoopMetrics{}))
		require.NoError(t, err)
		defer c.Close()

		require.IsType(t, &classifierApp.Gateway{}, c.Classifier)
		assert.Nil(t, c.ModelBreaker)
		_, err = c.Classifier.Classify(ctx, "anything")
		assert.ErrorIs(t, err, classifierDomain.ErrConfiguration)
	})
}

func TestNewContainer_RequiresConfig(t *testing.T) {
	_, err := app.NewContainer(context.Background(), nil, nil)
	assert.Error(t, err)
}
