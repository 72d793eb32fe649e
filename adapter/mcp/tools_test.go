package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/mcp-go/testutil"
	"github.com/felixgeelhaar/synapse/adapter/cli"
	"github.com/felixgeelhaar/synapse/internal/app/apptest"
	captureDomain "github.com/felixgeelhaar/synapse/internal/capture/domain"
	classifierDomain "github.com/felixgeelhaar/synapse/internal/classifier/domain"
	entriesDomain "github.com/felixgeelhaar/synapse/internal/entries/domain"
	goalCommands "github.com/felixgeelhaar/synapse/internal/goals/application/commands"
	goalsDomain "github.com/felixgeelhaar/synapse/internal/goals/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var taskClassification = classifierDomain.Classification{
	"category_slug": "work",
	"entry_type":    "task",
	"metadata":      map[string]any{"priority": "high"},
}

func newTools(t *testing.T, classifier classifierDomain.Classifier) *tools {
	t.Helper()
	return &tools{app: cli.NewApp(apptest.NewContainer(t, classifier), apptest.UserID)}
}

func TestRegisterTools_ListTools(t *testing.T) {
	srv := mcp.NewServer(mcp.ServerInfo{
		Name:    "test",
		Version: "1.0.0",
		Capabilities: mcp.Capabilities{
			Tools: true,
		},
	})

	require.NoError(t, RegisterTools(srv, ToolDependencies{App: &cli.App{}}))

	tc := testutil.NewTestClient(t, srv)
	defer tc.Close()

	listed, err := tc.ListTools()
	require.NoError(t, err)

	names := make([]any, 0, len(listed))
	for _, tool := range listed {
		names = append(names, tool["name"])
	}
	for _, want := range []string{
		"classify", "capture", "entries.list", "entries.status", "entries.delete",
		"goals.list", "goals.progress", "categories.list", "stats",
	} {
		assert.Contains(t, names, want)
	}
}

func TestRegisterTools_RequiresApp(t *testing.T) {
	srv := mcp.NewServer(mcp.ServerInfo{Name: "test", Version: "1.0.0"})
	assert.Error(t, RegisterTools(srv, ToolDependencies{}))
	assert.Error(t, RegisterTools(nil, ToolDependencies{App: &cli.App{}}))
}

func TestTools_NotInitialized(t *testing.T) {
	ts := &tools{app: &cli.App{}}

	_, err := ts.capture(context.Background(), captureInput{Text: "x"})
	assert.ErrorIs(t, err, cli.ErrNotInitialized)

	_, err = ts.stats(context.Background(), struct{}{})
	assert.ErrorIs(t, err, cli.ErrNotInitialized)
}

func TestTools_Classify(t *testing.T) {
	classifier := apptest.Static(taskClassification)
	ts := newTools(t, classifier)

	result, err := ts.classify(context.Background(), classifyInput{Content: "ship it"})

	require.NoError(t, err)
	assert.Equal(t, "task", result.EntryType())
	assert.Equal(t, []string{"ship it"}, classifier.Calls())

	entries, err := ts.listEntries(context.Background(), entriesListInput{})
	require.NoError(t, err)
	assert.Empty(t, entries, "classify does not persist")
}

func TestTools_ClassifyHidesUpstreamBody(t *testing.T) {
	ts := newTools(t, apptest.Failing(&classifierDomain.UpstreamError{Status: 429, Body: "quota exceeded for project 1234"}))

	_, err := ts.classify(context.Background(), classifyInput{Content: "x"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), string(classifierDomain.KindUpstream))
	assert.NotContains(t, err.Error(), "1234")
}

func TestTools_EntryLifecycle(t *testing.T) {
	ctx := context.Background()
	ts := newTools(t, apptest.Static(taskClassification))

	captured, err := ts.capture(ctx, captureInput{Text: "write the report"})
	require.NoError(t, err)
	require.NotNil(t, captured.Entry)
	id := captured.Entry.ID.String()

	tasks, err := ts.listEntries(ctx, entriesListInput{View: "tasks"})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "write the report", tasks[0].Content)

	status, err := ts.changeStatus(ctx, entryStatusInput{EntryID: id[:8], Status: "in-progress"})
	require.NoError(t, err)
	assert.Equal(t, "in_progress", status.Status)

	status, err = ts.changeStatus(ctx, entryStatusInput{EntryID: id, Status: "toggle"})
	require.NoError(t, err)
	assert.Equal(t, "done", status.Status)

	stats, err := ts.stats(ctx, struct{}{})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.ByStatus["done"])

	_, err = ts.deleteEntry(ctx, entryIDInput{EntryID: id})
	require.NoError(t, err)

	_, err = ts.changeStatus(ctx, entryStatusInput{EntryID: id, Status: "done"})
	assert.ErrorIs(t, err, entriesDomain.ErrEntryNotFound)
}

func TestTools_InvalidStatus(t *testing.T) {
	ctx := context.Background()
	ts := newTools(t, apptest.Static(taskClassification))

	captured, err := ts.capture(ctx, captureInput{Text: "call mum"})
	require.NoError(t, err)

	_, err = ts.changeStatus(ctx, entryStatusInput{EntryID: captured.Entry.ID.String(), Status: "finished"})
	assert.Error(t, err)
}

func TestTools_GoalProgress(t *testing.T) {
	ctx := context.Background()
	ts := newTools(t, apptest.Static(classifierDomain.Classification{
		"category_slug": "home",
		"entry_type":    "goal",
		"metadata":      map[string]any{"title": "Read", "target": 2.0, "unit": "books"},
	}))

	captured, err := ts.capture(ctx, captureInput{Text: "read two books a month"})
	require.NoError(t, err)
	require.Equal(t, captureDomain.KindGoal, captured.Kind)
	goalID := captured.Goal.ID.String()

	goals, err := ts.listGoals(ctx, goalsListInput{})
	require.NoError(t, err)
	require.Len(t, goals, 1)

	progress, err := ts.adjustGoal(ctx, goalProgressInput{GoalID: goalID, Delta: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, progress.Progress)
	assert.True(t, progress.Completed)

	_, err = ts.adjustGoal(ctx, goalProgressInput{GoalID: "zzzz", Delta: 1})
	assert.ErrorIs(t, err, cli.ErrNoMatch)

	require.NoError(t, ts.app.Container.DeactivateGoalHandler.Handle(ctx, goalCommands.DeactivateGoalCommand{
		UserID: apptest.UserID,
		GoalID: captured.Goal.ID,
	}))
	_, err = ts.adjustGoal(ctx, goalProgressInput{GoalID: goalID, Delta: 1})
	assert.ErrorIs(t, err, goalsDomain.ErrGoalInactive)
}

func TestTools_CategoriesList(t *testing.T) {
	ts := newTools(t, apptest.Static(taskClassification))

	categories, err := ts.listCategories(context.Background(), struct{}{})

	require.NoError(t, err)
	slugs := make([]string, 0, len(categories))
	for _, c := range categories {
		slugs = append(slugs, c.Slug)
	}
	assert.Subset(t, slugs, []string{"home", "work", "uni", "ideas"})
}

func TestResources_Tasks(t *testing.T) {
	ctx := context.Background()
	ts := newTools(t, apptest.Static(taskClassification))
	_, err := ts.capture(ctx, captureInput{Text: "book flights"})
	require.NoError(t, err)

	content, err := ts.entriesResource("tasks")(ctx, "synapse://tasks", nil)

	require.NoError(t, err)
	assert.Equal(t, "application/json", content.MimeType)
	var entries []map[string]any
	require.NoError(t, json.Unmarshal([]byte(content.Text), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "book flights", entries[0]["content"])
}
