package entries

import (
	"bytes"
	"context"
	"testing"

	"github.com/felixgeelhaar/synapse/adapter/cli"
	"github.com/felixgeelhaar/synapse/internal/app/apptest"
	captureApp "github.com/felixgeelhaar/synapse/internal/capture/application"
	classifierDomain "github.com/felixgeelhaar/synapse/internal/classifier/domain"
	"github.com/felixgeelhaar/synapse/internal/entries/application/queries"
	entriesDomain "github.com/felixgeelhaar/synapse/internal/entries/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestApp(t *testing.T) *cli.App {
	t.Helper()
	classifier := apptest.Static(classifierDomain.Classification{
		"category_slug": "work",
		"entry_type":    "task",
		"metadata":      map[string]any{},
	})
	app := cli.NewApp(apptest.NewContainer(t, classifier), apptest.UserID)
	cli.SetApp(app)
	t.Cleanup(func() { cli.SetApp(nil) })
	return app
}

func capture(t *testing.T, app *cli.App, text string) queries.EntryDTO {
	t.Helper()
	result, err := app.Container.CaptureHandler.Handle(context.Background(), captureApp.CaptureCommand{
		UserID: app.CurrentUserID,
		Text:   text,
	})
	require.NoError(t, err)
	return *result.Entry
}

func get(t *testing.T, app *cli.App, entry queries.EntryDTO) (*queries.EntryDTO, error) {
	t.Helper()
	return app.Container.GetEntryHandler.Handle(context.Background(), queries.GetEntryQuery{
		UserID:  app.CurrentUserID,
		EntryID: entry.ID,
	})
}

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())
	t.Cleanup(func() {
		cmd.SetOut(nil)
		resetFlags(cmd)
	})
	err := cmd.RunE(cmd, args)
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Value.Type() != "stringSlice" {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	})
	editTags = nil
	types, statuses = nil, nil
}

func TestListCmd(t *testing.T) {
	app := setupTestApp(t)
	first := capture(t, app, "first task")
	capture(t, app, "second task")

	out, err := run(t, listCmd)

	require.NoError(t, err)
	assert.Contains(t, out, "Entries (2):")
	assert.Contains(t, out, "[ ] first task")
	assert.Contains(t, out, cli.ShortID(first.ID))
}

func TestListCmd_Empty(t *testing.T) {
	setupTestApp(t)

	out, err := run(t, listCmd)

	require.NoError(t, err)
	assert.Contains(t, out, "No entries found.")
}

func TestListCmd_Board(t *testing.T) {
	app := setupTestApp(t)
	capture(t, app, "open task")
	board = true

	out, err := run(t, listCmd)
	board = false

	require.NoError(t, err)
	assert.Contains(t, out, "PENDING (1)")
	assert.Contains(t, out, "DONE (0)")
}

func TestListCmd_UnknownView(t *testing.T) {
	setupTestApp(t)
	view = "calendar"

	_, err := run(t, listCmd)
	view = ""

	assert.ErrorIs(t, err, queries.ErrUnknownView)
}

func TestStatusAndToggleCmds(t *testing.T) {
	app := setupTestApp(t)
	entry := capture(t, app, "ship it")
	short := cli.ShortID(entry.ID)

	out, err := run(t, statusCmd, short, "in-progress")
	require.NoError(t, err)
	assert.Contains(t, out, "is now in_progress")

	out, err = run(t, toggleCmd, short)
	require.NoError(t, err)
	assert.Contains(t, out, "[x]")

	out, err = run(t, toggleCmd, short)
	require.NoError(t, err)
	assert.Contains(t, out, "is now pending")

	_, err = run(t, statusCmd, short, "blocked")
	assert.Error(t, err)
}

func TestEditCmd(t *testing.T) {
	app := setupTestApp(t)
	entry := capture(t, app, "read a book")

	require.NoError(t, editCmd.Flags().Set("content", "read two books"))
	require.NoError(t, editCmd.Flags().Set("priority", "urgent"))
	require.NoError(t, editCmd.Flags().Set("tags", "reading,books"))
	require.NoError(t, editCmd.Flags().Set("due", "2026-11-01"))
	out, err := run(t, editCmd, entry.ID.String())
	require.NoError(t, err)
	assert.Contains(t, out, "updated")

	got, err := get(t, app, entry)
	require.NoError(t, err)
	assert.Equal(t, "read two books", got.Content)
	assert.Equal(t, "urgent", got.Priority)
	assert.Equal(t, []string{"reading", "books"}, got.Tags)
	require.NotNil(t, got.DueDate)
	assert.Equal(t, "2026-11-01", got.DueDate.Format("2006-01-02"))
	require.NotNil(t, got.CategoryID)

	resetFlags(editCmd)
	require.NoError(t, editCmd.Flags().Set("due", ""))
	require.NoError(t, editCmd.Flags().Set("category", ""))
	_, err = run(t, editCmd, entry.ID.String())
	require.NoError(t, err)

	got, err = get(t, app, entry)
	require.NoError(t, err)
	assert.Nil(t, got.DueDate)
	assert.Nil(t, got.CategoryID)
	assert.Equal(t, "read two books", got.Content, "unset flags leave fields alone")
}

func TestEditCmd_InvalidDate(t *testing.T) {
	app := setupTestApp(t)
	entry := capture(t, app, "something")

	require.NoError(t, editCmd.Flags().Set("due", "friday"))
	_, err := run(t, editCmd, entry.ID.String())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --due date")
}

func TestShowAndDeleteCmds(t *testing.T) {
	app := setupTestApp(t)
	entry := capture(t, app, "temporary")

	out, err := run(t, showCmd, cli.ShortID(entry.ID))
	require.NoError(t, err)
	assert.Contains(t, out, "temporary")
	assert.Contains(t, out, entry.ID.String())

	out, err = run(t, deleteCmd, cli.ShortID(entry.ID))
	require.NoError(t, err)
	assert.Contains(t, out, "deleted")

	_, err = get(t, app, entry)
	assert.ErrorIs(t, err, entriesDomain.ErrEntryNotFound)

	_, err = run(t, deleteCmd, cli.ShortID(entry.ID))
	assert.ErrorIs(t, err, cli.ErrNoMatch)
}
