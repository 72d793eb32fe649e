// Package mcp exposes synapse capture, entries, goals and taxonomy as MCP
// tools, resources and prompts.
package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/synapse/adapter/cli"
	captureApp "github.com/felixgeelhaar/synapse/internal/capture/application"
	classifierDomain "github.com/felixgeelhaar/synapse/internal/classifier/domain"
	entryCommands "github.com/felixgeelhaar/synapse/internal/entries/application/commands"
	entryQueries "github.com/felixgeelhaar/synapse/internal/entries/application/queries"
	goalCommands "github.com/felixgeelhaar/synapse/internal/goals/application/commands"
	goalQueries "github.com/felixgeelhaar/synapse/internal/goals/application/queries"
	taxonomyQueries "github.com/felixgeelhaar/synapse/internal/taxonomy/application/queries"
)

// ToolDependencies provides handlers and context for MCP tools.
type ToolDependencies struct {
	App *cli.App
}

type classifyInput struct {
	Content string `json:"content" jsonschema:"required"`
}

type captureInput struct {
	Text string `json:"text" jsonschema:"required"`
}

type entriesListInput struct {
	View     string   `json:"view,omitempty"`
	Types    []string `json:"types,omitempty"`
	Statuses []string `json:"statuses,omitempty"`
	Category string   `json:"category,omitempty"`
	Subject  string   `json:"subject,omitempty"`
	Limit    int      `json:"limit,omitempty"`
}

type entryStatusInput struct {
	EntryID string `json:"entry_id" jsonschema:"required"`
	// Status is a lifecycle state, or "toggle".
	Status string `json:"status" jsonschema:"required"`
}

type entryIDInput struct {
	EntryID string `json:"entry_id" jsonschema:"required"`
}

type goalsListInput struct {
	IncludeInactive bool `json:"include_inactive,omitempty"`
}

type goalProgressInput struct {
	GoalID string `json:"goal_id" jsonschema:"required"`
	Delta  int    `json:"delta" jsonschema:"required"`
}

type statusOutput struct {
	EntryID string `json:"entry_id"`
	Status  string `json:"status"`
}

type goalProgressOutput struct {
	GoalID      string `json:"goal_id"`
	Progress    int    `json:"progress"`
	Target      int    `json:"target"`
	Completed   bool   `json:"completed"`
	PeriodLabel string `json:"period_label"`
}

// RegisterTools registers the synapse tool set.
func RegisterTools(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return errors.New("server is required")
	}
	if deps.App == nil {
		return errors.New("app is required")
	}
	t := &tools{app: deps.App}

	srv.Tool("classify").
		Description("Classify free text without saving it. Returns category_slug, entry_type and metadata.").
		Handler(t.classify)

	srv.Tool("capture").
		Description("Classify free text and save it as an entry, or as a goal when it describes one").
		Handler(t.capture)

	srv.Tool("entries.list").
		Description("List entries. view is one of tasks, kanban, notes; filters narrow by type, status, category or subject").
		Handler(t.listEntries)

	srv.Tool("entries.status").
		Description("Set an entry's status (pending, in_progress, done, archived) or pass \"toggle\"").
		Handler(t.changeStatus)

	srv.Tool("entries.delete").
		Description("Delete an entry").
		Handler(t.deleteEntry)

	srv.Tool("goals.list").
		Description("List goals with progress for the current period").
		Handler(t.listGoals)

	srv.Tool("goals.progress").
		Description("Add (positive delta) or remove (negative delta) progress on a goal").
		Handler(t.adjustGoal)

	srv.Tool("categories.list").
		Description("List categories the classifier can file entries under").
		Handler(t.listCategories)

	srv.Tool("stats").
		Description("Entry counts by status and type, and the share of entries done").
		Handler(t.stats)

	return nil
}

type tools struct {
	app *cli.App
}

func (t *tools) ready() error {
	if t.app == nil || t.app.Container == nil {
		return cli.ErrNotInitialized
	}
	return nil
}

// toolError keeps classifier failures to their public message.
func toolError(err error) error {
	if err == nil {
		return nil
	}
	if kind := classifierDomain.KindOf(err); kind != classifierDomain.KindInternal {
		return fmt.Errorf("%s: %s", kind, classifierDomain.PublicMessage(err))
	}
	return err
}

func (t *tools) classify(ctx context.Context, input classifyInput) (classifierDomain.Classification, error) {
	if err := t.ready(); err != nil {
		return nil, err
	}
	result, err := t.app.Container.Classifier.Classify(ctx, input.Content)
	return result, toolError(err)
}

func (t *tools) capture(ctx context.Context, input captureInput) (*captureApp.CaptureResult, error) {
	if err := t.ready(); err != nil {
		return nil, err
	}
	result, err := t.app.Container.CaptureHandler.Handle(ctx, captureApp.CaptureCommand{
		UserID: t.app.CurrentUserID,
		Text:   input.Text,
	})
	return result, toolError(err)
}

func (t *tools) listEntries(ctx context.Context, input entriesListInput) ([]entryQueries.EntryDTO, error) {
	if err := t.ready(); err != nil {
		return nil, err
	}
	return t.app.Container.ListEntriesHandler.Handle(ctx, entryQueries.ListEntriesQuery{
		UserID:       t.app.CurrentUserID,
		View:         input.View,
		Types:        input.Types,
		Statuses:     input.Statuses,
		CategorySlug: input.Category,
		SubjectSlug:  input.Subject,
		Limit:        input.Limit,
	})
}

func (t *tools) changeStatus(ctx context.Context, input entryStatusInput) (*statusOutput, error) {
	if err := t.ready(); err != nil {
		return nil, err
	}
	id, err := t.app.ResolveEntryID(ctx, input.EntryID)
	if err != nil {
		return nil, err
	}

	var result *entryCommands.StatusResult
	if input.Status == "toggle" {
		result, err = t.app.Container.ChangeStatusHandler.Toggle(ctx, entryCommands.ToggleStatusCommand{
			UserID:  t.app.CurrentUserID,
			EntryID: id,
		})
	} else {
		result, err = t.app.Container.ChangeStatusHandler.Handle(ctx, entryCommands.ChangeStatusCommand{
			UserID:  t.app.CurrentUserID,
			EntryID: id,
			Status:  input.Status,
		})
	}
	if err != nil {
		return nil, err
	}
	return &statusOutput{EntryID: result.EntryID.String(), Status: result.Status.String()}, nil
}

func (t *tools) deleteEntry(ctx context.Context, input entryIDInput) (map[string]any, error) {
	if err := t.ready(); err != nil {
		return nil, err
	}
	id, err := t.app.ResolveEntryID(ctx, input.EntryID)
	if err != nil {
		return nil, err
	}
	err = t.app.Container.DeleteEntryHandler.Handle(ctx, entryCommands.DeleteEntryCommand{
		UserID:  t.app.CurrentUserID,
		EntryID: id,
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{"entry_id": id, "deleted": true}, nil
}

func (t *tools) listGoals(ctx context.Context, input goalsListInput) ([]goalQueries.GoalDTO, error) {
	if err := t.ready(); err != nil {
		return nil, err
	}
	return t.app.Container.ListGoalsHandler.Handle(ctx, goalQueries.ListGoalsQuery{
		UserID:          t.app.CurrentUserID,
		IncludeInactive: input.IncludeInactive,
	})
}

func (t *tools) adjustGoal(ctx context.Context, input goalProgressInput) (*goalProgressOutput, error) {
	if err := t.ready(); err != nil {
		return nil, err
	}
	id, err := t.app.ResolveGoalID(ctx, input.GoalID)
	if err != nil {
		return nil, err
	}
	result, err := t.app.Container.AdjustGoalProgressHandler.Handle(ctx, goalCommands.AdjustGoalProgressCommand{
		UserID: t.app.CurrentUserID,
		GoalID: id,
		Delta:  input.Delta,
	})
	if err != nil {
		return nil, err
	}
	return &goalProgressOutput{
		GoalID:      result.GoalID.String(),
		Progress:    result.Progress,
		Target:      result.Target,
		Completed:   result.Completed,
		PeriodLabel: result.PeriodLabel,
	}, nil
}

func (t *tools) listCategories(ctx context.Context, _ struct{}) ([]taxonomyQueries.CategoryDTO, error) {
	if err := t.ready(); err != nil {
		return nil, err
	}
	return t.app.Container.ListCategoriesHandler.Handle(ctx, taxonomyQueries.ListCategoriesQuery{UserID: t.app.CurrentUserID})
}

func (t *tools) stats(ctx context.Context, _ struct{}) (*entryQueries.EntryStatsDTO, error) {
	if err := t.ready(); err != nil {
		return nil, err
	}
	return t.app.Container.EntryStatsHandler.Handle(ctx, entryQueries.EntryStatsQuery{UserID: t.app.CurrentUserID})
}
