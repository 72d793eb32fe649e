package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
	entryQueries "github.com/felixgeelhaar/synapse/internal/entries/application/queries"
	taxonomyQueries "github.com/felixgeelhaar/synapse/internal/taxonomy/application/queries"
)

const resourceListLimit = 100

// RegisterResources registers MCP resources that expose synapse data.
func RegisterResources(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}
	t := &tools{app: deps.App}

	srv.Resource("synapse://tasks").
		Name("Tasks").
		Description("Open tasks for the current user").
		MimeType("application/json").
		Handler(t.entriesResource(entryQueries.ViewTasks))

	srv.Resource("synapse://notes").
		Name("Notes").
		Description("Notes for the current user").
		MimeType("application/json").
		Handler(t.entriesResource(entryQueries.ViewNotes))

	srv.Resource("synapse://goals").
		Name("Goals").
		Description("Active goals with progress for the current period").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, _ map[string]string) (*mcp.ResourceContent, error) {
			goals, err := t.listGoals(ctx, goalsListInput{})
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, goals)
		})

	srv.Resource("synapse://categories").
		Name("Categories").
		Description("Categories and their subjects").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, _ map[string]string) (*mcp.ResourceContent, error) {
			if err := t.ready(); err != nil {
				return nil, err
			}
			categories, err := t.listCategories(ctx, struct{}{})
			if err != nil {
				return nil, err
			}
			subjects, err := t.app.Container.ListSubjectsHandler.Handle(ctx, taxonomyQueries.ListSubjectsQuery{
				UserID: t.app.CurrentUserID,
			})
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, map[string]any{
				"categories": categories,
				"subjects":   subjects,
			})
		})

	return nil
}

func (t *tools) entriesResource(view string) func(context.Context, string, map[string]string) (*mcp.ResourceContent, error) {
	return func(ctx context.Context, uri string, _ map[string]string) (*mcp.ResourceContent, error) {
		entries, err := t.listEntries(ctx, entriesListInput{View: view, Limit: resourceListLimit})
		if err != nil {
			return nil, err
		}
		return jsonResource(uri, entries)
	}
}

func jsonResource(uri string, v any) (*mcp.ResourceContent, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return &mcp.ResourceContent{
		URI:      uri,
		MimeType: "application/json",
		Text:     string(data),
	}, nil
}
