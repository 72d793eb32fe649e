package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/mcp-go"
)

// RegisterPrompts registers MCP prompts for common synapse workflows.
func RegisterPrompts(srv *mcp.Server, _ ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}

	srv.Prompt("brain_dump").
		Description("Capture a batch of loose thoughts, one entry per thought.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			text := `I am going to paste a list of loose thoughts. For each one:

1. Call the capture tool with the thought as text
2. Report the entry type and category it was filed under

When a thought reads like a recurring target ("run 3 times a week"), let capture turn it into a goal.
Finish with a short summary grouped by category.`
			if notes := strings.TrimSpace(args["thoughts"]); notes != "" {
				text += "\n\nThoughts:\n" + notes
			}
			return userPrompt("Brain dump", text), nil
		})

	srv.Prompt("weekly_review").
		Description("Review open tasks and goal progress, and decide what to close or archive.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			return userPrompt("Weekly review", `Help me review my week. Please:

1. Read synapse://tasks and synapse://goals
2. Call the stats tool for the done ratio

Then:
- List tasks that look finished and offer to mark them done with entries.status
- List stale tasks I should archive
- Point out goals that are behind for this period

Keep the recommendations short and actionable.`), nil
		})

	return nil
}

func userPrompt(description, text string) *mcp.PromptResult {
	return &mcp.PromptResult{
		Description: description,
		Messages: []mcp.PromptMessage{
			{
				Role: string(mcp.RoleUser),
				Content: mcp.TextContent{
					Type: "text",
					Text: text,
				},
			},
		},
	}
}
