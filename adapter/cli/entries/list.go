package entries

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/synapse/adapter/cli"
	"github.com/felixgeelhaar/synapse/internal/entries/application/queries"
	"github.com/spf13/cobra"
)

var (
	view     string
	types    []string
	statuses []string
	category string
	subject  string
	limit    int
	board    bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List entries",
	Long: `List entries, newest first.

Views:
  tasks    open and done tasks
  kanban   tasks grouped by status (same as --board)
  notes    notes, insights and bookmarks

Examples:
  synapse entries list
  synapse entries list --view tasks --category work
  synapse entries list --type bookmark --limit 5
  synapse entries list --board`,
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		query := queries.ListEntriesQuery{
			UserID:       app.CurrentUserID,
			View:         view,
			Types:        types,
			Statuses:     statuses,
			CategorySlug: category,
			SubjectSlug:  subject,
			Limit:        limit,
		}
		if board {
			query.View = queries.ViewKanban
		}

		entries, err := app.Container.ListEntriesHandler.Handle(cmd.Context(), query)
		if err != nil {
			return fmt.Errorf("failed to list entries: %w", err)
		}

		out := cmd.OutOrStdout()
		if board || strings.EqualFold(query.View, queries.ViewKanban) {
			columns := queries.GroupByStatus(entries)
			if cli.JSONOutput() {
				return cli.PrintJSON(out, columns)
			}
			for _, col := range columns {
				fmt.Fprintf(out, "%s (%d)\n", strings.ToUpper(col.Status), len(col.Entries))
				fmt.Fprintln(out, strings.Repeat("-", 40))
				for _, e := range col.Entries {
					cli.PrintEntry(out, e, false)
				}
				fmt.Fprintln(out)
			}
			return nil
		}

		if cli.JSONOutput() {
			return cli.PrintJSON(out, entries)
		}
		if len(entries) == 0 {
			fmt.Fprintln(out, "No entries found.")
			return nil
		}
		fmt.Fprintf(out, "Entries (%d):\n", len(entries))
		fmt.Fprintln(out, strings.Repeat("-", 60))
		for _, e := range entries {
			cli.PrintEntry(out, e, cli.Verbose())
			fmt.Fprintln(out)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&view, "view", "", "preset view (tasks, kanban, notes)")
	listCmd.Flags().StringSliceVarP(&types, "type", "t", nil, "filter by entry type (task, note, insight, bookmark)")
	listCmd.Flags().StringSliceVarP(&statuses, "status", "s", nil, "filter by status (pending, in_progress, done, archived)")
	listCmd.Flags().StringVar(&category, "category", "", "filter by category slug")
	listCmd.Flags().StringVar(&subject, "subject", "", "filter by subject slug")
	listCmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of entries")
	listCmd.Flags().BoolVar(&board, "board", false, "group by status")
}
