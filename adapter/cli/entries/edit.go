package entries

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/synapse/adapter/cli"
	"github.com/felixgeelhaar/synapse/internal/entries/application/commands"
	"github.com/spf13/cobra"
)

var (
	editContent   string
	editTags      []string
	editPriority  string
	editCategory  string
	editSubject   string
	editStartDate string
	editDueDate   string
)

var editCmd = &cobra.Command{
	Use:   "edit <entry-id>",
	Short: "Edit an entry",
	Long: `Change an entry's text, tags, priority, category, subject or dates.
Only the flags given are applied. An empty value clears a category,
subject or date.

Examples:
  synapse entries edit 3f2a9c1e --priority urgent --due 2026-11-01
  synapse entries edit 3f2a9c1e --tags reading,books
  synapse entries edit 3f2a9c1e --category ""`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		id, err := app.ResolveEntryID(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		update := commands.UpdateEntryCommand{UserID: app.CurrentUserID, EntryID: id}
		flags := cmd.Flags()
		if flags.Changed("content") {
			update.Content = &editContent
		}
		if flags.Changed("tags") {
			update.Tags, update.SetTags = editTags, true
		}
		if flags.Changed("priority") {
			update.Priority = &editPriority
		}
		if flags.Changed("category") {
			update.CategorySlug = &editCategory
		}
		if flags.Changed("subject") {
			update.SubjectSlug = &editSubject
		}
		if flags.Changed("start") {
			update.StartDate, update.ClearStartDate, err = dateFlag("start", editStartDate)
			if err != nil {
				return err
			}
		}
		if flags.Changed("due") {
			update.DueDate, update.ClearDueDate, err = dateFlag("due", editDueDate)
			if err != nil {
				return err
			}
		}

		if err := app.Container.UpdateEntryHandler.Handle(cmd.Context(), update); err != nil {
			return fmt.Errorf("failed to update entry: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Entry %s updated\n", cli.ShortID(id))
		return nil
	},
}

func dateFlag(name, value string) (*time.Time, bool, error) {
	if value == "" {
		return nil, true, nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return nil, false, fmt.Errorf("invalid --%s date, use YYYY-MM-DD: %w", name, err)
	}
	return &t, false, nil
}

func init() {
	editCmd.Flags().StringVar(&editContent, "content", "", "new text")
	editCmd.Flags().StringSliceVar(&editTags, "tags", nil, "replace tags (comma separated)")
	editCmd.Flags().StringVarP(&editPriority, "priority", "p", "", "priority (low, medium, high, urgent)")
	editCmd.Flags().StringVar(&editCategory, "category", "", "category slug")
	editCmd.Flags().StringVar(&editSubject, "subject", "", "subject slug")
	editCmd.Flags().StringVar(&editStartDate, "start", "", "start date (YYYY-MM-DD)")
	editCmd.Flags().StringVar(&editDueDate, "due", "", "due date (YYYY-MM-DD)")
}
