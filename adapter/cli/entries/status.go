package entries

import (
	"fmt"

	"github.com/felixgeelhaar/synapse/adapter/cli"
	"github.com/felixgeelhaar/synapse/internal/entries/application/commands"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <entry-id> <status>",
	Short: "Set an entry's status",
	Long: `Set an entry's status to pending, in_progress, done or archived.

Examples:
  synapse entries status 3f2a9c1e in-progress
  synapse entries status 3f2a9c1e done`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		id, err := app.ResolveEntryID(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		result, err := app.Container.ChangeStatusHandler.Handle(cmd.Context(), commands.ChangeStatusCommand{
			UserID:  app.CurrentUserID,
			EntryID: id,
			Status:  args[1],
		})
		if err != nil {
			return fmt.Errorf("failed to change status: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s is now %s\n", cli.StatusIcon(result.Status.String()), cli.ShortID(result.EntryID), result.Status)
		return nil
	},
}

var toggleCmd = &cobra.Command{
	Use:     "toggle <entry-id>",
	Short:   "Tick or untick an entry",
	Aliases: []string{"done"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		id, err := app.ResolveEntryID(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		result, err := app.Container.ChangeStatusHandler.Toggle(cmd.Context(), commands.ToggleStatusCommand{
			UserID:  app.CurrentUserID,
			EntryID: id,
		})
		if err != nil {
			return fmt.Errorf("failed to toggle entry: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s is now %s\n", cli.StatusIcon(result.Status.String()), cli.ShortID(result.EntryID), result.Status)
		return nil
	},
}
