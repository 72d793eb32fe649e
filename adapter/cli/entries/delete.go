package entries

import (
	"fmt"

	"github.com/felixgeelhaar/synapse/adapter/cli"
	"github.com/felixgeelhaar/synapse/internal/entries/application/commands"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <entry-id>",
	Short:   "Delete an entry",
	Aliases: []string{"rm"},
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

		err = app.Container.DeleteEntryHandler.Handle(cmd.Context(), commands.DeleteEntryCommand{
			UserID:  app.CurrentUserID,
			EntryID: id,
		})
		if err != nil {
			return fmt.Errorf("failed to delete entry: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Entry %s deleted\n", cli.ShortID(id))
		return nil
	},
}
