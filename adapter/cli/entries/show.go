package entries

import (
	"fmt"

	"github.com/felixgeelhaar/synapse/adapter/cli"
	"github.com/felixgeelhaar/synapse/internal/entries/application/queries"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <entry-id>",
	Short: "Show one entry with its metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		id, err := app.ResolveEntryID(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		entry, err := app.Container.GetEntryHandler.Handle(cmd.Context(), queries.GetEntryQuery{
			UserID:  app.CurrentUserID,
			EntryID: id,
		})
		if err != nil {
			return fmt.Errorf("failed to load entry: %w", err)
		}

		out := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(out, entry)
		}
		cli.PrintEntry(out, *entry, true)
		fmt.Fprintf(out, "   Full ID: %s\n", entry.ID)
		return nil
	},
}
