package goals

import (
	"fmt"

	"github.com/felixgeelhaar/synapse/adapter/cli"
	"github.com/felixgeelhaar/synapse/internal/goals/application/commands"
	"github.com/spf13/cobra"
)

var deactivateCmd = &cobra.Command{
	Use:     "deactivate <goal-id>",
	Short:   "Stop tracking a goal",
	Aliases: []string{"stop"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		id, err := app.ResolveGoalID(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		err = app.Container.DeactivateGoalHandler.Handle(cmd.Context(), commands.DeactivateGoalCommand{
			UserID: app.CurrentUserID,
			GoalID: id,
		})
		if err != nil {
			return fmt.Errorf("failed to deactivate goal: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Goal %s deactivated\n", cli.ShortID(id))
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete <goal-id>",
	Short:   "Delete a goal",
	Long:    `Delete a goal. The task entry created alongside it is kept.`,
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		id, err := app.ResolveGoalID(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		err = app.Container.DeleteGoalHandler.Handle(cmd.Context(), commands.DeleteGoalCommand{
			UserID: app.CurrentUserID,
			GoalID: id,
		})
		if err != nil {
			return fmt.Errorf("failed to delete goal: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Goal %s deleted\n", cli.ShortID(id))
		return nil
	},
}
