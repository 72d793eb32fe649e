package goals

import (
	"fmt"
	"strconv"

	"github.com/felixgeelhaar/synapse/adapter/cli"
	"github.com/felixgeelhaar/synapse/internal/goals/application/commands"
	"github.com/spf13/cobra"
)

var incCmd = &cobra.Command{
	Use:   "inc <goal-id> [amount]",
	Short: "Add progress to a goal",
	Long: `Add progress to a goal for the current period. A goal whose period
has ended starts the new period from zero first.

Examples:
  synapse goals inc 7c1d0e2a
  synapse goals inc 7c1d0e2a 3`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return adjust(cmd, args, 1)
	},
}

var decCmd = &cobra.Command{
	Use:   "dec <goal-id> [amount]",
	Short: "Remove progress from a goal",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return adjust(cmd, args, -1)
	},
}

func adjust(cmd *cobra.Command, args []string, sign int) error {
	app, err := cli.RequireApp()
	if err != nil {
		return err
	}
	id, err := app.ResolveGoalID(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	amount := 1
	if len(args) == 2 {
		amount, err = strconv.Atoi(args[1])
		if err != nil || amount <= 0 {
			return fmt.Errorf("amount must be a positive number, got %q", args[1])
		}
	}

	result, err := app.Container.AdjustGoalProgressHandler.Handle(cmd.Context(), commands.AdjustGoalProgressCommand{
		UserID: app.CurrentUserID,
		GoalID: id,
		Delta:  sign * amount,
	})
	if err != nil {
		return fmt.Errorf("failed to update goal: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %d/%d (%s)\n", cli.ShortID(result.GoalID), result.Progress, result.Target, result.PeriodLabel)
	if result.Completed {
		fmt.Fprintln(out, "Goal reached!")
	}
	return nil
}
