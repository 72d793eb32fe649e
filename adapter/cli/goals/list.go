package goals

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/synapse/adapter/cli"
	"github.com/felixgeelhaar/synapse/internal/goals/application/queries"
	"github.com/spf13/cobra"
)

var showAll bool

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List goals with progress bars",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		goals, err := app.Container.ListGoalsHandler.Handle(cmd.Context(), queries.ListGoalsQuery{
			UserID:          app.CurrentUserID,
			IncludeInactive: showAll,
		})
		if err != nil {
			return fmt.Errorf("failed to list goals: %w", err)
		}

		out := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(out, goals)
		}
		if len(goals) == 0 {
			fmt.Fprintln(out, "No goals yet. Try: synapse capture \"run three times a week\"")
			return nil
		}

		for _, g := range goals {
			check := "[ ]"
			if g.Completed {
				check = "[x]"
			}
			emoji := g.Emoji
			if emoji != "" {
				emoji += " "
			}
			fmt.Fprintf(out, "%s %s%s  %s %d/%d", check, emoji, g.Title, progressBar(g.Percent, 10), g.Progress, g.Target)
			if g.Unit != "" {
				fmt.Fprintf(out, " %s", g.Unit)
			}
			fmt.Fprintln(out)
			fmt.Fprintf(out, "   ID: %s  %s", cli.ShortID(g.ID), g.PeriodLabel)
			if !g.Active {
				fmt.Fprint(out, "  (inactive)")
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}

func progressBar(percent, width int) string {
	filled := min(width, max(0, percent*width/100))
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}

func init() {
	listCmd.Flags().BoolVarP(&showAll, "all", "a", false, "include inactive goals")
}
