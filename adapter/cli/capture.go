package cli

import (
	"fmt"
	"strings"

	captureApp "github.com/felixgeelhaar/synapse/internal/capture/application"
	captureDomain "github.com/felixgeelhaar/synapse/internal/capture/domain"
	"github.com/spf13/cobra"
)

var captureCmd = &cobra.Command{
	Use:   "capture <text>",
	Short: "Capture a thought and let the classifier file it",
	Long: `Capture free text. The classifier decides the entry type and category;
goal-like text ("run three times a week") becomes a tracked goal.

Examples:
  synapse capture "finish the quarterly report by friday"
  synapse capture "read 4 books this month"
  synapse capture https://go.dev/blog/loopvar-preview`,
	Aliases: []string{"add", "c"},
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := RequireApp()
		if err != nil {
			return err
		}

		result, err := a.Container.CaptureHandler.Handle(cmd.Context(), captureApp.CaptureCommand{
			UserID: a.CurrentUserID,
			Text:   strings.Join(args, " "),
		})
		if err != nil {
			return fmt.Errorf("failed to capture: %w", err)
		}

		out := cmd.OutOrStdout()
		if JSONOutput() {
			return PrintJSON(out, result)
		}

		if result.Kind == captureDomain.KindGoal && result.Goal != nil {
			fmt.Fprintf(out, "Goal created: %s (0/%d", result.Goal.Title, result.Goal.Target)
			if result.Goal.Unit != "" {
				fmt.Fprintf(out, " %s", result.Goal.Unit)
			}
			fmt.Fprintf(out, ", %s)\n", result.PeriodLabel)
			fmt.Fprintf(out, "  ID: %s\n", ShortID(result.Goal.ID))
			return nil
		}

		fmt.Fprintf(out, "Captured %s", result.Entry.Type)
		if result.CategoryName != "" {
			fmt.Fprintf(out, " in %s", result.CategoryName)
		}
		fmt.Fprintln(out)
		PrintEntry(out, *result.Entry, false)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(captureCmd)
}
