package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Tag recent entries that have no emoji yet",
	Long: `Run one enrichment pass: every user's most recent entries without an
emoji are sent to the classifier and tagged with the emoji it picks.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := RequireApp()
		if err != nil {
			return err
		}

		attempted, err := a.Container.SweepOnce(cmd.Context())
		if err != nil {
			return fmt.Errorf("sweep failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Sweep attempted %d entries\n", attempted)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}
