package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/felixgeelhaar/synapse/internal/entries/application/queries"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show entry counts by status and type",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := RequireApp()
		if err != nil {
			return err
		}

		stats, err := a.Container.EntryStatsHandler.Handle(cmd.Context(), queries.EntryStatsQuery{UserID: a.CurrentUserID})
		if err != nil {
			return fmt.Errorf("failed to load stats: %w", err)
		}

		out := cmd.OutOrStdout()
		if JSONOutput() {
			return PrintJSON(out, stats)
		}

		fmt.Fprintf(out, "Entries: %d (%.0f%% done)\n", stats.Total, stats.DoneRatio*100)
		fmt.Fprintln(out, "By status:")
		printCounts(out, stats.ByStatus)
		fmt.Fprintln(out, "By type:")
		printCounts(out, stats.ByType)
		return nil
	},
}

func printCounts(out io.Writer, counts map[string]int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(out, "  %-12s %d\n", k, counts[k])
	}
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
