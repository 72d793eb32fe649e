// Package goals holds the "synapse goals" command group.
package goals

import (
	"github.com/spf13/cobra"
)

// Cmd is the goals command group
var Cmd = &cobra.Command{
	Use:     "goals",
	Aliases: []string{"goal", "g"},
	Short:   "Track goal progress",
	Long:    `List goals and bump their progress for the current period.`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(incCmd)
	Cmd.AddCommand(decCmd)
	Cmd.AddCommand(deactivateCmd)
	Cmd.AddCommand(deleteCmd)
}
