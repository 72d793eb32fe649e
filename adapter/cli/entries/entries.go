// Package entries holds the "synapse entries" command group.
package entries

import (
	"github.com/spf13/cobra"
)

// Cmd is the entries command group
var Cmd = &cobra.Command{
	Use:     "entries",
	Aliases: []string{"entry", "e"},
	Short:   "List and manage captured entries",
	Long:    `List, show, edit, re-status and delete captured entries.`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(statusCmd)
	Cmd.AddCommand(toggleCmd)
	Cmd.AddCommand(editCmd)
	Cmd.AddCommand(deleteCmd)
}
