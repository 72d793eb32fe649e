package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Build metadata, set with -ldflags "-X".
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

type versionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		info := versionInfo{Version: Version, Commit: Commit, BuildDate: BuildDate, GoVersion: runtime.Version()}
		out := cmd.OutOrStdout()
		if JSONOutput() {
			_ = PrintJSON(out, info)
			return
		}
		fmt.Fprintf(out, "synapse %s (%s, built %s, %s)\n", info.Version, info.Commit, info.BuildDate, info.GoVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
