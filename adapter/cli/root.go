// Package cli is the synapse command line. Command groups live in
// subpackages and register with AddCommand.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/felixgeelhaar/synapse/pkg/observability"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	jsonOutput bool
	logger     *slog.Logger
)

type invocationKey struct{}

// invocation ties the debug lines of one command run together.
type invocation struct {
	correlationID string
	started       time.Time
}

var rootCmd = &cobra.Command{
	Use:   "synapse",
	Short: "Synapse - capture anything, sort it later",
	Long: `Synapse turns free-form notes into categorized entries and goals.

Type a thought and a language model decides whether it is a task, a note,
an insight, a bookmark or a goal, and files it under one of your categories.`,
	SilenceUsage:      true,
	PersistentPreRun:  beginInvocation,
	PersistentPostRun: endInvocation,
}

// beginInvocation gives every command a correlation ID so the events it
// records can be traced back to it.
func beginInvocation(cmd *cobra.Command, _ []string) {
	inv := invocation{correlationID: uuid.NewString(), started: time.Now()}
	ctx := observability.WithCorrelationID(cmd.Context(), inv.correlationID)
	cmd.SetContext(context.WithValue(ctx, invocationKey{}, inv))
	Logger().DebugContext(ctx, "command start", "command", cmd.CommandPath())
}

func endInvocation(cmd *cobra.Command, _ []string) {
	inv, ok := cmd.Context().Value(invocationKey{}).(invocation)
	if !ok {
		return
	}
	Logger().DebugContext(cmd.Context(), "command end",
		"command", cmd.CommandPath(),
		observability.DurationKey, time.Since(inv.started).Milliseconds(),
	)
}

// Execute runs the command line and exits non-zero on error.
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
}

// AddCommand registers a command group under synapse.
func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}

// SetLogger sets the CLI logger.
func SetLogger(l *slog.Logger) {
	logger = l
}

// Logger returns the CLI logger.
func Logger() *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// Verbose reports the --verbose flag.
func Verbose() bool { return verbose }

// JSONOutput reports the --json flag.
func JSONOutput() bool { return jsonOutput }

// SetJSONOutput overrides the --json flag.
func SetJSONOutput(v bool) { jsonOutput = v }
