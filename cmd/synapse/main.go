package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/synapse/adapter/cli"
	"github.com/felixgeelhaar/synapse/adapter/cli/entries"
	"github.com/felixgeelhaar/synapse/adapter/cli/goals"
	"github.com/felixgeelhaar/synapse/adapter/cli/mcp"
	"github.com/felixgeelhaar/synapse/adapter/cli/taxonomy"
	"github.com/felixgeelhaar/synapse/internal/app"
	"github.com/felixgeelhaar/synapse/pkg/config"
	"github.com/felixgeelhaar/synapse/pkg/observability"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := observability.NewLogger(observability.DefaultLogConfig())

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger = observability.NewLogger(cfg.LogConfig("synapse", cli.Version))
	cli.SetLogger(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Commands that need no database (version, help) still work when the
	// container cannot start; the rest fail with ErrNotInitialized.
	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Warn("failed to initialize container", "error", err)
	} else {
		defer container.Close()
		cli.SetApp(cli.NewApp(container, container.DefaultUserID()))
	}

	cli.AddCommand(entries.Cmd)
	cli.AddCommand(goals.Cmd)
	cli.AddCommand(taxonomy.CategoriesCmd)
	cli.AddCommand(taxonomy.SubjectsCmd)
	cli.AddCommand(mcp.Cmd)

	cli.Execute(ctx)
}
