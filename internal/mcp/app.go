package mcp

import (
	"github.com/felixgeelhaar/synapse/adapter/cli"
	"github.com/felixgeelhaar/synapse/internal/app"
)

// NewCLIApp creates a CLI application instance acting as the container's
// configured user.
func NewCLIApp(container *app.Container) *cli.App {
	return cli.NewApp(container, container.DefaultUserID())
}
