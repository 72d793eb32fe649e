package cli

import (
	"errors"

	"github.com/felixgeelhaar/synapse/internal/app"
	"github.com/google/uuid"
)

// ErrNotInitialized is returned by commands run without a container.
var ErrNotInitialized = errors.New("application not initialized - database connection required")

// App holds the CLI application dependencies.
type App struct {
	Container *app.Container

	// Current user (configured per environment)
	CurrentUserID uuid.UUID
}

// NewApp creates a CLI application acting as userID.
func NewApp(container *app.Container, userID uuid.UUID) *App {
	return &App{Container: container, CurrentUserID: userID}
}

// current is the global CLI application instance
var current *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	current = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return current
}

// RequireApp returns the application or ErrNotInitialized.
func RequireApp() (*App, error) {
	if current == nil || current.Container == nil {
		return nil, ErrNotInitialized
	}
	return current, nil
}
