//go:build integration_pg

package app_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/felixgeelhaar/synapse/internal/app"
	"github.com/felixgeelhaar/synapse/internal/app/apptest"
	captureApp "github.com/felixgeelhaar/synapse/internal/capture/application"
	entryCommands "github.com/felixgeelhaar/synapse/internal/entries/application/commands"
	entryQueries "github.com/felixgeelhaar/synapse/internal/entries/application/queries"
	"github.com/felixgeelhaar/synapse/internal/shared/infrastructure/database"
	taxonomyCommands "github.com/felixgeelhaar/synapse/internal/taxonomy/application/commands"
	"github.com/felixgeelhaar/synapse/pkg/observability"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "synapse",
				"POSTGRES_PASSWORD": "synapse",
				"POSTGRES_DB":       "synapse",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)
	return fmt.Sprintf("postgres://synapse:synapse@%s:%s/synapse?sslmode=disable", host, port.Port())
}

func TestContainer_Postgres_Integration(t *testing.T) {
	ctx := context.Background()
	cfg := apptest.Config(t)
	cfg.LocalMode = false
	cfg.DatabaseDriver = "postgres"
	cfg.DatabaseURL = startPostgres(t)
	cfg.DatabaseMaxConns = 4

	c, err := app.NewContainer(ctx, cfg, apptest.Logger(),
		app.WithClassifier(apptest.Static(workTask)),
		app.WithMetrics(observability.NewInMemoryMetrics()),
	)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	require.Equal(t, database.DriverPostgres, c.DBDriver)

	user := uuid.New()
	_, err = c.SeedDefaultsHandler.Handle(ctx, taxonomyCommands.SeedDefaultsCommand{UserID: user})
	require.NoError(t, err)

	result, err := c.CaptureHandler.Handle(ctx, captureApp.CaptureCommand{UserID: user, Text: "deploy the release"})
	require.NoError(t, err)
	require.NotNil(t, result.Entry)
	assert.Equal(t, "Work", result.CategoryName)

	_, err = c.ChangeStatusHandler.Handle(ctx, entryCommands.ChangeStatusCommand{
		UserID:  user,
		EntryID: result.Entry.ID,
		Status:  "done",
	})
	require.NoError(t, err)

	stats, err := c.EntryStatsHandler.Handle(ctx, entryQueries.EntryStatsQuery{UserID: user})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.ByStatus["done"])

	other, err := c.ListEntriesHandler.Handle(ctx, entryQueries.ListEntriesQuery{UserID: uuid.New()})
	require.NoError(t, err)
	assert.Empty(t, other)
}
