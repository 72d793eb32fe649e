// Package databasetest opens migrated throwaway databases for tests.
package databasetest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/synapse/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/synapse/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/synapse/internal/shared/infrastructure/migrations"
	"github.com/stretchr/testify/require"
)

// OpenSQLite returns a migrated SQLite connection in t's temp dir, closed on
// cleanup.
func OpenSQLite(t testing.TB) database.Connection {
	t.Helper()
	ctx := context.Background()

	conn, err := database.NewConnection(ctx, database.Config{
		Driver:     database.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "synapse.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, migrations.Run(ctx, conn))
	return conn
}
