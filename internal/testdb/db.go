// Package testdb provides utilities for tests that run against a real
// PostgreSQL database. Tests using it are skipped unless a database URL is
// present in the environment.
package testdb

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/phrazzld/biblioteca-api/internal/platform/postgres"
	"github.com/phrazzld/biblioteca-api/internal/redact"
	"github.com/stretchr/testify/require"
)

// TestTimeout defines a default timeout for test database operations.
const TestTimeout = 10 * time.Second

// urlEnvVars are checked in order by GetTestDatabaseURL.
var urlEnvVars = []string{"DATABASE_URL", "BIBLIOTECA_TEST_DB_URL"}

// libraryTables lists every table written by the snapshot store, children first.
var libraryTables = []string{"member_loans", "loan_records", "members", "books", "library_counters"}

// GetTestDatabaseURL returns the first non-empty database URL from the
// environment, or "" when none is set.
func GetTestDatabaseURL() string {
	for _, name := range urlEnvVars {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// IsIntegrationTestEnvironment reports whether a test database is configured.
func IsIntegrationTestEnvironment() bool {
	return GetTestDatabaseURL() != ""
}

// GetTestDB opens the test database, migrates it to the latest schema and
// empties the library tables. The test is skipped when no database URL is
// configured. The connection is closed when the test ends.
func GetTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dbURL := GetTestDatabaseURL()
	if dbURL == "" {
		t.Skip("Skipping database test: DATABASE_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	db, err := postgres.Open(ctx, dbURL)
	require.NoError(t, err, "Failed to connect to %s", redact.String(dbURL))
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: failed to close test database: %v", err)
		}
	})

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, postgres.Migrate(ctx, db, "up", quiet), "Failed to run migrations")

	ResetTables(t, db)
	return db
}

// ResetTables deletes every row written by the snapshot store.
func ResetTables(t *testing.T, db *sql.DB) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	for _, table := range libraryTables {
		_, err := db.ExecContext(ctx, "DELETE FROM "+table)
		require.NoError(t, err, "Failed to clear table %s", table)
	}
}
