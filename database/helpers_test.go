package database

import (
	"context"
	"devicelog/config"
	"devicelog/models"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testDB *DB

// setupTestDB connects to dbURL and applies the embedded migrations.
func setupTestDB(dbURL string) (*DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := Connect(ctx, config.DatabaseConfig{URL: dbURL, MaxConns: 4, QueryTimeout: 5 * time.Second}, zap.NewNop())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to test database: %w", err)
	}

	if err := ApplyMigrations(ctx, db.Pool, nil); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// integrationDB skips in -short mode and otherwise returns the shared
// database with every table emptied and sequences reset.
func integrationDB(t *testing.T) *DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	require.NotNil(t, testDB, "test database not initialized")

	_, err := testDB.Pool.Exec(context.Background(), "TRUNCATE TABLE logs, projects RESTART IDENTITY CASCADE")
	require.NoError(t, err)
	return testDB
}

// seedLogsAt inserts entries and then rewrites created_at to the value each
// entry carries, so tests can place rows on specific days.
func seedLogsAt(t *testing.T, db *DB, entries ...models.LogEntry) []models.LogEntry {
	t.Helper()
	ctx := context.Background()

	stored, err := db.InsertLogsBatch(ctx, entries)
	require.NoError(t, err)

	for i := range stored {
		if entries[i].CreatedAt.IsZero() {
			continue
		}
		_, err := db.Pool.Exec(ctx, `UPDATE logs SET created_at = $2 WHERE id = $1`, stored[i].ID, entries[i].CreatedAt)
		require.NoError(t, err)
		stored[i].CreatedAt = entries[i].CreatedAt
	}
	return stored
}
