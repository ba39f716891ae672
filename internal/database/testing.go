package database

import (
	"context"
	"os"
	"testing"
	"time"
)

// TestDatabaseURLEnv names the variable holding the integration test database URL
const TestDatabaseURLEnv = "TEST_DATABASE_URL"

// SetupTestDB connects to the database named by TEST_DATABASE_URL, applies the
// schema and truncates all tables. The test is skipped when the variable is unset.
func SetupTestDB(t *testing.T, schemaPath string) *DB {
	t.Helper()

	url := os.Getenv(TestDatabaseURLEnv)
	if url == "" {
		t.Skipf("%s not set, skipping integration test", TestDatabaseURLEnv)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := NewDBFromURL(ctx, url)
	if err != nil {
		t.Fatalf("failed to create test database connection: %v", err)
	}

	if err := db.ApplySQLFile(ctx, schemaPath); err != nil {
		db.Close()
		t.Fatalf("failed to apply schema: %v", err)
	}

	if _, err := db.pool.Exec(ctx, "TRUNCATE alerts_sent, prices, games RESTART IDENTITY CASCADE"); err != nil {
		db.Close()
		t.Fatalf("failed to truncate test tables: %v", err)
	}

	t.Cleanup(func() { TeardownTestDB(t, db) })
	return db
}

// TeardownTestDB closes the database connection cleanly
func TeardownTestDB(t *testing.T, db *DB) {
	t.Helper()
	db.Close()
}
