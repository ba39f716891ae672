package database

import (
	"context"
	"fmt"
	"os"

	"github.com/yourusername/arb-scanner/internal/config"
)

// DefaultSchemaPath is the schema file applied by the apply-sql tool
const DefaultSchemaPath = "migrations/010_tables.sql"

var requiredTables = []string{"games", "prices", "alerts_sent"}

// Initialize creates a database connection pool and reports tables missing from the schema
func Initialize(ctx context.Context, cfg *config.Config) (*DB, []string, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, nil, err
	}

	missing, err := db.MissingTables(ctx)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	return db, missing, nil
}

// MissingTables returns the required tables not present in the public schema
func (db *DB) MissingTables(ctx context.Context) ([]string, error) {
	var missing []string
	for _, table := range requiredTables {
		var exists bool
		err := db.pool.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = 'public' AND table_name = $1)",
			table,
		).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("failed to check table %s: %w", table, err)
		}
		if !exists {
			missing = append(missing, table)
		}
	}
	return missing, nil
}

// ApplySQLFile executes every statement in a SQL file inside one transaction
func (db *DB) ApplySQLFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read sql file %s: %w", path, err)
	}

	return db.WithTransaction(ctx, func(txCtx context.Context) error {
		// Simple protocol so multiple statements run in one Exec
		if _, err := db.Conn(txCtx).Exec(txCtx, string(data)); err != nil {
			return fmt.Errorf("failed to apply %s: %w", path, err)
		}
		return nil
	})
}
