package database

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
)

//go:embed migrations/001_lifecycle.up.sql
var lifecycleMigrationSQL string

//go:embed migrations/002_pending_operations.up.sql
var pendingOperationsSQL string

var requiredTables = []string{
	"trash_entries",
	"audit_entries",
}

func (db *DB) EnsureSchema(ctx context.Context) error {
	if db == nil || db.Pool == nil {
		return fmt.Errorf("database pool is not initialized")
	}

	exists, err := db.hasAllRequiredTables(ctx)
	if err != nil {
		return fmt.Errorf("check existing tables: %w", err)
	}

	if !exists {
		slog.Info("database schema missing lifecycle tables; applying initial migration")
		if _, err := db.Pool.Exec(ctx, lifecycleMigrationSQL); err != nil {
			return fmt.Errorf("apply lifecycle migration: %w", err)
		}

		exists, err = db.hasAllRequiredTables(ctx)
		if err != nil {
			return fmt.Errorf("re-check tables after migration: %w", err)
		}

		if !exists {
			return fmt.Errorf("schema initialization incomplete: required tables are still missing")
		}
	}

	// 002 uses IF NOT EXISTS throughout, so it is safe to re-run.
	if _, err := db.Pool.Exec(ctx, pendingOperationsSQL); err != nil {
		return fmt.Errorf("apply pending operations migration: %w", err)
	}

	slog.Info("database schema ensured")
	return nil
}

func (db *DB) hasAllRequiredTables(ctx context.Context) (bool, error) {
	var count int
	err := db.Pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM information_schema.tables
		WHERE table_schema = 'public'
		  AND table_name = ANY($1)
	`, requiredTables).Scan(&count)
	if err != nil {
		return false, err
	}

	return count == len(requiredTables), nil
}
