package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schemaStatements create the current schema and bring legacy jobs tables up to it.
// Every statement is idempotent so Migrate can run on each start.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS jobs (
		id UUID PRIMARY KEY,
		title TEXT NOT NULL,
		company TEXT NOT NULL,
		company_logo TEXT,
		location TEXT NOT NULL,
		description TEXT NOT NULL,
		salary TEXT,
		job_type TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	// columns added after the first schema; old rows get explicit defaults
	`ALTER TABLE jobs ADD COLUMN IF NOT EXISTS salary_min INTEGER`,
	`ALTER TABLE jobs ADD COLUMN IF NOT EXISTS salary_max INTEGER`,
	`ALTER TABLE jobs ADD COLUMN IF NOT EXISTS salary_currency TEXT NOT NULL DEFAULT 'USD'`,
	`ALTER TABLE jobs ADD COLUMN IF NOT EXISTS visa_sponsorship BOOLEAN NOT NULL DEFAULT FALSE`,
	`ALTER TABLE jobs ADD COLUMN IF NOT EXISTS required_languages JSONB NOT NULL DEFAULT '[]'::jsonb`,
	`ALTER TABLE jobs ADD COLUMN IF NOT EXISTS work_location_type TEXT`,
	`ALTER TABLE jobs ADD COLUMN IF NOT EXISTS application_link TEXT`,

	`CREATE INDEX IF NOT EXISTS idx_jobs_status_created_at ON jobs (status, created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS logos (
		key TEXT PRIMARY KEY,
		content_type TEXT NOT NULL,
		bytes BYTEA NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Migrate applies schemaStatements inside one transaction
func Migrate(ctx context.Context, db *sqlx.DB) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range schemaStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration step %d failed: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration: %w", err)
	}

	return nil
}
