package assets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// PostgresStore keeps logos in the logos table
type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Put is idempotent: identical bytes hash to the same key
func (s *PostgresStore) Put(ctx context.Context, logo Logo) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO logos (key, content_type, bytes)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO NOTHING`,
		logo.Key, logo.ContentType, logo.Bytes,
	)
	if err != nil {
		return fmt.Errorf("failed to insert logo: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) (*Logo, error) {
	logo := Logo{Key: key}
	err := s.db.QueryRowxContext(ctx,
		`SELECT content_type, bytes FROM logos WHERE key = $1`, key,
	).Scan(&logo.ContentType, &logo.Bytes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLogoMissing
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load logo: %w", err)
	}
	return &logo, nil
}
