package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/Mo-Ibra/next-fullstack-jobs/internal/worker/domain"
)

// Storage handles the worker's read-only queries
type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStorage creates a new Storage instance
func NewStorage(db *sqlx.DB, logger *slog.Logger) *Storage {
	return &Storage{
		db:     db,
		logger: logger,
	}
}

// GetJobSummary loads the current state of a job. Events can arrive after a delete,
// so a missing row is reported as domain.ErrJobNotFound.
func (s *Storage) GetJobSummary(ctx context.Context, jobID string) (*domain.JobSummary, error) {
	query := `
		SELECT id, title, company, location, status, created_at
		FROM jobs
		WHERE id = $1
	`

	var job domain.JobSummary
	if err := s.db.GetContext(ctx, &job, query, jobID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Debug("Job summary not found",
				slog.String("job_id", jobID),
			)
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job summary: %w", err)
	}

	return &job, nil
}
