package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Mo-Ibra/next-fullstack-jobs/internal/api/domain"
	"github.com/Mo-Ibra/next-fullstack-jobs/internal/api/model"
)

const jobColumns = `
	id, title, company, company_logo, location, description,
	salary, salary_min, salary_max, salary_currency, visa_sponsorship,
	required_languages, job_type, work_location_type, application_link,
	status, created_at`

// statusOrder mirrors domain.StatusRank
const statusOrder = `CASE status
		WHEN 'pending' THEN 0
		WHEN 'approved' THEN 1
		WHEN 'rejected' THEN 2
		ELSE 3
	END`

// PostgresStore keeps jobs in a Postgres table through sqlx
type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// ListApproved returns the public listing, newest first
func (s *PostgresStore) ListApproved(ctx context.Context) ([]model.Job, error) {
	query := `SELECT ` + jobColumns + `
		FROM jobs
		WHERE status = $1
		ORDER BY created_at DESC`

	jobs := []model.Job{}
	if err := s.db.SelectContext(ctx, &jobs, query, domain.JobStatusApproved); err != nil {
		return nil, fmt.Errorf("failed to list approved jobs: %w", err)
	}

	return jobs, nil
}

// ListAll returns every job, pending first, then approved, then rejected, newest first within a status
func (s *PostgresStore) ListAll(ctx context.Context) ([]model.Job, error) {
	query := `SELECT ` + jobColumns + `
		FROM jobs
		ORDER BY ` + statusOrder + ` ASC, created_at DESC`

	jobs := []model.Job{}
	if err := s.db.SelectContext(ctx, &jobs, query); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	return jobs, nil
}

// GetByID returns domain.ErrJobNotFound for unknown and malformed ids
func (s *PostgresStore) GetByID(ctx context.Context, id string) (*model.Job, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrJobNotFound
	}

	query := `SELECT ` + jobColumns + `
		FROM jobs
		WHERE id = $1`

	var job model.Job
	if err := s.db.GetContext(ctx, &job, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return &job, nil
}

// Create inserts a job. The id is generated here and created_at by the database.
func (s *PostgresStore) Create(ctx context.Context, w *model.JobWrite) (*model.Job, error) {
	query := `
		INSERT INTO jobs (
			id, title, company, company_logo, location, description,
			salary, salary_min, salary_max, salary_currency, visa_sponsorship,
			required_languages, job_type, work_location_type, application_link, status
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16
		)
		RETURNING ` + jobColumns

	var job model.Job
	err := s.db.QueryRowxContext(
		ctx,
		query,
		uuid.New().String(),
		w.Title,
		w.Company,
		w.CompanyLogo,
		w.Location,
		w.Description,
		w.Salary,
		w.SalaryMin,
		w.SalaryMax,
		w.SalaryCurrency,
		w.VisaSponsorship,
		w.RequiredLanguages,
		w.JobType,
		w.WorkLocationType,
		w.ApplicationLink,
		w.Status,
	).StructScan(&job)
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	return &job, nil
}

// Update merges the patch onto the row. An empty patch returns the row unchanged.
func (s *PostgresStore) Update(ctx context.Context, id string, patch model.JobPatch) (*model.Job, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrJobNotFound
	}

	if len(patch) == 0 {
		return s.GetByID(ctx, id)
	}

	set, args, err := buildSetClause(patch, 1)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`UPDATE jobs SET %s WHERE id = $%d RETURNING %s`, set, len(args)+1, jobColumns)
	args = append(args, id)

	var job model.Job
	if err := s.db.QueryRowxContext(ctx, query, args...).StructScan(&job); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to update job: %w", err)
	}

	return &job, nil
}

// Delete removes one row. A missing row is domain.ErrJobNotFound.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrJobNotFound
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	if affected == 0 {
		return domain.ErrJobNotFound
	}

	return nil
}

// Ping is used by the readiness probe
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
