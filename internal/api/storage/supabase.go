package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	supabase "github.com/nedpals/supabase-go"

	"github.com/Mo-Ibra/next-fullstack-jobs/internal/api/domain"
	"github.com/Mo-Ibra/next-fullstack-jobs/internal/api/model"
)

const jobsTable = "jobs"

// SupabaseStore keeps jobs in a hosted Supabase project through its REST API.
// One instance is built per key: the anon key for public paths, the service key for admin paths.
type SupabaseStore struct {
	client *supabase.Client
}

func NewSupabaseStore(supabaseURL, supabaseKey string) (*SupabaseStore, error) {
	if supabaseURL == "" || supabaseKey == "" {
		return nil, fmt.Errorf("supabase URL and key must be provided")
	}

	return &SupabaseStore{client: supabase.CreateClient(supabaseURL, supabaseKey)}, nil
}

// supabaseInsert adds the generated id to the client-controllable fields
type supabaseInsert struct {
	ID string `json:"id"`
	model.JobWrite
}

// The REST client takes no context; ctx is checked before each round trip.

func (s *SupabaseStore) ListApproved(ctx context.Context) ([]model.Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	jobs := []model.Job{}
	err := s.client.DB.From(jobsTable).Select("*").Eq("status", domain.JobStatusApproved).Execute(&jobs)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved jobs: %w", err)
	}

	SortByRecency(jobs)
	return jobs, nil
}

func (s *SupabaseStore) ListAll(ctx context.Context) ([]model.Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	jobs := []model.Job{}
	if err := s.client.DB.From(jobsTable).Select("*").Execute(&jobs); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	// PostgREST would order status alphabetically; the rank mapping is applied here instead
	SortForAdmin(jobs)
	return jobs, nil
}

func (s *SupabaseStore) GetByID(ctx context.Context, id string) (*model.Job, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrJobNotFound
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows []model.Job
	if err := s.client.DB.From(jobsTable).Select("*").Eq("id", id).Execute(&rows); err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrJobNotFound
	}

	return &rows[0], nil
}

func (s *SupabaseStore) Create(ctx context.Context, w *model.JobWrite) (*model.Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	row := supabaseInsert{ID: uuid.New().String(), JobWrite: *w}

	var rows []model.Job
	if err := s.client.DB.From(jobsTable).Insert(row).Execute(&rows); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	if len(rows) > 0 {
		return &rows[0], nil
	}

	// no representation returned; read back created_at
	return s.GetByID(ctx, row.ID)
}

func (s *SupabaseStore) Update(ctx context.Context, id string, patch model.JobPatch) (*model.Job, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrJobNotFound
	}
	if len(patch) == 0 {
		return s.GetByID(ctx, id)
	}
	for col := range patch {
		if !updatableColumns[col] {
			return nil, fmt.Errorf("column %q is not updatable", col)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows []model.Job
	err := s.client.DB.From(jobsTable).Update(map[string]any(patch)).Eq("id", id).Execute(&rows)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to update job: %w", err)
	}
	if len(rows) > 0 {
		return &rows[0], nil
	}

	return s.GetByID(ctx, id)
}

func (s *SupabaseStore) Delete(ctx context.Context, id string) error {
	// PostgREST reports success for a delete that matched nothing
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	var rows []model.Job
	err := s.client.DB.From(jobsTable).Delete().Eq("id", id).Execute(&rows)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to delete job: %w", err)
	}

	return nil
}
