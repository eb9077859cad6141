// Package storagetest provides an in-memory job store for handler and router tests.
package storagetest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Mo-Ibra/next-fullstack-jobs/internal/api/domain"
	"github.com/Mo-Ibra/next-fullstack-jobs/internal/api/model"
	"github.com/Mo-Ibra/next-fullstack-jobs/internal/api/storage"
)

// Store keeps jobs in a map and follows the same ordering and not-found rules as the
// Postgres store. Every job gets a created_at one second after the previous one.
type Store struct {
	mu    sync.Mutex
	jobs  map[string]model.Job
	clock time.Time

	// Err, when set, is returned by every call
	Err error
	// Writes counts successful Create, Update and Delete calls
	Writes int
}

func New() *Store {
	return &Store{
		jobs:  make(map[string]model.Job),
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Put stores a job as is, for seeding. A missing id or created_at is filled in.
func (s *Store) Put(job model.Job) model.Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = s.tick()
	}
	if job.RequiredLanguages == nil {
		job.RequiredLanguages = model.Languages{}
	}
	s.jobs[job.ID] = job
	return job
}

// Len returns the number of stored jobs
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Job returns a stored job by id
func (s *Store) Job(id string) (model.Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	return j, ok
}

func (s *Store) ListApproved(_ context.Context) ([]model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}

	out := []model.Job{}
	for _, j := range s.jobs {
		if j.Status == domain.JobStatusApproved {
			out = append(out, j)
		}
	}
	storage.SortByRecency(out)
	return out, nil
}

func (s *Store) ListAll(_ context.Context) ([]model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}

	out := make([]model.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, j)
	}
	storage.SortForAdmin(out)
	return out, nil
}

func (s *Store) GetByID(_ context.Context, id string) (*model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}

	j, ok := s.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	return &j, nil
}

func (s *Store) Create(_ context.Context, w *model.JobWrite) (*model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}

	langs := w.RequiredLanguages
	if langs == nil {
		langs = model.Languages{}
	}

	j := model.Job{
		ID:                uuid.NewString(),
		Title:             w.Title,
		Company:           w.Company,
		CompanyLogo:       w.CompanyLogo,
		Location:          w.Location,
		Description:       w.Description,
		Salary:            w.Salary,
		SalaryMin:         w.SalaryMin,
		SalaryMax:         w.SalaryMax,
		SalaryCurrency:    w.SalaryCurrency,
		VisaSponsorship:   w.VisaSponsorship,
		RequiredLanguages: langs,
		JobType:           w.JobType,
		WorkLocationType:  w.WorkLocationType,
		ApplicationLink:   w.ApplicationLink,
		Status:            w.Status,
		CreatedAt:         s.tick(),
	}
	s.jobs[j.ID] = j
	s.Writes++
	return &j, nil
}

func (s *Store) Update(_ context.Context, id string, patch model.JobPatch) (*model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}

	j, ok := s.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	if err := apply(&j, patch); err != nil {
		return nil, err
	}
	s.jobs[id] = j
	s.Writes++
	return &j, nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return s.Err
	}

	if _, ok := s.jobs[id]; !ok {
		return domain.ErrJobNotFound
	}
	delete(s.jobs, id)
	s.Writes++
	return nil
}

func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func apply(j *model.Job, patch model.JobPatch) error {
	for col, v := range patch {
		switch col {
		case "title":
			j.Title = v.(string)
		case "company":
			j.Company = v.(string)
		case "company_logo":
			j.CompanyLogo = v.(*string)
		case "location":
			j.Location = v.(string)
		case "description":
			j.Description = v.(string)
		case "salary":
			j.Salary = v.(*string)
		case "salary_min":
			j.SalaryMin = v.(*int)
		case "salary_max":
			j.SalaryMax = v.(*int)
		case "salary_currency":
			j.SalaryCurrency = v.(string)
		case "visa_sponsorship":
			j.VisaSponsorship = v.(bool)
		case "required_languages":
			j.RequiredLanguages = v.(model.Languages)
		case "job_type":
			j.JobType = v.(string)
		case "work_location_type":
			j.WorkLocationType = v.(*string)
		case "application_link":
			j.ApplicationLink = v.(*string)
		case "status":
			j.Status = v.(string)
		default:
			return fmt.Errorf("column %q is not updatable", col)
		}
	}
	return nil
}
