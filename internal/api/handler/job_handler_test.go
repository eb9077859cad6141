package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mo-Ibra/next-fullstack-jobs/internal/api/domain"
	"github.com/Mo-Ibra/next-fullstack-jobs/internal/api/dto"
	"github.com/Mo-Ibra/next-fullstack-jobs/internal/api/model"
	"github.com/Mo-Ibra/next-fullstack-jobs/internal/events"
)

func jobRouter(env *testEnv) *gin.Engine {
	h := NewJobHandler(env.deps)
	r := gin.New()
	r.GET("/api/jobs", h.ListApproved)
	r.GET("/api/jobs/:id", h.GetJob)
	r.POST("/api/public-jobs", h.CreatePublicJob)
	r.GET("/api/admin/jobs", h.ListAll)
	r.POST("/api/admin/jobs", h.CreateJob)
	r.PUT("/api/admin/jobs/:id", h.UpdateJob)
	r.PATCH("/api/admin/jobs/:id/status", h.UpdateStatus)
	r.DELETE("/api/admin/jobs/:id", h.DeleteJob)
	return r
}

func seed(env *testEnv, title, status string) model.Job {
	return env.store.Put(model.Job{
		Title:          title,
		Company:        "Acme",
		Location:       "Berlin",
		Description:    "desc",
		JobType:        "Full-time",
		SalaryCurrency: "USD",
		Status:         status,
	})
}

func TestJobHandler_ListApproved(t *testing.T) {
	env := newTestEnv(t)
	r := jobRouter(env)

	older := seed(env, "older", domain.JobStatusApproved)
	seed(env, "pending", domain.JobStatusPending)
	newer := seed(env, "newer", domain.JobStatusApproved)
	seed(env, "rejected", domain.JobStatusRejected)

	w := doJSON(t, r, http.MethodGet, "/api/jobs", nil)
	require.Equal(t, http.StatusOK, w.Code)

	jobs := decode[[]model.Job](t, w)
	require.Len(t, jobs, 2)
	assert.Equal(t, newer.ID, jobs[0].ID)
	assert.Equal(t, older.ID, jobs[1].ID)
}

func TestJobHandler_ListFailureDegradesToEmpty(t *testing.T) {
	env := newTestEnv(t)
	r := jobRouter(env)
	env.store.Err = errors.New("connection refused")

	for _, path := range []string{"/api/jobs", "/api/admin/jobs"} {
		w := doJSON(t, r, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.JSONEq(t, `[]`, w.Body.String(), path)
	}
}

func TestJobHandler_ListAllOrdersByStatusThenRecency(t *testing.T) {
	env := newTestEnv(t)
	r := jobRouter(env)

	seed(env, "approved-old", domain.JobStatusApproved)
	seed(env, "rejected", domain.JobStatusRejected)
	seed(env, "pending-old", domain.JobStatusPending)
	seed(env, "approved-new", domain.JobStatusApproved)
	seed(env, "pending-new", domain.JobStatusPending)

	w := doJSON(t, r, http.MethodGet, "/api/admin/jobs", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var titles []string
	for _, j := range decode[[]model.Job](t, w) {
		titles = append(titles, j.Title)
	}
	assert.Equal(t, []string{"pending-new", "pending-old", "approved-new", "approved-old", "rejected"}, titles)
}

func TestJobHandler_GetJob(t *testing.T) {
	env := newTestEnv(t)
	r := jobRouter(env)
	job := seed(env, "one", domain.JobStatusApproved)

	w := doJSON(t, r, http.MethodGet, "/api/jobs/"+job.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, job.ID, decode[model.Job](t, w).ID)

	for _, id := range []string{"6f1c1f4e-8b7a-4c43-9d0e-1b2f3a4b5c6d", "not-a-uuid"} {
		w = doJSON(t, r, http.MethodGet, "/api/jobs/"+id, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, id)
		assert.JSONEq(t, `{"error":"Job not found"}`, w.Body.String())
	}
}

func TestJobHandler_CreatePublicJob(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(body map[string]any)
		wantStatus int
		wantError  string
		check      func(t *testing.T, job model.Job)
	}{
		{
			name:       "status is forced to pending",
			mutate:     func(b map[string]any) { b["status"] = "approved" },
			wantStatus: http.StatusOK,
			check: func(t *testing.T, job model.Job) {
				assert.Equal(t, domain.JobStatusPending, job.Status)
			},
		},
		{
			name: "salary range round-trips as ints",
			mutate: func(b map[string]any) {
				b["salary"] = "Competitive"
				b["salary_min"] = "50000"
				b["salary_max"] = 100000
			},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, job model.Job) {
				require.NotNil(t, job.SalaryMin)
				require.NotNil(t, job.SalaryMax)
				assert.Equal(t, 50000, *job.SalaryMin)
				assert.Equal(t, 100000, *job.SalaryMax)
				require.NotNil(t, job.Salary)
				assert.Equal(t, "Competitive", *job.Salary)
			},
		},
		{
			name: "defaults",
			mutate: func(b map[string]any) {
				b["salary"] = ""
				b["salary_min"] = ""
			},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, job model.Job) {
				assert.Nil(t, job.Salary)
				assert.Nil(t, job.SalaryMin)
				assert.Equal(t, "USD", job.SalaryCurrency)
				assert.False(t, job.VisaSponsorship)
				assert.Empty(t, job.RequiredLanguages)
			},
		},
		{
			name: "blank languages are dropped",
			mutate: func(b map[string]any) {
				b["visa_sponsorship"] = "on"
				b["required_languages"] = []map[string]string{
					{"language": "German", "level": "Advanced"},
					{"language": "  ", "level": "Basic"},
					{"language": "English", "level": ""},
				}
			},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, job model.Job) {
				assert.True(t, job.VisaSponsorship)
				assert.Equal(t, model.Languages{
					{Language: "German", Level: "Advanced"},
					{Language: "English", Level: "Intermediate"},
				}, job.RequiredLanguages)
			},
		},
		{
			name:       "missing application_link",
			mutate:     func(b map[string]any) { delete(b, "application_link") },
			wantStatus: http.StatusBadRequest,
			wantError:  domain.MsgMissingRequiredFields,
		},
		{
			name:       "blank title",
			mutate:     func(b map[string]any) { b["title"] = "   " },
			wantStatus: http.StatusBadRequest,
			wantError:  domain.MsgMissingRequiredFields,
		},
		{
			name:       "unknown work location",
			mutate:     func(b map[string]any) { b["work_location_type"] = "moon" },
			wantStatus: http.StatusBadRequest,
			wantError:  domain.MsgInvalidWorkLocation,
		},
		{
			name:       "unparseable salary",
			mutate:     func(b map[string]any) { b["salary_min"] = "lots" },
			wantStatus: http.StatusBadRequest,
			wantError:  domain.MsgInvalidSalary,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			r := jobRouter(env)

			body := validPublicJob()
			tt.mutate(body)

			w := doJSON(t, r, http.MethodPost, "/api/public-jobs", body)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())

			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, decode[dto.ErrorResponse](t, w).Error)
				assert.Equal(t, 0, env.store.Len(), "nothing inserted")
				assert.Empty(t, env.published.Keys())
				return
			}

			job := decode[model.Job](t, w)
			assert.NotEmpty(t, job.ID)
			assert.False(t, job.CreatedAt.IsZero())

			stored, ok := env.store.Job(job.ID)
			require.True(t, ok)
			tt.check(t, stored)
			assert.Equal(t, []string{events.JobSubmitted}, env.published.Keys())
		})
	}
}

func TestJobHandler_CreatePublicJob_BadBody(t *testing.T) {
	env := newTestEnv(t)
	r := jobRouter(env)

	w := doJSON(t, r, http.MethodPost, "/api/public-jobs", `{"title": [1, 2]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid request body"}`, w.Body.String())
}

func TestJobHandler_CreatePublicJob_StoreFailure(t *testing.T) {
	env := newTestEnv(t)
	r := jobRouter(env)
	env.store.Err = errors.New("insert failed")

	w := doJSON(t, r, http.MethodPost, "/api/public-jobs", validPublicJob())
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to create job"}`, w.Body.String())
	assert.Empty(t, env.published.Keys())
}

func TestJobHandler_CreateJob(t *testing.T) {
	tests := []struct {
		name       string
		status     any
		wantStatus int
		wantJob    string
	}{
		{name: "defaults to approved", status: nil, wantStatus: http.StatusOK, wantJob: domain.JobStatusApproved},
		{name: "explicit status", status: "rejected", wantStatus: http.StatusOK, wantJob: domain.JobStatusRejected},
		{name: "invalid status", status: "archived", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			r := jobRouter(env)

			body := validPublicJob()
			delete(body, "application_link")
			if tt.status != nil {
				body["status"] = tt.status
			}

			w := doJSON(t, r, http.MethodPost, "/api/admin/jobs", body)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())

			if tt.wantStatus != http.StatusOK {
				assert.Equal(t, domain.MsgInvalidStatus, decode[dto.ErrorResponse](t, w).Error)
				assert.Equal(t, 0, env.store.Len())
				return
			}
			assert.Equal(t, tt.wantJob, decode[model.Job](t, w).Status)
			assert.Equal(t, []string{events.JobCreated}, env.published.Keys())
		})
	}
}

func TestJobHandler_UpdateJob(t *testing.T) {
	env := newTestEnv(t)
	r := jobRouter(env)
	job := seed(env, "Old title", domain.JobStatusPending)

	w := doJSON(t, r, http.MethodPut, "/api/admin/jobs/"+job.ID, map[string]any{
		"title":      "New title",
		"salary_min": "1000",
		"status":     "approved",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	got := decode[model.Job](t, w)
	assert.Equal(t, "New title", got.Title)
	assert.Equal(t, domain.JobStatusApproved, got.Status)
	require.NotNil(t, got.SalaryMin)
	assert.Equal(t, 1000, *got.SalaryMin)
	assert.Equal(t, "Acme", got.Company, "fields not sent are kept")
	assert.True(t, job.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, []string{events.JobUpdated}, env.published.Keys())
}

func TestJobHandler_UpdateJob_Errors(t *testing.T) {
	env := newTestEnv(t)
	r := jobRouter(env)
	job := seed(env, "Title", domain.JobStatusPending)

	w := doJSON(t, r, http.MethodPut, "/api/admin/jobs/"+job.ID, map[string]any{"title": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, domain.MsgMissingRequiredFields, decode[dto.ErrorResponse](t, w).Error)

	w = doJSON(t, r, http.MethodPut, "/api/admin/jobs/"+job.ID, map[string]any{"salary_min": "10", "salary_max": "5"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPut, "/api/admin/jobs/b0f5a3c2-1111-4222-8333-944455556666", map[string]any{"title": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	stored, _ := env.store.Job(job.ID)
	assert.Equal(t, "Title", stored.Title)
	assert.Equal(t, 0, env.store.Writes)
}

func TestJobHandler_UpdateJob_SalaryRangeAgainstStored(t *testing.T) {
	tests := []struct {
		name       string
		body       map[string]any
		wantStatus int
		wantMin    int
		wantMax    int
	}{
		{name: "min above stored max", body: map[string]any{"salary_min": 500}, wantStatus: http.StatusBadRequest, wantMin: 100, wantMax: 200},
		{name: "max below stored min", body: map[string]any{"salary_max": "50"}, wantStatus: http.StatusBadRequest, wantMin: 100, wantMax: 200},
		{name: "min within stored max", body: map[string]any{"salary_min": 150}, wantStatus: http.StatusOK, wantMin: 150, wantMax: 200},
		{name: "both bounds moved", body: map[string]any{"salary_min": 500, "salary_max": 900}, wantStatus: http.StatusOK, wantMin: 500, wantMax: 900},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			r := jobRouter(env)
			job := seed(env, "Title", domain.JobStatusApproved)

			w := doJSON(t, r, http.MethodPut, "/api/admin/jobs/"+job.ID, map[string]any{"salary_min": 100, "salary_max": 200})
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			w = doJSON(t, r, http.MethodPut, "/api/admin/jobs/"+job.ID, tt.body)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantStatus == http.StatusBadRequest {
				assert.Equal(t, domain.MsgInvalidSalary, decode[dto.ErrorResponse](t, w).Error)
			}

			stored, _ := env.store.Job(job.ID)
			require.NotNil(t, stored.SalaryMin)
			require.NotNil(t, stored.SalaryMax)
			assert.Equal(t, tt.wantMin, *stored.SalaryMin)
			assert.Equal(t, tt.wantMax, *stored.SalaryMax)
		})
	}
}

func TestJobHandler_UpdateJob_PaddedStatus(t *testing.T) {
	env := newTestEnv(t)
	r := jobRouter(env)
	job := seed(env, "Title", domain.JobStatusPending)

	w := doJSON(t, r, http.MethodPut, "/api/admin/jobs/"+job.ID, map[string]any{"status": "  approved "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid status"}`, w.Body.String())

	w = doJSON(t, r, http.MethodPatch, "/api/admin/jobs/"+job.ID+"/status", map[string]string{"status": "  approved "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	stored, _ := env.store.Job(job.ID)
	assert.Equal(t, domain.JobStatusPending, stored.Status)
	assert.Empty(t, env.published.Keys())
}

func TestJobHandler_UpdateStatus(t *testing.T) {
	env := newTestEnv(t)
	r := jobRouter(env)
	job := seed(env, "Title", domain.JobStatusPending)

	w := doJSON(t, r, http.MethodPatch, "/api/admin/jobs/"+job.ID+"/status", map[string]string{"status": "archived"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid status"}`, w.Body.String())

	stored, _ := env.store.Job(job.ID)
	assert.Equal(t, domain.JobStatusPending, stored.Status, "record unchanged")

	w = doJSON(t, r, http.MethodPatch, "/api/admin/jobs/"+job.ID+"/status", map[string]string{"status": "approved"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.JobStatusApproved, decode[model.Job](t, w).Status)
	assert.Equal(t, []string{events.JobStatusChanged}, env.published.Keys())

	w = doJSON(t, r, http.MethodPatch, "/api/admin/jobs/"+job.ID+"/status", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPatch, "/api/admin/jobs/nope/status", map[string]string{"status": "rejected"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestJobHandler_DeleteTwice(t *testing.T) {
	env := newTestEnv(t)
	r := jobRouter(env)
	job := seed(env, "gone", domain.JobStatusApproved)
	other := seed(env, "kept", domain.JobStatusApproved)

	w := doJSON(t, r, http.MethodDelete, "/api/admin/jobs/"+job.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Job deleted successfully"}`, w.Body.String())

	w = doJSON(t, r, http.MethodDelete, "/api/admin/jobs/"+job.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Job not found"}`, w.Body.String())

	_, ok := env.store.Job(other.ID)
	assert.True(t, ok, "other rows untouched")
	assert.Equal(t, []string{events.JobDeleted}, env.published.Keys())
}

func TestJobHandler_DeleteStoreFailure(t *testing.T) {
	env := newTestEnv(t)
	r := jobRouter(env)
	env.store.Err = errors.New("timeout")

	w := doJSON(t, r, http.MethodDelete, "/api/admin/jobs/anything", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to delete job"}`, w.Body.String())
}
