package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Mo-Ibra/next-fullstack-jobs/internal/api/domain"
	"github.com/Mo-Ibra/next-fullstack-jobs/internal/api/dto"
	"github.com/Mo-Ibra/next-fullstack-jobs/internal/api/model"
	"github.com/Mo-Ibra/next-fullstack-jobs/internal/events"
)

// ListApproved handles GET /api/jobs
// Store failures degrade to an empty list.
func (h *JobHandler) ListApproved(c *gin.Context) {
	c.JSON(http.StatusOK, h.listApproved(c.Request.Context()))
}

// GetJob handles GET /api/jobs/:id
func (h *JobHandler) GetJob(c *gin.Context) {
	id := c.Param("id")

	job, err := h.public.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "Failed to get job")
		return
	}

	c.JSON(http.StatusOK, job)
}

// CreatePublicJob handles POST /api/public-jobs
// The stored status is always pending.
func (h *JobHandler) CreatePublicJob(c *gin.Context) {
	in, ok := h.bindJob(c)
	if !ok {
		return
	}

	job, err := h.createPublic(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err, "Failed to create job")
		return
	}

	c.JSON(http.StatusOK, job)
}

// ListAll handles GET /api/admin/jobs
// Pending first, then approved, then rejected; newest first within a status.
func (h *JobHandler) ListAll(c *gin.Context) {
	c.JSON(http.StatusOK, h.listAll(c.Request.Context()))
}

// CreateJob handles POST /api/admin/jobs
func (h *JobHandler) CreateJob(c *gin.Context) {
	in, ok := h.bindJob(c)
	if !ok {
		return
	}

	job, err := h.createAdmin(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err, "Failed to create job")
		return
	}

	c.JSON(http.StatusOK, job)
}

// UpdateJob handles PUT /api/admin/jobs/:id
// Supplied fields are merged onto the stored record.
func (h *JobHandler) UpdateJob(c *gin.Context) {
	in, ok := h.bindJob(c)
	if !ok {
		return
	}

	job, err := h.update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, h.logger, err, "Failed to update job")
		return
	}

	c.JSON(http.StatusOK, job)
}

// UpdateStatus handles PATCH /api/admin/jobs/:id/status
func (h *JobHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: domain.MsgInvalidBody})
		return
	}

	job, err := h.changeStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, h.logger, err, "Failed to update job status")
		return
	}

	c.JSON(http.StatusOK, job)
}

// DeleteJob handles DELETE /api/admin/jobs/:id
func (h *JobHandler) DeleteJob(c *gin.Context) {
	if err := h.delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err, "Failed to delete job")
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Job deleted successfully"})
}

func (h *JobHandler) bindJob(c *gin.Context) (domain.JobInput, bool) {
	var req dto.JobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body",
			slog.String("path", c.Request.URL.Path),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: domain.MsgInvalidBody})
		return domain.JobInput{}, false
	}
	return req.ToInput(), true
}

func (h *JobHandler) listApproved(ctx context.Context) []model.Job {
	jobs, err := h.public.ListApproved(ctx)
	if err != nil {
		h.logger.Error("Failed to list approved jobs", slog.String("error", err.Error()))
		return []model.Job{}
	}
	if jobs == nil {
		return []model.Job{}
	}
	return jobs
}

func (h *JobHandler) listAll(ctx context.Context) []model.Job {
	jobs, err := h.admin.ListAll(ctx)
	if err != nil {
		h.logger.Error("Failed to list jobs", slog.String("error", err.Error()))
		return []model.Job{}
	}
	if jobs == nil {
		return []model.Job{}
	}
	return jobs
}

func (h *JobHandler) createPublic(ctx context.Context, in domain.JobInput) (*model.Job, error) {
	w, err := domain.NormalizePublic(in)
	if err != nil {
		return nil, err
	}

	job, err := h.public.Create(ctx, w)
	if err != nil {
		return nil, err
	}

	h.logger.Info("Job submitted", slog.String("job_id", job.ID), slog.String("company", job.Company))
	h.events.Emit(ctx, events.JobSubmitted, job.ID, job.Status)
	return job, nil
}

func (h *JobHandler) createAdmin(ctx context.Context, in domain.JobInput) (*model.Job, error) {
	w, err := domain.NormalizeAdminCreate(in)
	if err != nil {
		return nil, err
	}

	job, err := h.admin.Create(ctx, w)
	if err != nil {
		return nil, err
	}

	h.logger.Info("Job created", slog.String("job_id", job.ID), slog.String("status", job.Status))
	h.events.Emit(ctx, events.JobCreated, job.ID, job.Status)
	return job, nil
}

func (h *JobHandler) update(ctx context.Context, id string, in domain.JobInput) (*model.Job, error) {
	patch, err := domain.NormalizeUpdate(in)
	if err != nil {
		return nil, err
	}

	if patch.Has("salary_min") || patch.Has("salary_max") {
		current, err := h.admin.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := domain.CheckPatchedRange(current, patch); err != nil {
			return nil, err
		}
	}

	job, err := h.admin.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	h.logger.Info("Job updated", slog.String("job_id", job.ID), slog.Int("fields", len(patch)))
	h.events.Emit(ctx, events.JobUpdated, job.ID, job.Status)
	return job, nil
}

func (h *JobHandler) changeStatus(ctx context.Context, id, status string) (*model.Job, error) {
	s, err := domain.NormalizeStatus(status)
	if err != nil {
		return nil, err
	}

	job, err := h.admin.Update(ctx, id, model.JobPatch{"status": s})
	if err != nil {
		return nil, err
	}

	h.logger.Info("Job status changed", slog.String("job_id", job.ID), slog.String("status", job.Status))
	h.events.Emit(ctx, events.JobStatusChanged, job.ID, job.Status)
	return job, nil
}

func (h *JobHandler) delete(ctx context.Context, id string) error {
	if err := h.admin.Delete(ctx, id); err != nil {
		return err
	}

	h.logger.Info("Job deleted", slog.String("job_id", id))
	h.events.Emit(ctx, events.JobDeleted, id, "")
	return nil
}
