package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Mo-Ibra/next-fullstack-jobs/internal/events"
	"github.com/Mo-Ibra/next-fullstack-jobs/internal/worker/domain"
)

// notifies lists the event types moderators hear about
var notifies = map[string]bool{
	events.JobSubmitted:     true,
	events.JobStatusChanged: true,
}

// processEvent loads the job and sends the notification for one event.
// Events nobody is notified about succeed without touching the database.
func (w *Worker) processEvent(ctx context.Context, msg *domain.EventMessage) error {
	if !notifies[msg.Type] {
		w.logger.Debug("Ignoring event",
			slog.String("type", msg.Type),
			slog.String("job_id", msg.JobID),
		)
		return nil
	}

	jobCtx := ctx
	if w.jobTimeout > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(ctx, w.jobTimeout)
		defer cancel()
	}

	job, err := w.jobs.GetJobSummary(jobCtx, msg.JobID)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			w.logger.Warn("Job gone before notification, dropping event",
				slog.String("type", msg.Type),
				slog.String("job_id", msg.JobID),
			)
			return err
		}
		return domain.NewRetryableError(fmt.Errorf("failed to load job: %w", err))
	}

	// the event carries the status at write time; prefer it over a later edit
	if msg.Status != "" {
		job.Status = msg.Status
	}

	n := domain.Notification{
		Event:      msg.Type,
		Job:        *job,
		OccurredAt: msg.OccurredAt,
	}
	if err := w.notifier.Notify(jobCtx, n); err != nil {
		return fmt.Errorf("failed to notify: %w", err)
	}

	w.logger.Info("Moderator notified",
		slog.String("type", msg.Type),
		slog.String("job_id", msg.JobID),
		slog.String("status", job.Status),
	)
	return nil
}
