package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Mo-Ibra/next-fullstack-jobs/internal/worker/domain"
)

// spawnWorkerPool spawns N worker goroutines based on concurrency configuration
func (w *Worker) spawnWorkerPool(ctx context.Context) {
	w.logger.Info("Spawning worker pool",
		slog.Int("concurrency", w.concurrency),
		slog.String("worker_id", w.workerID),
	)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.workerLoop(ctx, i)
	}
}

// workerLoop processes events until jobsChan is closed or the worker is stopped
func (w *Worker) workerLoop(ctx context.Context, workerNum int) {
	defer w.wg.Done()

	workerName := fmt.Sprintf("%s-%d", w.workerID, workerNum)
	logger := w.logger.With(slog.String("worker_name", workerName))

	for {
		select {
		case <-w.stopChan:
			logger.Debug("Worker goroutine stopping - stopChan closed")
			return

		case msg, ok := <-w.jobsChan:
			if !ok {
				logger.Debug("Worker goroutine stopping - jobsChan closed")
				return
			}

			err := w.processEvent(ctx, msg)
			if err == nil {
				w.ack(msg.DeliveryTag)
				continue
			}

			requeue := shouldRequeue(err, msg.Redelivered)
			logger.Error("Event processing failed",
				slog.String("type", msg.Type),
				slog.String("job_id", msg.JobID),
				slog.Bool("redelivered", msg.Redelivered),
				slog.Bool("requeue", requeue),
				slog.String("error", err.Error()),
			)
			w.nack(msg.DeliveryTag, requeue)
		}
	}
}

// shouldRequeue gives transient failures exactly one more delivery
func shouldRequeue(err error, redelivered bool) bool {
	return domain.IsRetryable(err) && !redelivered
}

func (w *Worker) ack(tag uint64) {
	if err := w.broker.Ack(tag); err != nil {
		w.logger.Error("Failed to ACK message",
			slog.Uint64("delivery_tag", tag),
			slog.String("error", err.Error()),
		)
	}
}

func (w *Worker) nack(tag uint64, requeue bool) {
	if err := w.broker.Nack(tag, requeue); err != nil {
		w.logger.Error("Failed to NACK message",
			slog.Uint64("delivery_tag", tag),
			slog.Bool("requeue", requeue),
			slog.String("error", err.Error()),
		)
	}
}
