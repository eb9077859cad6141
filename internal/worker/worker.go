package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Mo-Ibra/next-fullstack-jobs/internal/worker/domain"
)

// ErrDeliveriesClosed is returned by Start when the broker closes the delivery channel
var ErrDeliveriesClosed = errors.New("delivery channel closed")

// Broker is the part of *rabbitmq.Client the worker uses
type Broker interface {
	Consume(consumerTag string) (<-chan amqp.Delivery, error)
	Ack(tag uint64) error
	Nack(tag uint64, requeue bool) error
}

// JobReader loads the current state of a job
type JobReader interface {
	GetJobSummary(ctx context.Context, jobID string) (*domain.JobSummary, error)
}

// Notifier delivers a moderator notification
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification) error
}

// Config holds worker configuration
type Config struct {
	Logger      *slog.Logger
	Broker      Broker
	Jobs        JobReader
	Notifier    Notifier
	Concurrency int
	JobTimeout  time.Duration
	WorkerID    string
}

// Worker consumes job events and turns the interesting ones into notifications
type Worker struct {
	logger      *slog.Logger
	broker      Broker
	jobs        JobReader
	notifier    Notifier
	concurrency int
	jobTimeout  time.Duration
	workerID    string
	jobsChan    chan *domain.EventMessage
	wg          sync.WaitGroup
	stopChan    chan struct{}
	stopOnce    sync.Once
}

// NewWorker creates a new worker instance
func NewWorker(cfg *Config) *Worker {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	workerID := cfg.WorkerID
	if workerID == "" {
		workerID = defaultWorkerID()
	}

	return &Worker{
		logger:      cfg.Logger,
		broker:      cfg.Broker,
		jobs:        cfg.Jobs,
		notifier:    cfg.Notifier,
		concurrency: concurrency,
		jobTimeout:  cfg.JobTimeout,
		workerID:    workerID,
		jobsChan:    make(chan *domain.EventMessage, concurrency),
		stopChan:    make(chan struct{}),
	}
}

func defaultWorkerID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "worker"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}

// Start consumes until ctx is canceled or the broker closes the delivery channel.
// In-flight events finish before Start returns.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Starting worker",
		slog.String("worker_id", w.workerID),
		slog.Int("concurrency", w.concurrency),
		slog.Duration("job_timeout", w.jobTimeout),
	)

	deliveries, err := w.setupConsumer()
	if err != nil {
		return err
	}

	w.spawnWorkerPool(ctx)

	dispatchErr := w.startMessageDispatcher(ctx, deliveries)

	close(w.jobsChan)
	w.wg.Wait()

	return dispatchErr
}

// Stop asks the dispatcher and the pool to exit. Start returns once they have.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		w.logger.Info("Stopping worker...")
		close(w.stopChan)
	})
}
