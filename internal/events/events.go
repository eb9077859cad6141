package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// Event types double as routing keys on the topic exchange
const (
	JobSubmitted     = "job.submitted"
	JobCreated       = "job.created"
	JobUpdated       = "job.updated"
	JobStatusChanged = "job.status_changed"
	JobDeleted       = "job.deleted"
)

// JobEvent is the message body published after a successful write
type JobEvent struct {
	Type       string    `json:"type"`
	JobID      string    `json:"job_id"`
	Status     string    `json:"status,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher is satisfied by *rabbitmq.Client
type Publisher interface {
	Publish(ctx context.Context, routingKey string, body []byte, contentType string) error
}

// Emitter publishes job events on a best-effort basis.
// A nil Emitter, or one without a publisher, drops every event.
type Emitter struct {
	publisher Publisher
	logger    *slog.Logger
	timeout   time.Duration
	now       func() time.Time
}

// NewEmitter creates an emitter. publisher may be nil when RabbitMQ is disabled.
func NewEmitter(publisher Publisher, logger *slog.Logger) *Emitter {
	return &Emitter{
		publisher: publisher,
		logger:    logger,
		timeout:   5 * time.Second,
		now:       time.Now,
	}
}

// Emit publishes one event. Failures are logged and swallowed since the write has already happened.
func (e *Emitter) Emit(ctx context.Context, eventType, jobID, status string) {
	if e == nil || e.publisher == nil {
		return
	}

	event := JobEvent{
		Type:       eventType,
		JobID:      jobID,
		Status:     status,
		OccurredAt: e.now().UTC(),
	}

	if err := e.publish(ctx, event); err != nil {
		e.logger.Warn("Failed to publish job event",
			slog.String("event", eventType),
			slog.String("job_id", jobID),
			slog.Any("error", err),
		)
	}
}

func (e *Emitter) publish(ctx context.Context, event JobEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// the request context may already be cancelled once the response is written
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.timeout)
	defer cancel()

	return e.publisher.Publish(pubCtx, event.Type, body, "application/json")
}
