package domain

import "time"

// EventMessage is a job lifecycle event taken off the queue
type EventMessage struct {
	Type       string    `json:"type"`
	JobID      string    `json:"job_id"`
	Status     string    `json:"status,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`

	DeliveryTag uint64 `json:"-"`
	Redelivered bool   `json:"-"`
}

// JobSummary is the slice of a job row a moderator needs to act on it
type JobSummary struct {
	ID        string    `db:"id"`
	Title     string    `db:"title"`
	Company   string    `db:"company"`
	Location  string    `db:"location"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
}

// Notification is what the notifier sends for one event
type Notification struct {
	Event      string
	Job        JobSummary
	OccurredAt time.Time
}
