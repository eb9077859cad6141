package domain

import "errors"

var (
	// ErrJobNotFound is returned when the event's job no longer exists
	ErrJobNotFound = errors.New("job not found")

	// ErrInvalidMessage is returned when a delivery body is not a job event
	ErrInvalidMessage = errors.New("invalid event message")
)

// RetryableError wraps transient errors that should trigger a requeue
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string {
	return "retryable error: " + e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// NewRetryableError creates a new retryable error
func NewRetryableError(err error) error {
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err, or anything it wraps, is a RetryableError
func IsRetryable(err error) bool {
	var retryable *RetryableError
	return errors.As(err, &retryable)
}
