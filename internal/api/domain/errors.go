package domain

import (
	"errors"
	"fmt"

	goerrors "github.com/go-errors/errors"
)

var (
	ErrJobNotFound  = errors.New("job not found")
	ErrUnauthorized = errors.New("unauthorized")
)

// Messages returned to clients
const (
	MsgMissingRequiredFields = "Missing required fields"
	MsgInvalidStatus         = "Invalid status"
	MsgInvalidWorkLocation   = "Invalid work_location_type"
	MsgInvalidLanguageLevel  = "Invalid language level"
	MsgInvalidSalary         = "Invalid salary range"
	MsgInvalidBody           = "Invalid request body"
)

type ErrorType string

const (
	ErrTypeNotFound     ErrorType = "NOT_FOUND"
	ErrTypeInvalidInput ErrorType = "INVALID_INPUT"
	ErrTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrTypeInternal     ErrorType = "INTERNAL"
	ErrTypeRateLimit    ErrorType = "RATE_LIMIT"
)

// DomainError carries a client-safe message plus the stack where it was raised
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Stack   []byte
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func (e *DomainError) StackTrace() []byte {
	return e.Stack
}

func New(errType ErrorType, message string, err error) *DomainError {
	var stack []byte
	if err != nil {
		var stackErr *goerrors.Error
		if errors.As(err, &stackErr) {
			stack = stackErr.Stack()
		} else {
			stack = goerrors.Wrap(err, 2).Stack()
		}
	} else {
		stack = goerrors.New(message).Stack()
	}

	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Stack:   stack,
	}
}

func NotFound(message string, err error) *DomainError {
	return New(ErrTypeNotFound, message, err)
}

func InvalidInput(message string) *DomainError {
	return New(ErrTypeInvalidInput, message, nil)
}

func Unauthorized(message string) *DomainError {
	return New(ErrTypeUnauthorized, message, ErrUnauthorized)
}

func Internal(message string, err error) *DomainError {
	return New(ErrTypeInternal, message, err)
}

// IsInvalidInput reports whether err is a validation failure
func IsInvalidInput(err error) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Type == ErrTypeInvalidInput
}
