package fixer

import (
	"errors"
	"fmt"
)

var (
	// ErrRateLimited indicates the reasoning service signalled an over-quota
	// condition. It is the only transient kind and is retried.
	ErrRateLimited = errors.New("rate limited")

	// ErrService indicates a non-rate-limit failure from the reasoning service.
	ErrService = errors.New("reasoning service error")

	// ErrMalformedInput indicates a request that cannot be sent as built.
	ErrMalformedInput = errors.New("malformed fix request")

	// ErrFixRequestFailed wraps every terminal orchestrator failure.
	ErrFixRequestFailed = errors.New("fix request failed")
)

// ErrorKind classifies a failed service call.
type ErrorKind int

const (
	KindService ErrorKind = iota
	KindRateLimited
	KindMalformedInput
)

func (k ErrorKind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindMalformedInput:
		return "malformed_input"
	default:
		return "service_error"
	}
}

// ServiceError is returned by Service adapters, which classify provider
// failures at the call boundary.
type ServiceError struct {
	Kind       ErrorKind
	StatusCode int // Provider status code when known, 0 otherwise
	Err        error
}

// NewServiceError builds a classified service error.
func NewServiceError(kind ErrorKind, statusCode int, err error) *ServiceError {
	return &ServiceError{Kind: kind, StatusCode: statusCode, Err: err}
}

func (e *ServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d): %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *ServiceError) Is(target error) bool {
	switch target {
	case ErrRateLimited:
		return e.Kind == KindRateLimited
	case ErrMalformedInput:
		return e.Kind == KindMalformedInput
	case ErrService:
		return e.Kind == KindService
	}
	return false
}

// Classify returns the kind carried by err. Unclassified errors are
// service errors.
func Classify(err error) ErrorKind {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Kind
	}
	if errors.Is(err, ErrMalformedInput) {
		return KindMalformedInput
	}
	return KindService
}

// Retryable reports whether a failure of kind should be retried.
func Retryable(kind ErrorKind) bool {
	return kind == KindRateLimited
}

// RequestError is the terminal failure of RequestFix. It matches both
// ErrFixRequestFailed and the underlying cause with errors.Is.
type RequestError struct {
	Attempts int
	Kind     ErrorKind
	Err      error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("fix request failed after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *RequestError) Unwrap() []error {
	return []error{ErrFixRequestFailed, e.Err}
}
