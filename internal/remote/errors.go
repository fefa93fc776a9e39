package remote

import (
	"errors"
	"fmt"
	"net/http"
)

// ServiceError is any failure talking to the remote service: transport,
// non-2xx status, an error payload or an unreadable reply.
type ServiceError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *ServiceError) Error() string {
	msg := "remote service: " + e.Op
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + truncate(e.Message, 200)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Retryable reports whether the failure is transient. Nothing in this module
// retries, but callers such as the HTTP API surface the hint.
func (e *ServiceError) Retryable() bool {
	if e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500 {
		return true
	}
	return e.Op == "send"
}

// IsServiceError reports whether err wraps a *ServiceError.
func IsServiceError(err error) bool {
	var se *ServiceError
	return errors.As(err, &se)
}
