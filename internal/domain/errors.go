package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for classification - use with errors.Is()
var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
)

// BackendError is a well-formed rejection from the backend: the request
// reached the server and came back with a non-2xx status and a message.
type BackendError struct {
	Status  int    // HTTP status returned by the backend
	Message string // Human-readable message from the response body
}

// Error implements the error interface
func (e *BackendError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.Status)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Message)
}

// Is allows errors.Is() to match backend statuses against the sentinels
func (e *BackendError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	}
	return false
}

// TransportError means the call never produced a usable backend response:
// connection failure, timeout, cancellation, or an unreadable body.
type TransportError struct {
	Op  string // Method and path of the failed call, e.g. "POST /messages/"
	Err error  // Underlying cause
}

// Error implements the error interface
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap exposes the cause so errors.Is() can see context.Canceled and friends
func (e *TransportError) Unwrap() error {
	return e.Err
}
