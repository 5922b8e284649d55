package catalog

import (
	"errors"
	"fmt"
)

// ErrNotFound matches every *NotFoundError through errors.Is.
var ErrNotFound = errors.New("movie not found")

// NotFoundError is returned when the backend answers 404 for an id.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("movie %s not found", e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// TransportError covers network failures and responses with an unexpected
// status. Status is zero when no response arrived.
type TransportError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("catalog %s: unexpected status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("catalog %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ValidationError is returned when the backend rejects a create or update
// payload (400 or 422).
type ValidationError struct {
	Status  int
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("movie rejected by catalog (status %d)", e.Status)
	}
	return "movie rejected by catalog: " + e.Message
}
