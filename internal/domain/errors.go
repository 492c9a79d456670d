package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound signals that the requested customer does not exist.
var ErrNotFound = errors.New("customer not found")

// ValidationError carries the full ordered list of field-policy violations
// for a rejected registration. It is always recoverable by correcting input
// and never reaches the store.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// ConflictKind discriminates which storage constraint fired.
type ConflictKind string

const (
	ConflictEmailTaken      ConflictKind = "email_taken"
	ConflictNumberCollision ConflictKind = "number_collision"
)

// ConflictError is raised by the store when a uniqueness constraint fires.
// EmailTaken is terminal for the attempt; NumberCollision may be retried
// once with a freshly generated number.
type ConflictError struct {
	Kind ConflictKind
}

func (e *ConflictError) Error() string {
	switch e.Kind {
	case ConflictEmailTaken:
		return "email already registered"
	case ConflictNumberCollision:
		return "customer number already exists"
	}
	return "duplicate entry"
}

// PreconditionError signals a delete attempted against a customer that still
// has dependent job records.
type PreconditionError struct {
	CustomerID int64
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("customer %d has associated jobs and cannot be deleted", e.CustomerID)
}

// StorageError wraps a backend failure with the operation that hit it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure in %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// NotificationError wraps a welcome-delivery failure. It is surfaced as a
// side-channel warning and never escalated to fail a committed registration.
type NotificationError struct {
	Email string
	Err   error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("failed to notify %s: %v", e.Email, e.Err)
}

func (e *NotificationError) Unwrap() error { return e.Err }
