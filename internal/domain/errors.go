package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrCapacityExceeded  = errors.New("capacity exceeded")
	ErrNotFound          = errors.New("not found")
	ErrNoActiveDispute   = errors.New("no active dispute")
	ErrAlreadyPaid       = errors.New("already paid")
	ErrNotPaid           = errors.New("not paid")
	// ErrStaleWrite is returned by repositories when the stored status no
	// longer matches the status a change was computed from.
	ErrStaleWrite = errors.New("reservation changed concurrently")
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Required returns a ValidationError for an empty mandatory field.
func Required(field string) error {
	return &ValidationError{Field: field, Message: "is required"}
}

type TransitionError struct {
	From   Status
	Action string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid transition: %s not allowed from %s", e.Action, e.From)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

type CapacityError struct {
	RoomTypeID int64
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("capacity exceeded: room type %d is full", e.RoomTypeID)
}

func (e *CapacityError) Unwrap() error { return ErrCapacityExceeded }

type NotFoundError struct {
	Kind string
	ID   any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsClientError reports whether err was caused by the request rather than the system.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrCapacityExceeded) ||
		errors.Is(err, ErrNoActiveDispute) ||
		errors.Is(err, ErrAlreadyPaid) ||
		errors.Is(err, ErrNotPaid) ||
		errors.Is(err, ErrNotFound)
}

// Code returns the stable tag of err used in API bodies and batch results.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrCapacityExceeded):
		return "capacity_exceeded"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrNoActiveDispute):
		return "no_active_dispute"
	case errors.Is(err, ErrAlreadyPaid):
		return "already_paid"
	case errors.Is(err, ErrNotPaid):
		return "not_paid"
	case errors.Is(err, ErrStaleWrite):
		return "conflict"
	default:
		return "internal_error"
	}
}
