package services

import "errors"

// Core error taxonomy. Handlers map these to HTTP status codes with
// errors.Is; the core never masks a failed precondition as success.
var (
	// ErrInvalidInput marks malformed or out-of-range arguments.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound marks an unknown entity, or one hidden from a non-owner.
	ErrNotFound = errors.New("not found")

	// ErrForbidden marks a failed role or ownership check.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict marks an already-paid order, duplicate feedback, or a
	// detected concurrent-update race.
	ErrConflict = errors.New("conflict")

	// ErrInvalidTransition marks a status change outside the lifecycle table.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidState marks an operation applied to a booking in the wrong
	// state, e.g. deleting a non-completed booking.
	ErrInvalidState = errors.New("invalid booking state")

	// ErrExternalService marks a payment gateway failure.
	ErrExternalService = errors.New("external service error")

	// ErrInternal marks crypto or configuration faults.
	ErrInternal = errors.New("internal error")
)
