package models

import "errors"

// Domain errors shared by the services and the store. Callers match them
// with errors.Is; wrapped messages carry the user-facing detail.
var (
	// ErrValidation marks a malformed request (missing date, bad time,
	// non-positive duration, off-grid start).
	ErrValidation = errors.New("invalid request")

	// ErrPolicyDenied marks an advance-notice or cancellation-deadline
	// violation.
	ErrPolicyDenied = errors.New("policy denied")

	// ErrConflict means the slot was lost to a concurrent booking at
	// commit time. The caller must re-query slots; the engine never
	// retries against a different slot.
	ErrConflict = errors.New("slot already booked")

	// ErrNotFound marks an unknown booking, provider or resource.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState marks a status transition that is not allowed,
	// e.g. cancelling an already cancelled booking.
	ErrInvalidState = errors.New("invalid booking state")

	// ErrStoreUnavailable marks a transient store failure; the caller
	// should surface a retry-later prompt.
	ErrStoreUnavailable = errors.New("store unavailable")
)
