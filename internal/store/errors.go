package store

import "errors"

// Validation failures, reported before any write reaches the store.
var (
	ErrBadDate              = errors.New("pickup and return must be valid calendar dates")
	ErrPastPickup           = errors.New("pickup date cannot be in the past")
	ErrReturnNotAfterPickup = errors.New("return date must be after pickup date")
	ErrUnknownCar           = errors.New("unknown car id")
)

// ErrAuthRequired is returned when a booking request arrives without a
// resolved user id. The caller holds the request, completes authentication
// and resubmits; the core never retries on its own.
var ErrAuthRequired = errors.New("authentication required to create a booking")

// ErrInvalidTransition rejects a status change outside the allowed graph.
// The booking is left untouched.
var ErrInvalidTransition = errors.New("booking status transition not allowed")

// Persistence failures. Permission problems get their own sentinel so the
// surface can report an access-policy misconfiguration instead of a generic
// store failure; malformed records are caught when documents are read back.
var (
	ErrNotFound         = errors.New("booking not found")
	ErrPermissionDenied = errors.New("permission denied: store access policy does not allow this operation")
	ErrMalformedRecord  = errors.New("malformed booking record in store")
)
