package service

import "errors"

// Sentinel errors returned by the reservation service. Handlers translate
// them into HTTP status codes; callers distinguish permanent failures
// (not-found, already booked) from transient ones (already held, which
// clears when the hold expires or is released).
var (
	// ErrScreeningNotFound: the screening id does not exist or is inactive.
	ErrScreeningNotFound = errors.New("screening not found")

	// ErrSeatNotFound: the seat id does not exist, is inactive, or does not
	// belong to the screening's hall.
	ErrSeatNotFound = errors.New("seat not found")

	// ErrAlreadyBooked: the seat has a confirmed booking. Permanent for
	// this (screening, seat) pair.
	ErrAlreadyBooked = errors.New("seat is already booked")

	// ErrAlreadyHeld: the seat is under another party's live hold. The
	// caller may retry after the hold's TTL.
	ErrAlreadyHeld = errors.New("seat is held by another user")

	// ErrInvalidInput: a malformed request (zero identifiers, non-positive
	// TTL). The caller must fix the input; retrying is pointless.
	ErrInvalidInput = errors.New("invalid input")
)
