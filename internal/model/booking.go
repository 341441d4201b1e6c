package model

import "time"

// Phase is the stored state of a booking row. The set is closed: a row is
// either a timed hold, a permanent confirmation, or a released leftover.
// Seat availability is never read from this field directly; use
// EffectiveStatus, which folds in hold expiry.
type Phase string

const (
	PhaseHeld      Phase = "HELD"
	PhaseConfirmed Phase = "CONFIRMED"
	PhaseReleased  Phase = "RELEASED"
)

// Valid reports whether p is one of the known phases.
func (p Phase) Valid() bool {
	switch p {
	case PhaseHeld, PhaseConfirmed, PhaseReleased:
		return true
	}
	return false
}

// SeatStatus is the externally visible status of a seat for one screening,
// derived from the booking row (or its absence) and the current time.
type SeatStatus string

const (
	SeatAvailable SeatStatus = "AVAILABLE"
	SeatHeld      SeatStatus = "HELD"
	SeatConfirmed SeatStatus = "CONFIRMED"
)

// Booking is the single stateful record of the reservation core. At most
// one row exists per (ScreeningID, SeatID) pair; the pair is the unique
// storage key. HolderID is nil for anonymous holds. HoldExpiresAt is
// meaningful only while Phase is PhaseHeld; a nil value on a held row is
// treated as already expired.
type Booking struct {
	ID            uint64     // bookings.id
	ScreeningID   uint64     // bookings.screening_id
	SeatID        uint64     // bookings.seat_id
	HolderID      *uint64    // bookings.holder_id, nullable
	Phase         Phase      // bookings.phase
	Reference     string     // bookings.reference, set on confirmation
	HoldExpiresAt *time.Time // bookings.hold_expires_at, nullable
	CreatedAt     time.Time  // bookings.created_at
	UpdatedAt     time.Time  // bookings.updated_at
}

// HoldExpired reports whether a held row's lock has lapsed at the given
// instant. A missing expiry is treated as expired, so a row that was
// written without one can never block a seat forever.
func (b *Booking) HoldExpired(now time.Time) bool {
	if b.Phase != PhaseHeld {
		return false
	}
	if b.HoldExpiresAt == nil {
		return true
	}
	return !b.HoldExpiresAt.After(now)
}

// EffectiveStatus derives the visible status of a seat from its booking
// row and the current time. It is the single source of truth for "is this
// seat free": single-seat mutation paths and the bulk seat-map pass both
// call it, so expiry is applied lazily and uniformly with no background
// sweeper.
//
//	no row, RELEASED, or expired hold  -> AVAILABLE
//	CONFIRMED                          -> CONFIRMED
//	live hold                          -> HELD
func EffectiveStatus(b *Booking, now time.Time) SeatStatus {
	if b == nil {
		return SeatAvailable
	}
	switch b.Phase {
	case PhaseConfirmed:
		return SeatConfirmed
	case PhaseHeld:
		if b.HoldExpired(now) {
			return SeatAvailable
		}
		return SeatHeld
	default:
		return SeatAvailable
	}
}
