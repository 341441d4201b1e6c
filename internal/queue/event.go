// Package queue defines the seat lifecycle events exchanged over the
// message broker, the publisher used by the reservation service, and the
// background consumer that turns events into an audit log.
package queue

// SeatEventsQueue is the durable queue carrying seat lifecycle events.
const SeatEventsQueue = "seat.events"

// Event types for SeatEvent.Type.
const (
	EventSeatHeld     = "seat.held"
	EventSeatBooked   = "seat.booked"
	EventSeatReleased = "seat.released"
)

// SeatEvent is published after a reservation mutation commits. It carries
// enough context for downstream consumers to log or notify without
// querying the primary database.
type SeatEvent struct {
	Type        string  `json:"type"`
	BookingID   uint64  `json:"booking_id,omitempty"`
	Reference   string  `json:"reference,omitempty"`
	ScreeningID uint64  `json:"screening_id"`
	SeatID      uint64  `json:"seat_id"`
	SeatLabel   string  `json:"seat,omitempty"`
	HolderID    *uint64 `json:"holder_id,omitempty"`
	ExpiresAt   string  `json:"expires_at,omitempty"` // RFC 3339, holds only
	OccurredAt  string  `json:"occurred_at"`          // RFC 3339
}
