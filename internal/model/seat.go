package model

import "strconv"

// SeatType classifies a physical seat.
type SeatType string

const (
	SeatRegular    SeatType = "REGULAR"
	SeatPremium    SeatType = "PREMIUM"
	SeatRecliner   SeatType = "RECLINER"
	SeatWheelchair SeatType = "WHEELCHAIR"
)

// Valid reports whether t is one of the known seat types.
func (t SeatType) Valid() bool {
	switch t {
	case SeatRegular, SeatPremium, SeatRecliner, SeatWheelchair:
		return true
	}
	return false
}

// Seat is a physical seat in a hall, addressed by row label and number
// (unique per hall). Inactive seats exist in storage but are excluded from
// seat maps and cannot be held or booked.
type Seat struct {
	ID       uint64   // seats.id
	HallID   uint64   // seats.hall_id
	Row      string   // seats.row_label ("A".."Z", "AA"...)
	Number   uint32   // seats.number, 1-based within the row
	SeatType SeatType // seats.seat_type
	IsActive bool     // seats.is_active
}

// Label renders the human-facing seat name, e.g. "A1".
func (s *Seat) Label() string {
	return s.Row + strconv.FormatUint(uint64(s.Number), 10)
}
