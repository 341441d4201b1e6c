package model

import "time"

// HallType classifies a screen. The set is closed; unknown values are
// rejected at the validation boundary.
type HallType string

const (
	HallRegular HallType = "REGULAR"
	HallPremium HallType = "PREMIUM"
	HallIMAX    HallType = "IMAX"
	Hall4DX     HallType = "4DX"
)

// Valid reports whether t is one of the known hall types.
func (t HallType) Valid() bool {
	switch t {
	case HallRegular, HallPremium, HallIMAX, Hall4DX:
		return true
	}
	return false
}

// Hall is an individual screen/room within a venue. TotalRows and
// SeatsPerRow describe the nominal grid; the authoritative roster is the
// seats table.
type Hall struct {
	ID          uint64    // halls.id
	VenueID     uint64    // halls.venue_id
	Name        string    // halls.name, unique per venue
	HallType    HallType  // halls.hall_type
	TotalRows   uint32    // halls.total_rows
	SeatsPerRow uint32    // halls.seats_per_row
	CreatedAt   time.Time // halls.created_at
}
