package model

import "time"

// Venue is a theatre building containing one or more halls.
type Venue struct {
	ID        uint64    // venues.id
	Name      string    // venues.name
	Address   string    // venues.address
	City      string    // venues.city
	CreatedAt time.Time // venues.created_at
}
