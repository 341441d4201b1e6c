package model

import "time"

// Screening schedules a movie in a hall at a specific time. EndsAt is
// derived from the movie duration when the screening is created.
type Screening struct {
	ID         uint64    // screenings.id
	MovieID    uint64    // screenings.movie_id
	HallID     uint64    // screenings.hall_id
	StartsAt   time.Time // screenings.starts_at (UTC)
	EndsAt     time.Time // screenings.ends_at (UTC)
	PriceCents uint32    // screenings.price_cents, per seat
	IsActive   bool      // screenings.is_active
	CreatedAt  time.Time // screenings.created_at
}
