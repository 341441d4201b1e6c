package service

import (
	"context"
	"errors"

	"github.com/iliyamo/ticketing-engine/internal/model"
	"github.com/iliyamo/ticketing-engine/internal/repository"
)

// ScreeningDetail bundles a screening with the catalog rows needed to
// validate identifiers and render a seat map.
type ScreeningDetail struct {
	Screening model.Screening
	Movie     model.Movie
	Hall      model.Hall
	Venue     model.Venue
}

// Catalog is the read-only collaborator the reservation core uses to
// validate screening/seat identifiers and to fetch the hall roster. The
// production implementation wraps the SQL repositories; tests supply a
// fixture-backed fake.
type Catalog interface {
	// ScreeningDetail resolves an active screening with its movie, hall
	// and venue. Returns ErrScreeningNotFound for unknown or inactive ids.
	ScreeningDetail(ctx context.Context, screeningID uint64) (*ScreeningDetail, error)

	// Seat resolves an active seat within the given hall. Returns
	// ErrSeatNotFound when the seat is unknown, inactive or in another hall.
	Seat(ctx context.Context, hallID, seatID uint64) (*model.Seat, error)

	// SeatsByHall returns the hall's active seats ordered by row and number.
	SeatsByHall(ctx context.Context, hallID uint64) ([]model.Seat, error)
}

// repoCatalog implements Catalog over the repository layer.
type repoCatalog struct {
	screenings *repository.ScreeningRepo
	movies     *repository.MovieRepo
	halls      *repository.HallRepo
	venues     *repository.VenueRepo
	seats      *repository.SeatRepo
}

// NewCatalog builds the production Catalog from catalog repositories.
func NewCatalog(screenings *repository.ScreeningRepo, movies *repository.MovieRepo, halls *repository.HallRepo, venues *repository.VenueRepo, seats *repository.SeatRepo) Catalog {
	return &repoCatalog{screenings: screenings, movies: movies, halls: halls, venues: venues, seats: seats}
}

func (c *repoCatalog) ScreeningDetail(ctx context.Context, screeningID uint64) (*ScreeningDetail, error) {
	s, err := c.screenings.GetByID(ctx, screeningID)
	if err != nil {
		if errors.Is(err, repository.ErrScreeningNotFound) {
			return nil, ErrScreeningNotFound
		}
		return nil, err
	}
	if !s.IsActive {
		return nil, ErrScreeningNotFound
	}
	m, err := c.movies.GetByID(ctx, s.MovieID)
	if err != nil {
		return nil, err
	}
	h, err := c.halls.GetByID(ctx, s.HallID)
	if err != nil {
		return nil, err
	}
	v, err := c.venues.GetByID(ctx, h.VenueID)
	if err != nil {
		return nil, err
	}
	return &ScreeningDetail{Screening: *s, Movie: *m, Hall: *h, Venue: *v}, nil
}

func (c *repoCatalog) Seat(ctx context.Context, hallID, seatID uint64) (*model.Seat, error) {
	seat, err := c.seats.GetByID(ctx, seatID)
	if err != nil {
		if errors.Is(err, repository.ErrSeatNotFound) {
			return nil, ErrSeatNotFound
		}
		return nil, err
	}
	if seat.HallID != hallID || !seat.IsActive {
		return nil, ErrSeatNotFound
	}
	return seat, nil
}

func (c *repoCatalog) SeatsByHall(ctx context.Context, hallID uint64) ([]model.Seat, error) {
	return c.seats.ListActiveByHall(ctx, hallID)
}
