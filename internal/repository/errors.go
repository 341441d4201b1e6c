// Package repository contains data access for the catalog entities:
// venues, halls, seats, movies and screenings. Each repository owns a
// *sql.DB handle and exposes sentinel not-found errors so handlers and
// the service layer can distinguish missing rows from storage failures.
package repository

import "errors"

var (
	// ErrVenueNotFound indicates the venue row does not exist.
	ErrVenueNotFound = errors.New("venue not found")

	// ErrHallNotFound indicates the hall row does not exist.
	ErrHallNotFound = errors.New("hall not found")

	// ErrSeatNotFound indicates the seat row does not exist.
	ErrSeatNotFound = errors.New("seat not found")

	// ErrMovieNotFound indicates the movie row does not exist.
	ErrMovieNotFound = errors.New("movie not found")

	// ErrScreeningNotFound indicates the screening row does not exist.
	ErrScreeningNotFound = errors.New("screening not found")
)
