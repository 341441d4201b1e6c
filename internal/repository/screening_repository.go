package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/ticketing-engine/internal/model"
)

// ScreeningRepo manages persistence for screenings.
type ScreeningRepo struct {
	db *sql.DB
}

// NewScreeningRepo constructs a ScreeningRepo with the given DB handle.
func NewScreeningRepo(db *sql.DB) *ScreeningRepo { return &ScreeningRepo{db: db} }

// Create inserts a screening and populates its generated ID and creation
// timestamp. EndsAt must already be derived from the movie duration.
func (r *ScreeningRepo) Create(ctx context.Context, s *model.Screening) error {
	const q = `INSERT INTO screenings (movie_id, hall_id, starts_at, ends_at, price_cents, is_active)
	           VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, s.MovieID, s.HallID, s.StartsAt.UTC(), s.EndsAt.UTC(), s.PriceCents, s.IsActive)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	const sel = `SELECT created_at FROM screenings WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, s.ID).Scan(&s.CreatedAt)
}

// GetByID retrieves a screening by ID, returning ErrScreeningNotFound
// when absent.
func (r *ScreeningRepo) GetByID(ctx context.Context, id uint64) (*model.Screening, error) {
	const q = `SELECT id, movie_id, hall_id, starts_at, ends_at, price_cents, is_active, created_at
	           FROM screenings WHERE id = ?`
	var s model.Screening
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&s.ID, &s.MovieID, &s.HallID, &s.StartsAt, &s.EndsAt, &s.PriceCents, &s.IsActive, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScreeningNotFound
		}
		return nil, err
	}
	return &s, nil
}

// Listing is a screening row joined with the names needed for the public
// browse endpoint, saving the handler three follow-up lookups per row.
type Listing struct {
	ScreeningID uint64
	MovieTitle  string
	PosterURL   string
	HallName    string
	VenueName   string
	StartsAt    time.Time
	PriceCents  uint32
}

// ListUpcoming returns active screenings starting at or after the given
// instant, joined with movie, hall and venue names, ordered by start time.
func (r *ScreeningRepo) ListUpcoming(ctx context.Context, from time.Time) ([]Listing, error) {
	const q = `SELECT s.id, m.title, m.poster_url, h.name, v.name, s.starts_at, s.price_cents
	           FROM screenings s
	           JOIN movies m ON m.id = s.movie_id
	           JOIN halls h ON h.id = s.hall_id
	           JOIN venues v ON v.id = h.venue_id
	           WHERE s.is_active = TRUE AND s.starts_at >= ?
	           ORDER BY s.starts_at ASC`
	rows, err := r.db.QueryContext(ctx, q, from.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Listing
	for rows.Next() {
		var l Listing
		var poster sql.NullString
		if err := rows.Scan(&l.ScreeningID, &l.MovieTitle, &poster, &l.HallName, &l.VenueName, &l.StartsAt, &l.PriceCents); err != nil {
			return nil, err
		}
		if poster.Valid {
			l.PosterURL = poster.String
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// FindOverlapping returns screenings in the hall whose schedule overlaps
// [start, end). A screening overlaps when it starts before the proposed
// end and ends after the proposed start.
func (r *ScreeningRepo) FindOverlapping(ctx context.Context, hallID uint64, start, end time.Time) ([]model.Screening, error) {
	const q = `SELECT id, movie_id, hall_id, starts_at, ends_at, price_cents, is_active, created_at
	           FROM screenings
	           WHERE hall_id = ? AND NOT (ends_at <= ? OR starts_at >= ?)`
	rows, err := r.db.QueryContext(ctx, q, hallID, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Screening
	for rows.Next() {
		var s model.Screening
		if err := rows.Scan(&s.ID, &s.MovieID, &s.HallID, &s.StartsAt, &s.EndsAt, &s.PriceCents, &s.IsActive, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
