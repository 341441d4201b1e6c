package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/ticketing-engine/internal/model"
)

// MovieRepo manages persistence for movies.
type MovieRepo struct {
	db *sql.DB
}

// NewMovieRepo constructs a MovieRepo with the given DB handle.
func NewMovieRepo(db *sql.DB) *MovieRepo { return &MovieRepo{db: db} }

// Create inserts a movie and populates its generated ID and creation
// timestamp.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
	const q = `INSERT INTO movies (title, description, duration_minutes, genre, rating, poster_url, release_date, is_active)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		m.Title, m.Description, m.DurationMinutes, m.Genre, m.Rating, m.PosterURL,
		m.ReleaseDate.Format("2006-01-02"), m.IsActive)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	const sel = `SELECT created_at FROM movies WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, m.ID).Scan(&m.CreatedAt)
}

// GetByID retrieves a movie by ID, returning ErrMovieNotFound when absent.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (*model.Movie, error) {
	const q = `SELECT id, title, description, duration_minutes, genre, rating, poster_url, release_date, is_active, created_at
	           FROM movies WHERE id = ?`
	var m model.Movie
	var poster sql.NullString
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&m.ID, &m.Title, &m.Description, &m.DurationMinutes, &m.Genre, &m.Rating,
		&poster, &m.ReleaseDate, &m.IsActive, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	if poster.Valid {
		m.PosterURL = poster.String
	}
	return &m, nil
}

// ListActive returns active movies, newest release first.
func (r *MovieRepo) ListActive(ctx context.Context) ([]model.Movie, error) {
	const q = `SELECT id, title, description, duration_minutes, genre, rating, poster_url, release_date, is_active, created_at
	           FROM movies WHERE is_active = TRUE ORDER BY release_date DESC, title ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Movie
	for rows.Next() {
		var m model.Movie
		var poster sql.NullString
		if err := rows.Scan(
			&m.ID, &m.Title, &m.Description, &m.DurationMinutes, &m.Genre, &m.Rating,
			&poster, &m.ReleaseDate, &m.IsActive, &m.CreatedAt); err != nil {
			return nil, err
		}
		if poster.Valid {
			m.PosterURL = poster.String
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
