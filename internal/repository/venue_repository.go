package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/ticketing-engine/internal/model"
)

// VenueRepo manages persistence for venues.
type VenueRepo struct {
	db *sql.DB
}

// NewVenueRepo constructs a VenueRepo with the given DB handle.
func NewVenueRepo(db *sql.DB) *VenueRepo { return &VenueRepo{db: db} }

// Create inserts a venue and populates its generated ID and creation
// timestamp.
func (r *VenueRepo) Create(ctx context.Context, v *model.Venue) error {
	const q = `INSERT INTO venues (name, address, city) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, v.Name, v.Address, v.City)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	v.ID = uint64(id)
	const sel = `SELECT created_at FROM venues WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, v.ID).Scan(&v.CreatedAt)
}

// GetByID retrieves a venue by ID, returning ErrVenueNotFound when absent.
func (r *VenueRepo) GetByID(ctx context.Context, id uint64) (*model.Venue, error) {
	const q = `SELECT id, name, address, city, created_at FROM venues WHERE id = ?`
	var v model.Venue
	err := r.db.QueryRowContext(ctx, q, id).Scan(&v.ID, &v.Name, &v.Address, &v.City, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVenueNotFound
		}
		return nil, err
	}
	return &v, nil
}

// ListAll returns every venue ordered by name.
func (r *VenueRepo) ListAll(ctx context.Context) ([]model.Venue, error) {
	const q = `SELECT id, name, address, city, created_at FROM venues ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Venue
	for rows.Next() {
		var v model.Venue
		if err := rows.Scan(&v.ID, &v.Name, &v.Address, &v.City, &v.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
