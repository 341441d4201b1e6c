package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/ticketing-engine/internal/model"
)

// HallRepo manages persistence for halls.
type HallRepo struct {
	db *sql.DB
}

// NewHallRepo constructs a HallRepo with the given DB handle.
func NewHallRepo(db *sql.DB) *HallRepo { return &HallRepo{db: db} }

// DB exposes the underlying handle so callers can begin transactions
// spanning multiple repositories (e.g. creating a hall with its seat grid).
func (r *HallRepo) DB() *sql.DB { return r.db }

// CreateTx inserts a hall within the provided transaction and populates
// its generated ID and creation timestamp. The caller commits or rolls back.
func (r *HallRepo) CreateTx(ctx context.Context, tx *sql.Tx, h *model.Hall) error {
	const q = `INSERT INTO halls (venue_id, name, hall_type, total_rows, seats_per_row) VALUES (?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, h.VenueID, h.Name, h.HallType, h.TotalRows, h.SeatsPerRow)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	h.ID = uint64(id)
	const sel = `SELECT created_at FROM halls WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, h.ID).Scan(&h.CreatedAt)
}

// GetByID retrieves a hall by ID, returning ErrHallNotFound when absent.
func (r *HallRepo) GetByID(ctx context.Context, id uint64) (*model.Hall, error) {
	const q = `SELECT id, venue_id, name, hall_type, total_rows, seats_per_row, created_at FROM halls WHERE id = ?`
	var h model.Hall
	err := r.db.QueryRowContext(ctx, q, id).Scan(&h.ID, &h.VenueID, &h.Name, &h.HallType, &h.TotalRows, &h.SeatsPerRow, &h.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHallNotFound
		}
		return nil, err
	}
	return &h, nil
}

// ListByVenue returns a venue's halls ordered by name.
func (r *HallRepo) ListByVenue(ctx context.Context, venueID uint64) ([]model.Hall, error) {
	const q = `SELECT id, venue_id, name, hall_type, total_rows, seats_per_row, created_at
	           FROM halls WHERE venue_id = ? ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, q, venueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Hall
	for rows.Next() {
		var h model.Hall
		if err := rows.Scan(&h.ID, &h.VenueID, &h.Name, &h.HallType, &h.TotalRows, &h.SeatsPerRow, &h.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
