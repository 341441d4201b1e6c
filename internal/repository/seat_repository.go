package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/ticketing-engine/internal/model"
)

// SeatRepo manages persistence for physical seats.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db *sql.DB) *SeatRepo { return &SeatRepo{db: db} }

// CreateBulkTx inserts a hall's seat grid in one statement within the
// provided transaction. Passing an empty slice is a no-op. Generated IDs
// are not populated; callers reload the roster when they need them.
func (r *SeatRepo) CreateBulkTx(ctx context.Context, tx *sql.Tx, seats []model.Seat) error {
	if len(seats) == 0 {
		return nil
	}
	query := `INSERT INTO seats (hall_id, row_label, number, seat_type, is_active) VALUES `
	args := make([]interface{}, 0, len(seats)*5)
	for i, s := range seats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?)"
		args = append(args, s.HallID, s.Row, s.Number, s.SeatType, s.IsActive)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// GetByID retrieves a seat by ID, returning ErrSeatNotFound when absent.
func (r *SeatRepo) GetByID(ctx context.Context, id uint64) (*model.Seat, error) {
	const q = `SELECT id, hall_id, row_label, number, seat_type, is_active FROM seats WHERE id = ?`
	var s model.Seat
	err := r.db.QueryRowContext(ctx, q, id).Scan(&s.ID, &s.HallID, &s.Row, &s.Number, &s.SeatType, &s.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSeatNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ListActiveByHall returns a hall's active seats ordered by row label and
// number, matching the order seat maps are rendered in.
func (r *SeatRepo) ListActiveByHall(ctx context.Context, hallID uint64) ([]model.Seat, error) {
	const q = `SELECT id, hall_id, row_label, number, seat_type, is_active
	           FROM seats WHERE hall_id = ? AND is_active = TRUE
	           ORDER BY row_label ASC, number ASC`
	rows, err := r.db.QueryContext(ctx, q, hallID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Seat
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.ID, &s.HallID, &s.Row, &s.Number, &s.SeatType, &s.IsActive); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
