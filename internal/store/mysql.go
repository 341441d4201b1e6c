package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/ticketing-engine/internal/model"
)

// MySQL implements Store on top of a bookings table with a unique key on
// (screening_id, seat_id). Row-level serialization comes from InnoDB:
// SELECT ... FOR UPDATE blocks competing transactions on the same key
// until commit or rollback. Every transaction is pinned to REPEATABLE
// READ regardless of the server default: at that level the locking read
// on an absent row takes a gap lock on the unique key, so two
// transactions racing to insert the first row deadlock and InnoDB aborts
// one instead of letting it overwrite the winner. The aborted side (and
// a timed-out lock wait) surfaces as ErrContention, a transient conflict
// the caller may retry.
type MySQL struct {
	db *sql.DB
}

// NewMySQL returns a MySQL store bound to the provided database handle.
func NewMySQL(db *sql.DB) *MySQL { return &MySQL{db: db} }

const bookingColumns = `id, screening_id, seat_id, holder_id, phase, reference, hold_expires_at, created_at, updated_at`

// txOptions pins the isolation level the gap-locking behaviour depends
// on. Relying on the session default would silently break the no-row
// insert race on servers configured for READ COMMITTED.
var txOptions = sql.TxOptions{Isolation: sql.LevelRepeatableRead}

// Mutate implements Store. Lock waits are bounded by the server's
// innodb_lock_wait_timeout; a timed-out wait or a deadlock abort rolls
// back, leaves storage unchanged and is reported as ErrContention.
func (s *MySQL) Mutate(ctx context.Context, screeningID, seatID uint64, fn func(m Mutator) error) error {
	tx, err := s.db.BeginTx(ctx, &txOptions)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	cur, err := lockRow(ctx, tx, screeningID, seatID)
	if err != nil {
		return contentionOr(err)
	}

	m := &mysqlMutator{ctx: ctx, tx: tx, screeningID: screeningID, seatID: seatID, cur: cur}
	if err := fn(m); err != nil {
		return contentionOr(err)
	}
	if err := tx.Commit(); err != nil {
		return contentionOr(err)
	}
	committed = true
	return nil
}

// MySQL server error numbers for a lock wait timeout and a deadlock
// abort. Both mean another transaction held the key; neither says
// anything about the seat's state.
const (
	erLockWaitTimeout = 1205
	erLockDeadlock    = 1213
)

// contentionOr folds the two lock-conflict driver errors into
// ErrContention and passes every other error through unchanged.
func contentionOr(err error) error {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case erLockWaitTimeout, erLockDeadlock:
			return ErrContention
		}
	}
	return err
}

// lockRow acquires the exclusive lock on the key's row and returns it, or
// nil when the row does not exist.
func lockRow(ctx context.Context, tx *sql.Tx, screeningID, seatID uint64) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE screening_id = ? AND seat_id = ? FOR UPDATE`
	b, err := scanBooking(tx.QueryRowContext(ctx, q, screeningID, seatID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ListByScreening implements Store with one plain (non-locking) query.
func (s *MySQL) ListByScreening(ctx context.Context, screeningID uint64) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE screening_id = ?`
	rows, err := s.db.QueryContext(ctx, q, screeningID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBooking(row scanner) (*model.Booking, error) {
	var (
		b      model.Booking
		holder sql.NullInt64
		ref    sql.NullString
		exp    sql.NullTime
	)
	if err := row.Scan(&b.ID, &b.ScreeningID, &b.SeatID, &holder, &b.Phase, &ref, &exp, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	if holder.Valid {
		v := uint64(holder.Int64)
		b.HolderID = &v
	}
	if ref.Valid {
		b.Reference = ref.String
	}
	if exp.Valid {
		t := exp.Time
		b.HoldExpiresAt = &t
	}
	return &b, nil
}

type mysqlMutator struct {
	ctx         context.Context
	tx          *sql.Tx
	screeningID uint64
	seatID      uint64
	cur         *model.Booking
}

func (m *mysqlMutator) Current() *model.Booking { return m.cur }

func (m *mysqlMutator) Upsert(b *model.Booking) error {
	const q = `INSERT INTO bookings (screening_id, seat_id, holder_id, phase, reference, hold_expires_at)
	           VALUES (?, ?, ?, ?, ?, ?)
	           ON DUPLICATE KEY UPDATE
	               holder_id = VALUES(holder_id),
	               phase = VALUES(phase),
	               reference = VALUES(reference),
	               hold_expires_at = VALUES(hold_expires_at)`
	var holder any
	if b.HolderID != nil {
		holder = *b.HolderID
	}
	var ref any
	if b.Reference != "" {
		ref = b.Reference
	}
	var exp any
	if b.HoldExpiresAt != nil {
		exp = b.HoldExpiresAt.UTC()
	}
	if _, err := m.tx.ExecContext(m.ctx, q, m.screeningID, m.seatID, holder, b.Phase, ref, exp); err != nil {
		return err
	}
	// Re-read under the same lock to populate the id and DB-managed
	// timestamps on the caller's struct.
	const sel = `SELECT ` + bookingColumns + ` FROM bookings WHERE screening_id = ? AND seat_id = ?`
	fresh, err := scanBooking(m.tx.QueryRowContext(m.ctx, sel, m.screeningID, m.seatID))
	if err != nil {
		return err
	}
	*b = *fresh
	m.cur = fresh
	return nil
}

func (m *mysqlMutator) Delete() error {
	const q = `DELETE FROM bookings WHERE screening_id = ? AND seat_id = ?`
	if _, err := m.tx.ExecContext(m.ctx, q, m.screeningID, m.seatID); err != nil {
		return err
	}
	m.cur = nil
	return nil
}
