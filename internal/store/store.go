// Package store persists booking rows and provides the
// exclusive-acquire-then-mutate semantics the reservation core is built
// on. Two implementations exist: MySQL (row locks via SELECT ... FOR
// UPDATE) and an in-memory store used by tests and local development.
package store

import (
	"context"
	"errors"

	"github.com/iliyamo/ticketing-engine/internal/model"
)

// ErrContention reports that a Mutate call lost a lock conflict with a
// concurrent transaction on the same key: a deadlock abort or a lock
// wait timeout. Storage is unchanged and the call may be retried; the
// seat's actual state is unknown until the retry re-derives it.
var ErrContention = errors.New("booking row contention")

// Mutator is the handle a Mutate callback receives once the row for its
// (screening, seat) key is exclusively locked. All reads and writes made
// through it are part of one atomic scope.
type Mutator interface {
	// Current returns the row as it existed when the lock was acquired,
	// or nil when no row exists for the key.
	Current() *model.Booking

	// Upsert creates or overwrites the row for the locked key. On return
	// the booking's ID and audit timestamps are populated.
	Upsert(b *model.Booking) error

	// Delete removes the row for the locked key. Deleting an absent row
	// is a no-op.
	Delete() error
}

// Store is the reservation store. Mutate opens an atomic scope, acquires
// the exclusive lock on the row keyed by (screeningID, seatID), invokes fn
// and commits; any error from fn rolls the whole scope back and is
// returned unchanged. Concurrent Mutate calls on the same key are totally
// serialized; calls on different keys do not block each other.
//
// ListByScreening is a single bulk read of every booking row for a
// screening. It takes no row locks, so it can run alongside in-flight
// mutations and may observe a slightly stale snapshot.
type Store interface {
	Mutate(ctx context.Context, screeningID, seatID uint64, fn func(m Mutator) error) error
	ListByScreening(ctx context.Context, screeningID uint64) ([]model.Booking, error)
}
