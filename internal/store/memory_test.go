package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/ticketing-engine/internal/model"
)

func TestMemoryUpsertAndReload(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	expiry := time.Now().Add(5 * time.Minute).UTC()

	b := &model.Booking{Phase: model.PhaseHeld, HoldExpiresAt: &expiry}
	err := s.Mutate(ctx, 1, 7, func(m Mutator) error {
		require.Nil(t, m.Current())
		return m.Upsert(b)
	})
	require.NoError(t, err)
	assert.NotZero(t, b.ID, "generated id must be written back")
	assert.Equal(t, uint64(1), b.ScreeningID)
	assert.Equal(t, uint64(7), b.SeatID)
	assert.False(t, b.CreatedAt.IsZero())

	err = s.Mutate(ctx, 1, 7, func(m Mutator) error {
		cur := m.Current()
		require.NotNil(t, cur)
		assert.Equal(t, b.ID, cur.ID)
		assert.Equal(t, model.PhaseHeld, cur.Phase)
		return nil
	})
	require.NoError(t, err)
}

func TestMemoryErrorRollsBack(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	sentinel := errors.New("rejected")

	err := s.Mutate(ctx, 1, 1, func(m Mutator) error {
		if err := m.Upsert(&model.Booking{Phase: model.PhaseConfirmed}); err != nil {
			return err
		}
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	err = s.Mutate(ctx, 1, 1, func(m Mutator) error {
		assert.Nil(t, m.Current(), "staged write must be discarded on error")
		return nil
	})
	require.NoError(t, err)
}

func TestMemoryUpsertOverwritesKeepsIdentity(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	first := &model.Booking{Phase: model.PhaseHeld}
	require.NoError(t, s.Mutate(ctx, 2, 3, func(m Mutator) error { return m.Upsert(first) }))

	second := &model.Booking{Phase: model.PhaseConfirmed, Reference: "abc"}
	require.NoError(t, s.Mutate(ctx, 2, 3, func(m Mutator) error { return m.Upsert(second) }))

	assert.Equal(t, first.ID, second.ID, "overwrite reuses the row identity")
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
}

func TestMemoryDelete(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	require.NoError(t, s.Mutate(ctx, 5, 5, func(m Mutator) error {
		return m.Upsert(&model.Booking{Phase: model.PhaseHeld})
	}))
	require.NoError(t, s.Mutate(ctx, 5, 5, func(m Mutator) error { return m.Delete() }))

	rows, err := s.ListByScreening(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, rows)

	// Deleting an absent row is a no-op.
	require.NoError(t, s.Mutate(ctx, 5, 5, func(m Mutator) error { return m.Delete() }))
}

func TestMemoryListByScreening(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	for seat := uint64(1); seat <= 3; seat++ {
		seat := seat
		require.NoError(t, s.Mutate(ctx, 9, seat, func(m Mutator) error {
			return m.Upsert(&model.Booking{Phase: model.PhaseHeld})
		}))
	}
	require.NoError(t, s.Mutate(ctx, 10, 1, func(m Mutator) error {
		return m.Upsert(&model.Booking{Phase: model.PhaseConfirmed})
	}))

	rows, err := s.ListByScreening(ctx, 9)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	for _, r := range rows {
		assert.Equal(t, uint64(9), r.ScreeningID)
	}

	// Returned rows are copies; mutating them must not touch the store.
	rows[0].Phase = model.PhaseConfirmed
	again, err := s.ListByScreening(ctx, 9)
	require.NoError(t, err)
	for _, r := range again {
		assert.Equal(t, model.PhaseHeld, r.Phase)
	}
}

func TestMemoryMutateContextCanceled(t *testing.T) {
	s := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Mutate(ctx, 1, 1, func(m Mutator) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)

	_, err = s.ListByScreening(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

// TestMemoryMutateCanceledWhileQueued cancels a caller while it is
// blocked on the key mutex: once the lock frees up, the caller must
// return the cancellation without its callback ever running.
func TestMemoryMutateCanceledWhileQueued(t *testing.T) {
	s := NewMemory()

	holding := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- s.Mutate(context.Background(), 1, 1, func(m Mutator) error {
			close(holding)
			<-release
			return m.Upsert(&model.Booking{Phase: model.PhaseHeld})
		})
	}()
	<-holding

	ctx, cancel := context.WithCancel(context.Background())
	queued := make(chan error, 1)
	go func() {
		queued <- s.Mutate(ctx, 1, 1, func(m Mutator) error {
			t.Error("callback ran for a cancelled caller")
			return nil
		})
	}()

	// Give the second caller a moment to reach the mutex, then cancel it
	// and let the first caller finish.
	time.Sleep(20 * time.Millisecond)
	cancel()
	close(release)

	require.NoError(t, <-done)
	assert.ErrorIs(t, <-queued, context.Canceled)

	rows, err := s.ListByScreening(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, model.PhaseHeld, rows[0].Phase)
}

// TestMemoryMutateSerializes drives N goroutines through Mutate on one
// key, each claiming the row only if no one has. Exactly one may win.
func TestMemoryMutateSerializes(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	errTaken := errors.New("taken")

	const n = 64
	var wg sync.WaitGroup
	wins := make(chan uint64, n)
	for i := 0; i < n; i++ {
		holder := uint64(i + 1)
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Mutate(ctx, 1, 1, func(m Mutator) error {
				if m.Current() != nil {
					return errTaken
				}
				h := holder
				return m.Upsert(&model.Booking{Phase: model.PhaseHeld, HolderID: &h})
			})
			if err == nil {
				wins <- holder
			}
		}()
	}
	wg.Wait()
	close(wins)

	var winners []uint64
	for w := range wins {
		winners = append(winners, w)
	}
	require.Len(t, winners, 1, "exactly one goroutine may claim the row")

	rows, err := s.ListByScreening(ctx, 1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].HolderID)
	assert.Equal(t, winners[0], *rows[0].HolderID)
}
