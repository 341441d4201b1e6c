package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/ticketing-engine/internal/clock"
	"github.com/iliyamo/ticketing-engine/internal/model"
	"github.com/iliyamo/ticketing-engine/internal/queue"
	"github.com/iliyamo/ticketing-engine/internal/store"
)

// fakeCatalog serves fixture rows: screening 1 plays in hall 1, which has
// four active seats (ids 1..4) and one inactive seat (id 5).
type fakeCatalog struct{}

func (fakeCatalog) ScreeningDetail(_ context.Context, screeningID uint64) (*ScreeningDetail, error) {
	if screeningID != 1 {
		return nil, ErrScreeningNotFound
	}
	return &ScreeningDetail{
		Screening: model.Screening{ID: 1, MovieID: 1, HallID: 1, StartsAt: time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC), PriceCents: 1200, IsActive: true},
		Movie:     model.Movie{ID: 1, Title: "The Long Night"},
		Hall:      model.Hall{ID: 1, VenueID: 1, Name: "Screen 1", TotalRows: 2, SeatsPerRow: 2},
		Venue:     model.Venue{ID: 1, Name: "Grand Cinema"},
	}, nil
}

func (fakeCatalog) Seat(_ context.Context, hallID, seatID uint64) (*model.Seat, error) {
	if hallID != 1 || seatID == 0 || seatID > 4 {
		return nil, ErrSeatNotFound
	}
	rows := []string{"A", "A", "B", "B"}
	return &model.Seat{ID: seatID, HallID: 1, Row: rows[seatID-1], Number: uint32((seatID-1)%2 + 1), SeatType: model.SeatRegular, IsActive: true}, nil
}

func (fakeCatalog) SeatsByHall(_ context.Context, hallID uint64) ([]model.Seat, error) {
	if hallID != 1 {
		return nil, ErrSeatNotFound
	}
	return []model.Seat{
		{ID: 1, HallID: 1, Row: "A", Number: 1, SeatType: model.SeatRegular, IsActive: true},
		{ID: 2, HallID: 1, Row: "A", Number: 2, SeatType: model.SeatRegular, IsActive: true},
		{ID: 3, HallID: 1, Row: "B", Number: 1, SeatType: model.SeatRegular, IsActive: true},
		{ID: 4, HallID: 1, Row: "B", Number: 2, SeatType: model.SeatRegular, IsActive: true},
	}, nil
}

// recordingPublisher captures seat events for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.SeatEvent
}

func (p *recordingPublisher) PublishSeatEvent(_ context.Context, ev queue.SeatEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) byType(t string) []queue.SeatEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []queue.SeatEvent
	for _, ev := range p.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

func newTestService(t *testing.T) (*ReservationService, *clock.Fake, *recordingPublisher) {
	t.Helper()
	clk := clock.NewFake(time.Date(2026, 5, 1, 17, 0, 0, 0, time.UTC))
	pub := &recordingPublisher{}
	svc := NewReservationService(store.NewMemory(), fakeCatalog{}, clk, WithEvents(pub))
	return svc, clk, pub
}

func uptr(v uint64) *uint64 { return &v }

func TestAcquireHold(t *testing.T) {
	svc, clk, pub := newTestService(t)
	ctx := context.Background()

	hold, err := svc.AcquireHold(ctx, 1, 1, uptr(42), 5*time.Minute)
	require.NoError(t, err)
	assert.NotZero(t, hold.BookingID)
	assert.Equal(t, clk.Now().Add(5*time.Minute), hold.ExpiresAt)

	held := pub.byType(queue.EventSeatHeld)
	require.Len(t, held, 1)
	assert.Equal(t, "A1", held[0].SeatLabel)

	sm, err := svc.ResolveHall(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, model.SeatHeld, statusOf(t, sm, 1))
	assert.Equal(t, model.SeatAvailable, statusOf(t, sm, 2))
}

func TestAcquireHoldConflicts(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AcquireHold(ctx, 1, 1, uptr(1), 5*time.Minute)
	require.NoError(t, err)

	// A live hold blocks everyone, including its own holder.
	_, err = svc.AcquireHold(ctx, 1, 1, uptr(2), 5*time.Minute)
	assert.ErrorIs(t, err, ErrAlreadyHeld)
	_, err = svc.AcquireHold(ctx, 1, 1, uptr(1), 5*time.Minute)
	assert.ErrorIs(t, err, ErrAlreadyHeld)

	// A confirmed seat reports the permanent error instead.
	_, err = svc.Confirm(ctx, 1, 1, uptr(1))
	require.NoError(t, err)
	_, err = svc.AcquireHold(ctx, 1, 1, uptr(2), 5*time.Minute)
	assert.ErrorIs(t, err, ErrAlreadyBooked)
}

func TestAcquireHoldOverridesExpired(t *testing.T) {
	svc, clk, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AcquireHold(ctx, 1, 2, uptr(1), 5*time.Minute)
	require.NoError(t, err)

	clk.Advance(6 * time.Minute)

	// The expired hold no longer protects the seat, whoever owned it.
	hold, err := svc.AcquireHold(ctx, 1, 2, uptr(2), 5*time.Minute)
	require.NoError(t, err)
	require.NotNil(t, hold.HolderID)
	assert.Equal(t, uint64(2), *hold.HolderID)
}

// delayedStore advances time before entering the critical section,
// standing in for a caller that spent the interval queued on the row lock.
type delayedStore struct {
	store.Store
	before func()
}

func (d *delayedStore) Mutate(ctx context.Context, screeningID, seatID uint64, fn func(m store.Mutator) error) error {
	d.before()
	return d.Store.Mutate(ctx, screeningID, seatID, fn)
}

// TestHoldLapsesDuringLockWait pins that status derivation happens at
// lock-held time: a hold that expires while the caller waits for the row
// lock no longer blocks it.
func TestHoldLapsesDuringLockWait(t *testing.T) {
	clk := clock.NewFake(time.Date(2026, 5, 1, 17, 0, 0, 0, time.UTC))
	mem := store.NewMemory()
	ctx := context.Background()

	svc := NewReservationService(mem, fakeCatalog{}, clk)
	_, err := svc.AcquireHold(ctx, 1, 1, uptr(1), 5*time.Minute)
	require.NoError(t, err)
	_, err = svc.AcquireHold(ctx, 1, 2, uptr(1), 5*time.Minute)
	require.NoError(t, err)

	waiting := NewReservationService(
		&delayedStore{Store: mem, before: func() { clk.Advance(6 * time.Minute) }},
		fakeCatalog{}, clk)

	hold, err := waiting.AcquireHold(ctx, 1, 1, uptr(2), 5*time.Minute)
	require.NoError(t, err)
	require.NotNil(t, hold.HolderID)
	assert.Equal(t, uint64(2), *hold.HolderID)
	assert.Equal(t, clk.Now().Add(5*time.Minute), hold.ExpiresAt)

	_, err = waiting.Confirm(ctx, 1, 2, uptr(2))
	assert.NoError(t, err)
}

func TestAcquireHoldValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AcquireHold(ctx, 99, 1, nil, time.Minute)
	assert.ErrorIs(t, err, ErrScreeningNotFound)

	_, err = svc.AcquireHold(ctx, 1, 99, nil, time.Minute)
	assert.ErrorIs(t, err, ErrSeatNotFound)

	_, err = svc.AcquireHold(ctx, 0, 1, nil, time.Minute)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.AcquireHold(ctx, 1, 1, nil, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestConfirmOwnHold(t *testing.T) {
	svc, _, pub := newTestService(t)
	ctx := context.Background()

	_, err := svc.AcquireHold(ctx, 1, 1, uptr(7), 5*time.Minute)
	require.NoError(t, err)

	conf, err := svc.Confirm(ctx, 1, 1, uptr(7))
	require.NoError(t, err)
	assert.NotEmpty(t, conf.Reference)

	booked := pub.byType(queue.EventSeatBooked)
	require.Len(t, booked, 1)
	assert.Equal(t, conf.Reference, booked[0].Reference)

	// Confirmation is terminal.
	_, err = svc.Confirm(ctx, 1, 1, uptr(7))
	assert.ErrorIs(t, err, ErrAlreadyBooked)
}

func TestConfirmHolderPolicy(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	// A named live hold is convertible only by its holder.
	_, err := svc.AcquireHold(ctx, 1, 1, uptr(7), 5*time.Minute)
	require.NoError(t, err)
	_, err = svc.Confirm(ctx, 1, 1, uptr(8))
	assert.ErrorIs(t, err, ErrAlreadyHeld)
	_, err = svc.Confirm(ctx, 1, 1, nil)
	assert.ErrorIs(t, err, ErrAlreadyHeld)

	// An anonymous live hold is convertible by anyone.
	_, err = svc.AcquireHold(ctx, 1, 2, nil, 5*time.Minute)
	require.NoError(t, err)
	_, err = svc.Confirm(ctx, 1, 2, uptr(9))
	assert.NoError(t, err)
}

func TestConfirmWithoutHold(t *testing.T) {
	svc, _, _ := newTestService(t)

	// Direct purchase of an available seat needs no prior hold.
	conf, err := svc.Confirm(context.Background(), 1, 3, uptr(5))
	require.NoError(t, err)
	assert.NotEmpty(t, conf.Reference)
}

func TestConfirmAfterHoldExpiry(t *testing.T) {
	svc, clk, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AcquireHold(ctx, 1, 1, uptr(1), 5*time.Minute)
	require.NoError(t, err)
	clk.Advance(10 * time.Minute)

	// The lapsed hold grants no priority; the seat is open to anyone.
	_, err = svc.Confirm(ctx, 1, 1, uptr(2))
	assert.NoError(t, err)
}

func TestRelease(t *testing.T) {
	svc, _, pub := newTestService(t)
	ctx := context.Background()

	_, err := svc.AcquireHold(ctx, 1, 1, uptr(1), 5*time.Minute)
	require.NoError(t, err)

	require.NoError(t, svc.Release(ctx, 1, 1))
	assert.Len(t, pub.byType(queue.EventSeatReleased), 1)

	// Idempotent: releasing again succeeds and publishes nothing new.
	require.NoError(t, svc.Release(ctx, 1, 1))
	assert.Len(t, pub.byType(queue.EventSeatReleased), 1)

	// The seat is immediately reusable.
	_, err = svc.AcquireHold(ctx, 1, 1, uptr(2), 5*time.Minute)
	assert.NoError(t, err)
}

func TestReleaseNeverTouchesConfirmed(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Confirm(ctx, 1, 1, uptr(1))
	require.NoError(t, err)

	require.NoError(t, svc.Release(ctx, 1, 1))

	sm, err := svc.ResolveHall(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, model.SeatConfirmed, statusOf(t, sm, 1))
}

func TestResolveHall(t *testing.T) {
	svc, clk, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AcquireHold(ctx, 1, 1, uptr(1), 5*time.Minute)
	require.NoError(t, err)
	_, err = svc.Confirm(ctx, 1, 2, uptr(2))
	require.NoError(t, err)
	_, err = svc.AcquireHold(ctx, 1, 3, uptr(3), 5*time.Minute)
	require.NoError(t, err)
	clk.Advance(6 * time.Minute)
	_, err = svc.AcquireHold(ctx, 1, 4, uptr(4), 5*time.Minute)
	require.NoError(t, err)

	sm, err := svc.ResolveHall(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "The Long Night", sm.MovieTitle)
	assert.Equal(t, "Screen 1", sm.HallName)
	assert.Equal(t, "Grand Cinema", sm.VenueName)
	require.Len(t, sm.Seats, 4)

	// Seats 1 and 3 lapsed when the clock advanced; 4 is still live.
	assert.Equal(t, model.SeatAvailable, statusOf(t, sm, 1))
	assert.Equal(t, model.SeatConfirmed, statusOf(t, sm, 2))
	assert.Equal(t, model.SeatAvailable, statusOf(t, sm, 3))
	assert.Equal(t, model.SeatHeld, statusOf(t, sm, 4))

	_, err = svc.ResolveHall(ctx, 99)
	assert.ErrorIs(t, err, ErrScreeningNotFound)
}

// TestConcurrentHolds races many goroutines for one seat: exactly one
// must win and every loser must see the transient conflict error.
func TestConcurrentHolds(t *testing.T) {
	svc, _, pub := newTestService(t)
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	results := make(chan error, n)
	for i := 0; i < n; i++ {
		holder := uint64(i + 1)
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AcquireHold(ctx, 1, 1, &holder, 5*time.Minute)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var won, lost int
	for err := range results {
		switch {
		case err == nil:
			won++
		default:
			assert.ErrorIs(t, err, ErrAlreadyHeld)
			lost++
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, n-1, lost)
	assert.Len(t, pub.byType(queue.EventSeatHeld), 1)
}

// TestConcurrentConfirms races direct purchases of one available seat.
func TestConcurrentConfirms(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	const n = 5
	var wg sync.WaitGroup
	results := make(chan error, n)
	for i := 0; i < n; i++ {
		holder := uint64(i + 1)
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Confirm(ctx, 1, 1, &holder)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var won, lost int
	for err := range results {
		switch {
		case err == nil:
			won++
		default:
			assert.ErrorIs(t, err, ErrAlreadyBooked)
			lost++
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, n-1, lost)
}

func statusOf(t *testing.T, sm *SeatMap, seatID uint64) model.SeatStatus {
	t.Helper()
	for _, e := range sm.Seats {
		if e.SeatID == seatID {
			return e.Status
		}
	}
	t.Fatalf("seat %d not in seat map", seatID)
	return ""
}
