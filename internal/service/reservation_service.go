// Package service implements the reservation concurrency engine: the lock
// acquire, confirmation and release transactions over the booking store,
// and the bulk seat-map resolution used for rendering.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/ticketing-engine/internal/clock"
	"github.com/iliyamo/ticketing-engine/internal/model"
	"github.com/iliyamo/ticketing-engine/internal/queue"
	"github.com/iliyamo/ticketing-engine/internal/store"
)

// DefaultHoldTTL matches the original deployment's five-minute payment
// window. The effective TTL is fixed per deployment via configuration,
// never negotiated per request.
const DefaultHoldTTL = 5 * time.Minute

// EventPublisher receives seat lifecycle events after a mutation commits.
// Publishing failures must not fail the reservation itself.
type EventPublisher interface {
	PublishSeatEvent(ctx context.Context, ev queue.SeatEvent) error
}

// ReservationService orchestrates every mutation of booking rows. All
// check-then-act sequences run inside store.Mutate, so the exclusive row
// lock covers both the status derivation and the write: of N concurrent
// attempts on one (screening, seat) key, exactly one observes AVAILABLE
// and wins; the rest re-derive against the winner's committed row and are
// rejected. There are no internal retries; retry policy belongs to callers.
type ReservationService struct {
	store   store.Store
	catalog Catalog
	clock   clock.Clock
	events  EventPublisher
	log     *zap.Logger
}

// Option configures a ReservationService.
type Option func(*ReservationService)

// WithEvents wires an event publisher for seat lifecycle notifications.
func WithEvents(p EventPublisher) Option {
	return func(s *ReservationService) { s.events = p }
}

// WithLogger sets the structured logger. Defaults to a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *ReservationService) { s.log = log }
}

// NewReservationService constructs the engine. store, catalog and clk must
// be non-nil.
func NewReservationService(st store.Store, catalog Catalog, clk clock.Clock, opts ...Option) *ReservationService {
	if st == nil || catalog == nil || clk == nil {
		panic("nil dependency passed to NewReservationService")
	}
	s := &ReservationService{store: st, catalog: catalog, clock: clk, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hold is the result of a successful AcquireHold.
type Hold struct {
	BookingID   uint64
	ScreeningID uint64
	SeatID      uint64
	HolderID    *uint64
	ExpiresAt   time.Time
}

// Confirmation is the result of a successful Confirm.
type Confirmation struct {
	BookingID   uint64
	Reference   string
	ScreeningID uint64
	SeatID      uint64
	HolderID    *uint64
	ConfirmedAt time.Time
}

// AcquireHold places a temporary hold on a seat for ttl. The seat must
// resolve to AVAILABLE at the instant the row lock is held: a prior hold
// that has expired, was released, or never existed all qualify, so an
// expired hold is silently overwritten regardless of who owned it.
func (s *ReservationService) AcquireHold(ctx context.Context, screeningID, seatID uint64, holderID *uint64, ttl time.Duration) (*Hold, error) {
	if screeningID == 0 || seatID == 0 || ttl <= 0 {
		return nil, ErrInvalidInput
	}
	detail, err := s.catalog.ScreeningDetail(ctx, screeningID)
	if err != nil {
		return nil, err
	}
	seat, err := s.catalog.Seat(ctx, detail.Screening.HallID, seatID)
	if err != nil {
		return nil, err
	}

	b := &model.Booking{
		ScreeningID: screeningID,
		SeatID:      seatID,
		HolderID:    holderID,
		Phase:       model.PhaseHeld,
	}
	// now is read inside the callback: the status must be derived at the
	// instant the row lock is held, not before a possible lock wait. A
	// hold that lapses while we queue on the lock is already free.
	var now, expiresAt time.Time
	err = s.store.Mutate(ctx, screeningID, seatID, func(m store.Mutator) error {
		now = s.clock.Now()
		expiresAt = now.Add(ttl)
		b.HoldExpiresAt = &expiresAt
		switch model.EffectiveStatus(m.Current(), now) {
		case model.SeatConfirmed:
			return ErrAlreadyBooked
		case model.SeatHeld:
			return ErrAlreadyHeld
		}
		return m.Upsert(b)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("hold acquired",
		zap.Uint64("screening_id", screeningID),
		zap.Uint64("seat_id", seatID),
		zap.Time("expires_at", expiresAt))
	s.publish(ctx, queue.SeatEvent{
		Type:        queue.EventSeatHeld,
		BookingID:   b.ID,
		ScreeningID: screeningID,
		SeatID:      seatID,
		SeatLabel:   seat.Label(),
		HolderID:    holderID,
		ExpiresAt:   expiresAt.Format(time.RFC3339),
		OccurredAt:  now.Format(time.RFC3339),
	})
	return &Hold{BookingID: b.ID, ScreeningID: screeningID, SeatID: seatID, HolderID: holderID, ExpiresAt: expiresAt}, nil
}

// Confirm converts a hold into a permanent booking, or books an AVAILABLE
// seat directly with no prior hold. A live hold with a named holder is
// only convertible by that holder; an anonymous live hold is convertible
// by anyone, and an expired hold forfeits its priority entirely. A
// confirmed seat is terminal: no transition out of it exists here.
func (s *ReservationService) Confirm(ctx context.Context, screeningID, seatID uint64, holderID *uint64) (*Confirmation, error) {
	if screeningID == 0 || seatID == 0 {
		return nil, ErrInvalidInput
	}
	detail, err := s.catalog.ScreeningDetail(ctx, screeningID)
	if err != nil {
		return nil, err
	}
	seat, err := s.catalog.Seat(ctx, detail.Screening.HallID, seatID)
	if err != nil {
		return nil, err
	}

	b := &model.Booking{
		ScreeningID: screeningID,
		SeatID:      seatID,
		HolderID:    holderID,
		Phase:       model.PhaseConfirmed,
		Reference:   uuid.NewString(),
	}
	// Same discipline as AcquireHold: derive status at lock-held time.
	var now time.Time
	err = s.store.Mutate(ctx, screeningID, seatID, func(m store.Mutator) error {
		now = s.clock.Now()
		cur := m.Current()
		switch model.EffectiveStatus(cur, now) {
		case model.SeatConfirmed:
			return ErrAlreadyBooked
		case model.SeatHeld:
			if cur.HolderID != nil && (holderID == nil || *holderID != *cur.HolderID) {
				return ErrAlreadyHeld
			}
		}
		return m.Upsert(b)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("booking confirmed",
		zap.Uint64("screening_id", screeningID),
		zap.Uint64("seat_id", seatID),
		zap.String("reference", b.Reference))
	s.publish(ctx, queue.SeatEvent{
		Type:        queue.EventSeatBooked,
		BookingID:   b.ID,
		Reference:   b.Reference,
		ScreeningID: screeningID,
		SeatID:      seatID,
		SeatLabel:   seat.Label(),
		HolderID:    holderID,
		OccurredAt:  now.Format(time.RFC3339),
	})
	return &Confirmation{BookingID: b.ID, Reference: b.Reference, ScreeningID: screeningID, SeatID: seatID, HolderID: holderID, ConfirmedAt: now}, nil
}

// Release voluntarily ends a hold, live or expired, making the seat
// immediately AVAILABLE. It is idempotent and never reports a business
// error: releasing an absent row or a confirmed seat is a successful
// no-op, and confirmed bookings are never touched.
func (s *ReservationService) Release(ctx context.Context, screeningID, seatID uint64) error {
	if screeningID == 0 || seatID == 0 {
		return ErrInvalidInput
	}
	now := s.clock.Now()
	released := false
	var holderID *uint64
	err := s.store.Mutate(ctx, screeningID, seatID, func(m store.Mutator) error {
		cur := m.Current()
		if cur == nil || cur.Phase != model.PhaseHeld {
			return nil
		}
		holderID = cur.HolderID
		released = true
		return m.Delete()
	})
	if err != nil {
		return err
	}
	if released {
		s.log.Info("hold released",
			zap.Uint64("screening_id", screeningID),
			zap.Uint64("seat_id", seatID))
		s.publish(ctx, queue.SeatEvent{
			Type:        queue.EventSeatReleased,
			ScreeningID: screeningID,
			SeatID:      seatID,
			HolderID:    holderID,
			OccurredAt:  now.Format(time.RFC3339),
		})
	}
	return nil
}

// SeatMapEntry is one seat of a resolved seat map.
type SeatMapEntry struct {
	SeatID   uint64           `json:"id"`
	Row      string           `json:"row"`
	Number   uint32           `json:"number"`
	SeatType model.SeatType   `json:"seat_type"`
	Status   model.SeatStatus `json:"status"`
}

// SeatMap is the full seat layout of a screening's hall with the
// effective status of every seat.
type SeatMap struct {
	ScreeningID uint64         `json:"screening_id"`
	MovieTitle  string         `json:"movie_title"`
	HallName    string         `json:"hall_name"`
	VenueName   string         `json:"venue_name"`
	StartsAt    time.Time      `json:"starts_at"`
	PriceCents  uint32         `json:"price_cents"`
	TotalRows   uint32         `json:"total_rows"`
	SeatsPerRow uint32         `json:"seats_per_row"`
	Seats       []SeatMapEntry `json:"seats"`
}

// ResolveHall resolves the status of every seat in the screening's hall.
// It performs one roster read and one bulk booking read, never a query
// per seat, and evaluates all seats against a single captured timestamp
// so one response is internally consistent. No row locks are taken, so
// this can never block or deadlock with in-flight mutations; the snapshot
// may be marginally stale, which is acceptable for display.
func (s *ReservationService) ResolveHall(ctx context.Context, screeningID uint64) (*SeatMap, error) {
	if screeningID == 0 {
		return nil, ErrInvalidInput
	}
	detail, err := s.catalog.ScreeningDetail(ctx, screeningID)
	if err != nil {
		return nil, err
	}
	seats, err := s.catalog.SeatsByHall(ctx, detail.Screening.HallID)
	if err != nil {
		return nil, err
	}
	bookings, err := s.store.ListByScreening(ctx, screeningID)
	if err != nil {
		return nil, err
	}

	bySeat := make(map[uint64]*model.Booking, len(bookings))
	for i := range bookings {
		bySeat[bookings[i].SeatID] = &bookings[i]
	}

	now := s.clock.Now()
	entries := make([]SeatMapEntry, 0, len(seats))
	for i := range seats {
		seat := &seats[i]
		entries = append(entries, SeatMapEntry{
			SeatID:   seat.ID,
			Row:      seat.Row,
			Number:   seat.Number,
			SeatType: seat.SeatType,
			Status:   model.EffectiveStatus(bySeat[seat.ID], now),
		})
	}
	return &SeatMap{
		ScreeningID: detail.Screening.ID,
		MovieTitle:  detail.Movie.Title,
		HallName:    detail.Hall.Name,
		VenueName:   detail.Venue.Name,
		StartsAt:    detail.Screening.StartsAt,
		PriceCents:  detail.Screening.PriceCents,
		TotalRows:   detail.Hall.TotalRows,
		SeatsPerRow: detail.Hall.SeatsPerRow,
		Seats:       entries,
	}, nil
}

func (s *ReservationService) publish(ctx context.Context, ev queue.SeatEvent) {
	if s.events == nil {
		return
	}
	// Best-effort; the publisher logs its own failures.
	_ = s.events.PublishSeatEvent(ctx, ev)
}
