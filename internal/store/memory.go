package store

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/ticketing-engine/internal/model"
)

type key struct {
	screeningID uint64
	seatID      uint64
}

// Memory implements Store with a mutex per (screening, seat) key. It
// mirrors the MySQL store's contract: Mutate fully serializes callbacks
// for one key, commits staged writes when fn returns nil and discards
// them otherwise. Used by the test suite and by STORE=memory deployments.
type Memory struct {
	mu    sync.Mutex // guards rows, locks and nextID
	rows  map[key]*model.Booking
	locks map[key]*sync.Mutex
	next  uint64
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		rows:  make(map[key]*model.Booking),
		locks: make(map[key]*sync.Mutex),
	}
}

func (s *Memory) lockFor(k key) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[k]
	if !ok {
		l = &sync.Mutex{}
		s.locks[k] = l
	}
	return l
}

// Mutate implements Store.
func (s *Memory) Mutate(ctx context.Context, screeningID, seatID uint64, fn func(m Mutator) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	k := key{screeningID, seatID}
	l := s.lockFor(k)
	l.Lock()
	defer l.Unlock()

	// The wait on l is not interruptible; honour a cancellation that
	// arrived while queued before touching the row.
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	var cur *model.Booking
	if row, ok := s.rows[k]; ok {
		cp := *row
		cur = &cp
	}
	s.mu.Unlock()

	m := &memMutator{cur: cur}
	if err := fn(m); err != nil {
		return err
	}
	if !m.dirty {
		return nil
	}

	// Commit the staged write.
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	switch {
	case m.deleted:
		delete(s.rows, k)
	case m.staged != nil:
		b := *m.staged
		b.ScreeningID = screeningID
		b.SeatID = seatID
		if prev, ok := s.rows[k]; ok {
			b.ID = prev.ID
			b.CreatedAt = prev.CreatedAt
		} else {
			s.next++
			b.ID = s.next
			b.CreatedAt = now
		}
		b.UpdatedAt = now
		s.rows[k] = &b
		*m.staged = b
	}
	return nil
}

// ListByScreening implements Store.
func (s *Memory) ListByScreening(ctx context.Context, screeningID uint64) ([]model.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Booking
	for k, row := range s.rows {
		if k.screeningID == screeningID {
			out = append(out, *row)
		}
	}
	return out, nil
}

type memMutator struct {
	cur     *model.Booking
	staged  *model.Booking
	deleted bool
	dirty   bool
}

func (m *memMutator) Current() *model.Booking { return m.cur }

func (m *memMutator) Upsert(b *model.Booking) error {
	m.staged = b
	m.deleted = false
	m.dirty = true
	return nil
}

func (m *memMutator) Delete() error {
	m.staged = nil
	m.deleted = true
	m.dirty = true
	return nil
}
