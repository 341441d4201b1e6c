package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveStatus(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	future := now.Add(3 * time.Minute)
	past := now.Add(-time.Second)

	tests := []struct {
		name    string
		booking *Booking
		want    SeatStatus
	}{
		{"no row", nil, SeatAvailable},
		{"released leftover", &Booking{Phase: PhaseReleased}, SeatAvailable},
		{"confirmed", &Booking{Phase: PhaseConfirmed, Reference: "ref"}, SeatConfirmed},
		{"confirmed ignores stale expiry", &Booking{Phase: PhaseConfirmed, HoldExpiresAt: &past}, SeatConfirmed},
		{"live hold", &Booking{Phase: PhaseHeld, HoldExpiresAt: &future}, SeatHeld},
		{"expired hold", &Booking{Phase: PhaseHeld, HoldExpiresAt: &past}, SeatAvailable},
		{"held without expiry", &Booking{Phase: PhaseHeld}, SeatAvailable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, EffectiveStatus(tc.booking, now))
		})
	}
}

func TestHoldExpired(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Minute)

	b := &Booking{Phase: PhaseHeld, HoldExpiresAt: &future}
	assert.False(t, b.HoldExpired(now))
	assert.True(t, b.HoldExpired(now.Add(2*time.Minute)))

	// Confirmed rows never expire.
	c := &Booking{Phase: PhaseConfirmed, HoldExpiresAt: &future}
	assert.False(t, c.HoldExpired(now.Add(time.Hour)))

	// A held row that lost its expiry fails safe to expired.
	orphan := &Booking{Phase: PhaseHeld}
	assert.True(t, orphan.HoldExpired(now))
}

func TestSeatLabel(t *testing.T) {
	s := &Seat{Row: "G", Number: 11}
	assert.Equal(t, "G11", s.Label())
}
