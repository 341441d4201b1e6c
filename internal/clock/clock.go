// Package clock abstracts the source of "now" so that every component
// evaluating hold expiry can be tested against an arbitrary instant.
package clock

import (
	"sync"
	"time"
)

// Clock supplies the current time. All timestamps in the system are UTC.
type Clock interface {
	Now() time.Time
}

// New returns a Clock backed by the system clock.
func New() Clock { return systemClock{} }

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// Fake is a manually controlled Clock for tests. The zero value is not
// usable; construct it with NewFake.
type Fake struct {
	mu sync.Mutex
	t  time.Time
}

// NewFake returns a Fake frozen at the given instant.
func NewFake(t time.Time) *Fake { return &Fake{t: t.UTC()} }

// Now returns the frozen instant.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

// Advance moves the frozen instant forward by d.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
}

// Set replaces the frozen instant.
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = t.UTC()
}
