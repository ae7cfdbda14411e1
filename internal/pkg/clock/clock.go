package clock

import (
	"sync"
	"time"
)

// Clock supplies the current instant. Services take one instead of calling
// time.Now so window and expiry boundaries can be tested exactly.
type Clock interface {
	Now() time.Time
}

// System reads the wall clock in UTC.
type System struct{}

func (System) Now() time.Time { return time.Now().UTC() }

// Manual is a settable clock for tests and tooling.
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	m.now = t
	m.mu.Unlock()
}

func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}
