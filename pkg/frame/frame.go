// Package frame provides animation-frame boundaries for the render
// scheduler.
//
// A Source hands out one channel per requested frame. The scheduler asks
// for the next frame only when a render is pending, so at most one render
// runs per boundary no matter how many updates happened in between.
package frame

import (
	"sync"
	"time"
)

// Source produces animation-frame boundaries.
type Source interface {
	// Next returns a channel that receives the timestamp of the next frame
	// boundary exactly once.
	Next() <-chan time.Time
}

// Clock provides time for frame sources. Tests can inject a fake clock to
// control frame timing deterministically.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

// realClock uses system time.
type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// SystemClock returns the wall clock.
func SystemClock() Clock { return realClock{} }

// DefaultInterval is one frame at 60 frames per second.
const DefaultInterval = time.Second / 60

// Ticker fires on fixed interval boundaries measured from its creation, like
// a display refresh.
type Ticker struct {
	interval time.Duration
	clock    Clock
	origin   time.Time
}

// TickerOption configures a Ticker.
type TickerOption func(*Ticker)

// WithClock sets the clock a Ticker reads.
func WithClock(c Clock) TickerOption {
	return func(t *Ticker) {
		t.clock = c
	}
}

// NewTicker creates a Ticker. A non-positive interval uses DefaultInterval.
func NewTicker(interval time.Duration, opts ...TickerOption) *Ticker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	t := &Ticker{interval: interval, clock: realClock{}}
	for _, opt := range opts {
		opt(t)
	}
	t.origin = t.clock.Now()
	return t
}

// FPS creates a Ticker for the given frame rate.
func FPS(fps int, opts ...TickerOption) *Ticker {
	if fps <= 0 {
		return NewTicker(DefaultInterval, opts...)
	}
	return NewTicker(time.Second/time.Duration(fps), opts...)
}

// Interval returns the frame interval.
func (t *Ticker) Interval() time.Duration {
	return t.interval
}

// Next implements Source. The boundary is always strictly in the future.
func (t *Ticker) Next() <-chan time.Time {
	return t.clock.After(t.untilNext(t.clock.Now()))
}

func (t *Ticker) untilNext(now time.Time) time.Duration {
	elapsed := now.Sub(t.origin)
	if elapsed < 0 {
		return t.interval
	}
	return t.interval - elapsed%t.interval
}

// Immediate is a Source whose frames arrive as soon as they are requested.
// Headless runs use it to render without waiting.
type Immediate struct {
	Clock Clock
}

// Next implements Source.
func (i Immediate) Next() <-chan time.Time {
	c := i.Clock
	if c == nil {
		c = realClock{}
	}
	ch := make(chan time.Time, 1)
	ch <- c.Now()
	return ch
}

// Manual is a Source driven by explicit Tick calls. It is safe for
// concurrent use.
type Manual struct {
	mu      sync.Mutex
	pending []chan time.Time
	notify  chan struct{}
}

// NewManual creates a Manual source.
func NewManual() *Manual {
	return &Manual{notify: make(chan struct{}, 1)}
}

// Next implements Source.
func (m *Manual) Next() <-chan time.Time {
	ch := make(chan time.Time, 1)
	m.mu.Lock()
	m.pending = append(m.pending, ch)
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}
	return ch
}

// Pending returns how many frame requests are waiting.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// Tick delivers ts to every waiting request and returns how many there
// were.
func (m *Manual) Tick(ts time.Time) int {
	m.mu.Lock()
	pending := m.pending
	m.pending = nil
	m.mu.Unlock()

	for _, ch := range pending {
		ch <- ts
	}
	return len(pending)
}

// Wait blocks until at least one request is pending or timeout elapses.
func (m *Manual) Wait(timeout time.Duration) bool {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for {
		if m.Pending() > 0 {
			return true
		}
		select {
		case <-m.notify:
		case <-deadline.C:
			return m.Pending() > 0
		}
	}
}
