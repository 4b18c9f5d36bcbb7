package game

import (
	"sync"
	"time"
)

// Clock drives the periodic step of a run.
//
// Stop is synchronous: once it returns, no tick is delivered on C until
// the next Start or Reset. Reset makes the next tick arrive one full new
// interval later.
type Clock interface {
	Start(interval time.Duration)
	Reset(interval time.Duration)
	Stop()
	C() <-chan time.Time
}

// TickerClock is a Clock backed by a time.Ticker.
// It relies on Go 1.23+ timer semantics, where no stale tick is received
// after Stop or Reset returns.
type TickerClock struct {
	ticker  *time.Ticker
	running bool
}

// NewTickerClock creates a stopped ticker clock
func NewTickerClock() *TickerClock {
	t := time.NewTicker(time.Hour)
	t.Stop()
	return &TickerClock{ticker: t}
}

func (c *TickerClock) Start(interval time.Duration) {
	c.ticker.Reset(interval)
	c.running = true
}

func (c *TickerClock) Reset(interval time.Duration) {
	if !c.running {
		return
	}
	c.ticker.Reset(interval)
}

func (c *TickerClock) Stop() {
	c.ticker.Stop()
	c.running = false
}

func (c *TickerClock) C() <-chan time.Time {
	return c.ticker.C
}

// Running reports whether the clock is delivering ticks
func (c *TickerClock) Running() bool {
	return c.running
}

// ManualClock never ticks on its own; it records how the game drove it.
// Tests call Game.Step directly instead of waiting on C.
type ManualClock struct {
	mu        sync.Mutex
	running   bool
	interval  time.Duration
	intervals []time.Duration // Every interval passed to Start or Reset
	starts    int
	stops     int
	ch        chan time.Time
}

// NewManualClock creates a stopped manual clock
func NewManualClock() *ManualClock {
	return &ManualClock{ch: make(chan time.Time, 1)}
}

func (c *ManualClock) Start(interval time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = true
	c.interval = interval
	c.intervals = append(c.intervals, interval)
	c.starts++
}

func (c *ManualClock) Reset(interval time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.interval = interval
	c.intervals = append(c.intervals, interval)
}

func (c *ManualClock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
	c.stops++
	select {
	case <-c.ch:
	default:
	}
}

func (c *ManualClock) C() <-chan time.Time {
	return c.ch
}

// Fire delivers one tick on C if the clock is running and reports
// whether it did.
func (c *ManualClock) Fire() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return false
	}
	select {
	case c.ch <- time.Now():
		return true
	default:
		return false
	}
}

// Running reports whether the clock is started
func (c *ManualClock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Interval returns the current interval
func (c *ManualClock) Interval() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.interval
}

// Intervals returns every interval the clock was configured with
func (c *ManualClock) Intervals() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]time.Duration, len(c.intervals))
	copy(out, c.intervals)
	return out
}

// Counts returns how many times Start and Stop were called
func (c *ManualClock) Counts() (starts, stops int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.starts, c.stops
}
