// Package clock provides the countdown tick source. It knows nothing about
// sequencer states: its owner starts and stops it and drains C().
package clock

import (
	"sync"
	"time"
)

// Decisecond is the fixed tick period.
const Decisecond = 100 * time.Millisecond

// Clock is the tick source the sequencer drives.
type Clock interface {
	Start()
	Stop()
	Running() bool
	C() <-chan time.Time
}

// Ticker is a restartable periodic clock backed by a single time.Ticker.
// The channel returned by C is stable for the Ticker's lifetime, so a
// select loop can hold on to it across Start/Stop cycles.
type Ticker struct {
	mu      sync.Mutex
	period  time.Duration
	t       *time.Ticker
	running bool
}

// NewTicker returns a stopped ticker with the given period.
func NewTicker(period time.Duration) *Ticker {
	if period <= 0 {
		period = Decisecond
	}
	t := time.NewTicker(period)
	t.Stop()
	return &Ticker{period: period, t: t}
}

// New returns a stopped decisecond ticker.
func New() *Ticker {
	return NewTicker(Decisecond)
}

// Start begins ticking. Calling Start on a running ticker is a no-op so a
// resume never shortens the tick in progress.
func (c *Ticker) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}
	c.t.Reset(c.period)
	c.running = true
}

// Stop halts ticking. After Stop returns no further ticks are delivered
// until the next Start.
func (c *Ticker) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t.Stop()
	c.running = false
}

func (c *Ticker) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *Ticker) C() <-chan time.Time {
	return c.t.C
}

// Period reports the tick interval.
func (c *Ticker) Period() time.Duration {
	return c.period
}
