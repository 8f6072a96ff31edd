package engine

import (
	"sync"
	"time"
)

// Gate throttles live analysis to at most one run per interval. Early calls
// are dropped rather than queued; the next stroke snapshot carries strictly
// more information than the one dropped.
type Gate struct {
	mu       sync.Mutex
	interval time.Duration
	now      func() time.Time
	last     time.Time
}

// NewGate creates a gate with the given minimum interval between runs.
// A nil clock uses time.Now.
func NewGate(interval time.Duration, now func() time.Time) *Gate {
	if now == nil {
		now = time.Now
	}
	return &Gate{interval: interval, now: now}
}

// Allow reports whether a run may proceed now, consuming the slot if so.
func (g *Gate) Allow() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	t := g.now()
	if !g.last.IsZero() && t.Sub(g.last) < g.interval {
		return false
	}
	g.last = t
	return true
}
