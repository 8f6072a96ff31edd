package engine

import (
	"testing"
	"time"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestGateThrottlesWithinInterval(t *testing.T) {
	clk := &fakeClock{t: time.Unix(0, 0)}
	g := NewGate(180*time.Millisecond, clk.Now)
	if !g.Allow() {
		t.Fatalf("expected first call to pass")
	}
	clk.advance(50 * time.Millisecond)
	if g.Allow() {
		t.Fatalf("expected call within interval to be throttled")
	}
	clk.advance(150 * time.Millisecond)
	if !g.Allow() {
		t.Fatalf("expected call after interval to pass")
	}
}

func TestGateConsumesSlot(t *testing.T) {
	clk := &fakeClock{t: time.Unix(0, 0)}
	g := NewGate(100*time.Millisecond, clk.Now)
	if !g.Allow() {
		t.Fatalf("expected first call to pass")
	}
	clk.advance(100 * time.Millisecond)
	if !g.Allow() {
		t.Fatalf("expected call exactly at interval to pass")
	}
	if g.Allow() {
		t.Fatalf("expected immediate second call to be throttled")
	}
}
