package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Step(d time.Duration) { c.t = c.t.Add(d) }

func TestTimerWholeTicks(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	tm := newTimerWithClock(60, clock.Now)

	clock.Step(50 * time.Millisecond)
	tm.Advance()
	assert.Equal(t, 3, tm.Ticks)
	assert.Equal(t, float32(0), tm.A)
	assert.InDelta(t, 20, tm.FPS, 1e-9)
}

func TestTimerCarriesFraction(t *testing.T) {
	tm := NewTimer(60)
	tm.AdvanceBy(25 * time.Millisecond)
	assert.Equal(t, 1, tm.Ticks)
	assert.InDelta(t, 0.5, tm.A, 1e-6)

	tm.AdvanceBy(25 * time.Millisecond)
	assert.Equal(t, 2, tm.Ticks)
	assert.InDelta(t, 0, tm.A, 1e-6)
}

func TestTimerCapsStalls(t *testing.T) {
	tm := NewTimer(60)
	tm.AdvanceBy(10 * time.Second)
	assert.Equal(t, 60, tm.Ticks, "a frame is credited at most one second")

	fast := NewTimer(1000)
	fast.AdvanceBy(time.Second)
	assert.Equal(t, MaxTicksPerFrame, fast.Ticks)
}

func TestTimerCarriesTicksBeyondCap(t *testing.T) {
	tm := NewTimer(1000)
	tm.AdvanceBy(time.Second)
	assert.Equal(t, MaxTicksPerFrame, tm.Ticks)
	assert.InDelta(t, 900, tm.A, 1e-3)

	// owed ticks are paid back on later frames
	tm.AdvanceBy(0)
	assert.Equal(t, MaxTicksPerFrame, tm.Ticks)
	assert.InDelta(t, 800, tm.A, 1e-3)
}

func TestTimerIgnoresBackwardsClock(t *testing.T) {
	clock := &fakeClock{t: time.Unix(100, 0)}
	tm := newTimerWithClock(60, clock.Now)
	clock.Step(-time.Second)
	tm.Advance()
	assert.Equal(t, 0, tm.Ticks)
	assert.Equal(t, float32(0), tm.A)
}

func TestTimerScale(t *testing.T) {
	tm := NewTimer(60)
	tm.TimeScale = 0.5
	tm.AdvanceBy(100 * time.Millisecond)
	assert.Equal(t, 3, tm.Ticks)
}
