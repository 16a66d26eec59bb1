package game

import "time"

const (
	// MaxTicksPerFrame caps catch-up after a stall.
	MaxTicksPerFrame = 100
	// MaxFrameTime caps the wall time credited to a single frame.
	MaxFrameTime = time.Second
)

// Timer converts wall time into fixed simulation ticks. Each Advance
// reports how many ticks to run and how far the clock sits between the
// last tick and the next one.
type Timer struct {
	ticksPerSecond float64
	TimeScale      float64

	// Ticks is the number of ticks to run for the current frame.
	Ticks int
	// A is the simulation time past the last tick run, in ticks. It stays
	// in [0, 1) except while ticks beyond MaxTicksPerFrame are still owed.
	A float32
	// FPS is derived from the last frame time.
	FPS float64

	passed float64
	last   time.Time
	now    func() time.Time
}

// NewTimer starts a timer at tps ticks per second.
func NewTimer(tps float64) *Timer {
	return newTimerWithClock(tps, time.Now)
}

func newTimerWithClock(tps float64, now func() time.Time) *Timer {
	return &Timer{
		ticksPerSecond: tps,
		TimeScale:      1,
		now:            now,
		last:           now(),
	}
}

// Advance reads the clock and updates Ticks and A.
func (t *Timer) Advance() {
	now := t.now()
	elapsed := now.Sub(t.last)
	t.last = now
	t.AdvanceBy(elapsed)
}

// AdvanceBy credits elapsed wall time. Negative time counts as zero.
func (t *Timer) AdvanceBy(elapsed time.Duration) {
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > MaxFrameTime {
		elapsed = MaxFrameTime
	}
	if elapsed > 0 {
		t.FPS = float64(time.Second) / float64(elapsed)
	}

	t.passed += float64(elapsed.Nanoseconds()) * t.TimeScale * t.ticksPerSecond / 1e9
	t.Ticks = int(t.passed)
	if t.Ticks > MaxTicksPerFrame {
		t.Ticks = MaxTicksPerFrame
	}
	t.passed -= float64(t.Ticks)
	t.A = float32(t.passed)
}
