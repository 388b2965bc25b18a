package core

import "time"

const DefaultTargetFPS uint32 = 120

// FrameLimiter decides on every loop tick whether a frame is due, capping the
// draw rate at TargetFPS. Time between draws accumulates in FrameDelta so the
// animation step covers every skipped tick.
type FrameLimiter struct {
	TargetFPS uint32

	// Seconds since the previous Tick.
	DeltaT float64
	// Seconds accumulated since the last drawn frame.
	FrameDelta float64

	lastTick   time.Time
	frameStart time.Time
}

func NewFrameLimiter(targetFPS uint32, now time.Time) *FrameLimiter {
	if targetFPS == 0 {
		targetFPS = DefaultTargetFPS
	}
	return &FrameLimiter{
		TargetFPS:  targetFPS,
		lastTick:   now,
		frameStart: now,
	}
}

func (fl *FrameLimiter) frameInterval() time.Duration {
	return time.Second / time.Duration(fl.TargetFPS)
}

// Tick advances the limiter and reports whether a frame should be drawn.
func (fl *FrameLimiter) Tick(now time.Time) bool {
	fl.DeltaT = now.Sub(fl.lastTick).Seconds()
	fl.FrameDelta += fl.DeltaT
	fl.lastTick = now

	if now.Sub(fl.frameStart) >= fl.frameInterval() {
		fl.frameStart = now
		return true
	}
	return false
}

// ConsumeFrameDelta returns the accumulated frame time and resets it. Call it
// once the frame was actually drawn.
func (fl *FrameLimiter) ConsumeFrameDelta() float64 {
	d := fl.FrameDelta
	fl.FrameDelta = 0
	return d
}
