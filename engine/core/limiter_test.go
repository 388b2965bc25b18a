package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFrameLimiterCapsRate(t *testing.T) {
	start := time.Unix(0, 0)
	fl := NewFrameLimiter(120, start)

	// 1ms ticks: a frame is due every 1/120s (~8.33ms).
	drawn := 0
	now := start
	for i := 0; i < 1000; i++ {
		now = now.Add(time.Millisecond)
		if fl.Tick(now) {
			drawn++
		}
	}
	// One second of ticks at 1ms granularity lands on every 9th tick.
	assert.InDelta(t, 111, drawn, 2)
}

func TestFrameLimiterAccumulatesFrameDelta(t *testing.T) {
	start := time.Unix(0, 0)
	fl := NewFrameLimiter(10, start)

	assert.False(t, fl.Tick(start.Add(40*time.Millisecond)))
	assert.False(t, fl.Tick(start.Add(80*time.Millisecond)))
	assert.True(t, fl.Tick(start.Add(120*time.Millisecond)))

	assert.InDelta(t, 0.04, fl.DeltaT, 1e-9)
	assert.InDelta(t, 0.12, fl.ConsumeFrameDelta(), 1e-9)
	assert.Zero(t, fl.FrameDelta)
}

func TestFrameLimiterDefaultsTarget(t *testing.T) {
	fl := NewFrameLimiter(0, time.Now())
	assert.Equal(t, DefaultTargetFPS, fl.TargetFPS)
}
