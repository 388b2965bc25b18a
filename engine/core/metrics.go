package core

import (
	"fmt"
	"strings"
	"time"
)

const DefaultFPSPeriod = 2200 * time.Millisecond

// ParseFPSPeriod accepts the named presets or any time.ParseDuration string.
// A zero period disables reporting.
func ParseFPSPeriod(s string) (time.Duration, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultFPSPeriod, nil
	case "none", "no", "off":
		return 0, nil
	case "second":
		return time.Second, nil
	case "five_seconds":
		return 5 * time.Second, nil
	case "ten_seconds":
		return 10 * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid fps period `%s`: %w", s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid fps period `%s`: negative", s)
	}
	return d, nil
}

// FPSReporter counts drawn frames and emits the average rate once per period.
type FPSReporter struct {
	Period time.Duration

	frames      uint32
	windowStart time.Time
	fps         float64
	report      func(fps float64)
}

func NewFPSReporter(period time.Duration, now time.Time) *FPSReporter {
	return &FPSReporter{
		Period:      period,
		windowStart: now,
		report: func(fps float64) {
			LogInfo("FPS: %.1f", fps)
		},
	}
}

// Frame registers a drawn frame. It returns true when a measurement was emitted.
func (r *FPSReporter) Frame(now time.Time) bool {
	emitted := false
	if r.Period > 0 && now.Sub(r.windowStart) >= r.Period {
		r.fps = float64(r.frames) / r.Period.Seconds()
		r.windowStart = now
		r.frames = 0
		if r.report != nil {
			r.report(r.fps)
		}
		emitted = true
	}
	r.frames++
	return emitted
}

// FPS returns the last measurement.
func (r *FPSReporter) FPS() float64 {
	return r.fps
}
