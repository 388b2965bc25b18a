package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFPSPeriod(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", DefaultFPSPeriod},
		{"none", 0},
		{"second", time.Second},
		{"five_seconds", 5 * time.Second},
		{"ten_seconds", 10 * time.Second},
		{"2200ms", 2200 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFPSPeriod(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseFPSPeriod("often")
	assert.Error(t, err)
	_, err = ParseFPSPeriod("-1s")
	assert.Error(t, err)
}

func TestFPSReporterEmitsPerPeriod(t *testing.T) {
	start := time.Unix(0, 0)
	r := NewFPSReporter(time.Second, start)
	var reported []float64
	r.report = func(fps float64) { reported = append(reported, fps) }

	now := start
	for i := 0; i < 61; i++ {
		now = now.Add(time.Second / 60)
		r.Frame(now)
	}
	// The 61st frame is the first past the one second mark and closes the
	// window holding the previous 60 frames.
	require.Len(t, reported, 1)
	assert.InDelta(t, 60, reported[0], 1e-9)
	assert.InDelta(t, 60, r.FPS(), 1e-9)
}

func TestFPSReporterDisabled(t *testing.T) {
	start := time.Unix(0, 0)
	r := NewFPSReporter(0, start)
	r.report = func(float64) { t.Fatal("reporter should stay quiet") }

	for i := 1; i <= 10; i++ {
		assert.False(t, r.Frame(start.Add(time.Duration(i)*time.Second)))
	}
}
