package frame

import (
	"fmt"

	"github.com/spaghettifunk/vkscene/engine/math"
)

// Extent is a width/height pair in pixels.
type Extent struct {
	Width  uint32
	Height uint32
}

func (e Extent) IsZero() bool {
	return e.Width == 0 || e.Height == 0
}

func (e Extent) String() string {
	return fmt.Sprintf("%dx%d", e.Width, e.Height)
}

// ClampExtent clamps the window extent into the surface limits.
func ClampExtent(window, lo, hi Extent) Extent {
	return Extent{
		Width:  math.Clamp(window.Width, lo.Width, hi.Width),
		Height: math.Clamp(window.Height, lo.Height, hi.Height),
	}
}

// Status is the outcome of an acquire or present that did not fail outright.
type Status int

const (
	StatusSuccess Status = iota
	StatusSuboptimal
	StatusOutOfDate
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusSuboptimal:
		return "suboptimal"
	case StatusOutOfDate:
		return "out-of-date"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

type State int

const (
	StateActive State = iota
	StateRebuilding
)

func (s State) String() string {
	if s == StateActive {
		return "active"
	}
	return "rebuilding"
}
