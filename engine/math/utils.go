package math

import (
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/exp/constraints"
)

const FloatEpsilon float32 = 1e-5

// Clamp returns the value `f` clamped to the range [low, high].
// It works for any numeric type (integers and floats).
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// Mat4ApproxEqual reports whether every element of a and b differs by at
// most epsilon. The comparison is absolute, so near-zero residue still matches.
func Mat4ApproxEqual(a, b mgl32.Mat4, epsilon float32) bool {
	for i := range a {
		if mgl32.Abs(a[i]-b[i]) > epsilon {
			return false
		}
	}
	return true
}

// Vec3ApproxEqual is the three component counterpart of Mat4ApproxEqual.
func Vec3ApproxEqual(a, b mgl32.Vec3, epsilon float32) bool {
	for i := range a {
		if mgl32.Abs(a[i]-b[i]) > epsilon {
			return false
		}
	}
	return true
}
