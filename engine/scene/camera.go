package scene

import (
	stdmath "math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	DefaultFov  float32 = stdmath.Pi / 4
	DefaultNear float32 = 0.1
	DefaultFar  float32 = 100
)

var (
	defaultEye    = mgl32.Vec3{0, 0, 20}
	defaultCenter = mgl32.Vec3{0, 0, 0}
	defaultUp     = mgl32.Vec3{0, 1, 0}
)

/**
 * @brief A free flying camera. It is mutated by input during update and
 * read by the renderer when the frame is recorded.
 */
type Camera struct {
	Fov  float32
	Near float32
	Far  float32

	aspect float32

	Projection mgl32.Mat4
	View       mgl32.Mat4
}

func NewCamera(aspect float32) *Camera {
	c := &Camera{
		Fov:  DefaultFov,
		Near: DefaultNear,
		Far:  DefaultFar,
	}
	c.SetAspect(aspect)
	c.Reset()
	return c
}

// Reset puts the camera back at (0,0,20) looking at the origin.
func (c *Camera) Reset() {
	c.View = mgl32.LookAtV(defaultEye, defaultCenter, defaultUp)
}

// SetAspect rebuilds the projection when the aspect ratio changes. Y is
// flipped since Vulkan clip space points down.
func (c *Camera) SetAspect(aspect float32) {
	if aspect <= 0 || aspect == c.aspect {
		return
	}
	c.aspect = aspect
	c.Projection = mgl32.Perspective(c.Fov, aspect, c.Near, c.Far).Mul4(mgl32.Scale3D(1, -1, 1))
}

func (c *Camera) Aspect() float32 { return c.aspect }

// Look is the world space viewing direction.
func (c *Camera) Look() mgl32.Vec3 {
	return c.View.Row(2).Vec3().Mul(-1)
}

// Up is the world space up direction of the camera.
func (c *Camera) Up() mgl32.Vec3 {
	return c.View.Row(1).Vec3()
}

// Right is look x up.
func (c *Camera) Right() mgl32.Vec3 {
	return c.Look().Cross(c.Up())
}

// Position is the eye position in world space.
func (c *Camera) Position() mgl32.Vec3 {
	return c.View.Inv().Col(3).Vec3()
}

// Translate moves the eye by delta, in world space.
func (c *Camera) Translate(delta mgl32.Vec3) {
	c.View = c.View.Mul4(mgl32.Translate3D(-delta.X(), -delta.Y(), -delta.Z()))
}

// Rotate turns the camera about its own eye. The axis is in world space.
func (c *Camera) Rotate(radians float32, axis mgl32.Vec3) {
	if axis.Len() == 0 {
		return
	}
	viewAxis := c.View.Mul4x1(axis.Normalize().Vec4(0)).Vec3()
	c.View = mgl32.HomogRotate3D(-radians, viewAxis.Normalize()).Mul4(c.View)
}

func (c *Camera) MoveForward(amount float32) { c.Translate(c.Look().Mul(amount)) }

func (c *Camera) MoveBackward(amount float32) { c.Translate(c.Look().Mul(-amount)) }

func (c *Camera) MoveLeft(amount float32) { c.Translate(c.Right().Mul(-amount)) }

func (c *Camera) MoveRight(amount float32) { c.Translate(c.Right().Mul(amount)) }

func (c *Camera) MoveUp(amount float32) { c.Translate(c.Up().Mul(amount)) }

func (c *Camera) MoveDown(amount float32) { c.Translate(c.Up().Mul(-amount)) }

// Pitch rotates about the look x up axis.
func (c *Camera) Pitch(radians float32) {
	c.Rotate(radians, c.Right())
}
