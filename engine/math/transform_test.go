package math

import (
	stdmath "math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, uint32(1), Clamp(uint32(0), 1, 10))
	assert.Equal(t, uint32(10), Clamp(uint32(4000), 1, 10))
	assert.Equal(t, 0.5, Clamp(0.5, 0.0, 1.0))
}

func TestApproxEqualIsAbsolute(t *testing.T) {
	residue := mgl32.Ident4()
	residue[1] = 1e-7
	residue[4] = -8.7e-8
	assert.True(t, Mat4ApproxEqual(mgl32.Ident4(), residue, FloatEpsilon))

	residue[2] = 2e-5
	assert.False(t, Mat4ApproxEqual(mgl32.Ident4(), residue, FloatEpsilon))

	assert.True(t, Vec3ApproxEqual(mgl32.Vec3{0, 1, 20}, mgl32.Vec3{-4e-8, 1, 20}, FloatEpsilon))
	assert.False(t, Vec3ApproxEqual(mgl32.Vec3{0, 1, 20}, mgl32.Vec3{0, 1, 20.001}, FloatEpsilon))
}

func TestTransformIdentity(t *testing.T) {
	tr := TransformCreate()
	assert.True(t, Mat4ApproxEqual(mgl32.Ident4(), tr.GetLocal(), FloatEpsilon))
}

func TestTransformRotateAxisAccumulates(t *testing.T) {
	tr := TransformCreate()
	for i := 0; i < 2; i++ {
		tr.RotateAxis(stdmath.Pi/4, mgl32.Vec3{0, 1, 0})
	}
	want := mgl32.HomogRotate3DY(stdmath.Pi / 2)
	assert.True(t, Mat4ApproxEqual(want, tr.GetLocal(), FloatEpsilon), "got %v", tr.GetLocal())
}

func TestTransformComposesTranslationLast(t *testing.T) {
	tr := TransformFromPosition(mgl32.Vec3{1, 2, 3})
	tr.SetScale(mgl32.Vec3{2, 2, 2})

	p := tr.GetLocal().Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	assert.InDelta(t, 3, p.X(), 1e-6)
	assert.InDelta(t, 2, p.Y(), 1e-6)
	assert.InDelta(t, 3, p.Z(), 1e-6)
}
