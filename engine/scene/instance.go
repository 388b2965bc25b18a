package scene

import (
	stdmath "math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/spaghettifunk/vkscene/engine/core"
	"github.com/spaghettifunk/vkscene/engine/math"
)

// SpinRate is the instance rotation speed about Y, in radians per second.
const SpinRate float32 = stdmath.Pi / 4

// Instance places a shared model in the world with its own transform.
type Instance struct {
	ID        uuid.UUID
	Model     *Model
	Transform *math.Transform
}

// NewInstance takes a reference on model. A nil transform is identity.
func NewInstance(model *Model, transform *math.Transform) *Instance {
	if transform == nil {
		transform = math.TransformCreate()
	}
	i := &Instance{
		Model:     model.Retain(),
		Transform: transform,
	}
	i.ID = core.IdentifierAcquireNewID(i)
	return i
}

// Animate spins the instance about its local Y axis by SpinRate*dt.
func (i *Instance) Animate(dt float32) {
	i.Transform.RotateAxis(SpinRate*dt, mgl32.Vec3{0, 1, 0})
}

func (i *Instance) ModelMatrix() mgl32.Mat4 {
	return i.Transform.GetLocal()
}

func (i *Instance) Destroy() {
	if i.Model == nil {
		return
	}
	i.Model.Release()
	i.Model = nil
	_ = core.IdentifierReleaseID(i.ID)
}
