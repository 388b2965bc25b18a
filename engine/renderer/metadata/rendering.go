package metadata

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

/** @brief Determines face culling mode during rendering. */
type FaceCullMode int

const (
	/** @brief No faces are culled. */
	FaceCullModeNone FaceCullMode = 0x0
	/** @brief Only front faces are culled. */
	FaceCullModeFront FaceCullMode = 0x1
	/** @brief Only back faces are culled. */
	FaceCullModeBack FaceCullMode = 0x2
	/** @brief Both front and back faces are culled. */
	FaceCullModeFrontAndBack FaceCullMode = 0x3
)

/** @brief Size in bytes of the per-instance push constant (one model matrix). */
const PushConstantSize = uint32(unsafe.Sizeof(mgl32.Mat4{}))

/**
 * @brief Per-image uniform buffer contents, binding 0.
 */
type ViewProjUBO struct {
	View       mgl32.Mat4
	Projection mgl32.Mat4
}

const ViewProjUBOSize = uint64(unsafe.Sizeof(ViewProjUBO{}))

/** @brief Backend-internal identifier of an uploaded mesh. Zero is invalid. */
type MeshHandle uint32

/** @brief Backend-internal identifier of an uploaded texture. Zero is invalid. */
type TextureHandle uint32

// DrawRef is one uploaded mesh plus the model matrices of its instances.
type DrawRef struct {
	Mesh       MeshHandle
	IndexCount uint32
	Models     []mgl32.Mat4
}

/**
 * @brief Everything the renderer needs to record one frame.
 */
type RenderPacket struct {
	DeltaTime  float64
	View       mgl32.Mat4
	Projection mgl32.Mat4
	Draws      []DrawRef
}

func (p *RenderPacket) UBO() ViewProjUBO {
	return ViewProjUBO{View: p.View, Projection: p.Projection}
}
