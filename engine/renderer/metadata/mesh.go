package metadata

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/vkscene/engine/core"
)

/** @brief The attribute layout of a vertex buffer. */
type VertexLayout int

const (
	/** @brief Position and color. */
	VertexLayoutSimple VertexLayout = iota
	/** @brief Position, color and texture coordinate. */
	VertexLayoutTextured
)

/** @brief Format of a single vertex attribute. */
type AttributeFormat int

const (
	AttributeFormatFloat32x2 AttributeFormat = iota
	AttributeFormatFloat32x3
)

/** @brief A vertex attribute as consumed by the pipeline's vertex input state. */
type VertexAttribute struct {
	Location uint32
	Format   AttributeFormat
	Offset   uint32
}

func (l VertexLayout) String() string {
	switch l {
	case VertexLayoutSimple:
		return "simple"
	case VertexLayoutTextured:
		return "textured"
	}
	return fmt.Sprintf("VertexLayout(%d)", int(l))
}

// Stride is the size in bytes of one vertex in this layout.
func (l VertexLayout) Stride() uint32 {
	if l == VertexLayoutTextured {
		return 32
	}
	return 24
}

// Attributes lists the vertex attributes in location order.
func (l VertexLayout) Attributes() []VertexAttribute {
	attrs := []VertexAttribute{
		{Location: 0, Format: AttributeFormatFloat32x3, Offset: 0},
		{Location: 1, Format: AttributeFormatFloat32x3, Offset: 12},
	}
	if l == VertexLayoutTextured {
		attrs = append(attrs, VertexAttribute{Location: 2, Format: AttributeFormatFloat32x2, Offset: 24})
	}
	return attrs
}

/** @brief A single vertex. TexCoord is ignored by the simple layout. */
type Vertex struct {
	Position mgl32.Vec3
	Color    mgl32.Vec3
	TexCoord mgl32.Vec2
}

// MeshSizer exposes the byte sizes a GPU upload needs.
type MeshSizer interface {
	VertexCount() uint32
	IndexCount() uint32
	VertexBufferSize() uint64
	IndexBufferSize() uint64
}

/**
 * @brief Immutable CPU side mesh: vertices in a given layout plus 32 bit indices.
 */
type MeshData struct {
	Layout   VertexLayout
	Vertices []Vertex
	Indices  []uint32
}

var _ MeshSizer = (*MeshData)(nil)

func (m *MeshData) VertexCount() uint32 { return uint32(len(m.Vertices)) }

func (m *MeshData) IndexCount() uint32 { return uint32(len(m.Indices)) }

func (m *MeshData) VertexBufferSize() uint64 {
	return uint64(len(m.Vertices)) * uint64(m.Layout.Stride())
}

func (m *MeshData) IndexBufferSize() uint64 {
	return uint64(len(m.Indices)) * 4
}

// Validate checks the mesh can be uploaded: non-empty, indices in range.
func (m *MeshData) Validate() error {
	if len(m.Vertices) == 0 || len(m.Indices) == 0 {
		return fmt.Errorf("%w: empty mesh", core.ErrInvalidMesh)
	}
	for i, idx := range m.Indices {
		if int(idx) >= len(m.Vertices) {
			return fmt.Errorf("%w: index %d at %d out of range (%d vertices)", core.ErrInvalidMesh, idx, i, len(m.Vertices))
		}
	}
	return nil
}

// ValidateTriangles is Validate plus whole triangles, for meshes that are drawn.
func (m *MeshData) ValidateTriangles() error {
	if err := m.Validate(); err != nil {
		return err
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("%w: index count %d is not a multiple of 3", core.ErrInvalidMesh, len(m.Indices))
	}
	return nil
}

// VertexBytes packs the vertices tightly, little-endian, in layout order.
func (m *MeshData) VertexBytes() []byte {
	stride := int(m.Layout.Stride())
	out := make([]byte, len(m.Vertices)*stride)
	for i, v := range m.Vertices {
		b := out[i*stride:]
		putFloats(b, v.Position[:]...)
		putFloats(b[12:], v.Color[:]...)
		if m.Layout == VertexLayoutTextured {
			putFloats(b[24:], v.TexCoord[:]...)
		}
	}
	return out
}

// IndexBytes packs the indices as little-endian uint32.
func (m *MeshData) IndexBytes() []byte {
	out := make([]byte, len(m.Indices)*4)
	for i, idx := range m.Indices {
		binary.LittleEndian.PutUint32(out[i*4:], idx)
	}
	return out
}

// DecodeVertices is the inverse of VertexBytes.
func DecodeVertices(layout VertexLayout, data []byte) ([]Vertex, error) {
	stride := int(layout.Stride())
	if len(data)%stride != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of stride %d", core.ErrInvalidMesh, len(data), stride)
	}
	vertices := make([]Vertex, len(data)/stride)
	for i := range vertices {
		b := data[i*stride:]
		v := &vertices[i]
		getFloats(b, v.Position[:])
		getFloats(b[12:], v.Color[:])
		if layout == VertexLayoutTextured {
			getFloats(b[24:], v.TexCoord[:])
		}
	}
	return vertices, nil
}

// DecodeIndices is the inverse of IndexBytes.
func DecodeIndices(data []byte) ([]uint32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of 4", core.ErrInvalidMesh, len(data))
	}
	indices := make([]uint32, len(data)/4)
	for i := range indices {
		indices[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return indices, nil
}

func putFloats(b []byte, fs ...float32) {
	for i, f := range fs {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(f))
	}
}

func getFloats(b []byte, dst []float32) {
	for i := range dst {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
}
