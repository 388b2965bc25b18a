package metadata

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/vkscene/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func syntheticMesh(layout VertexLayout, vertexCount, indexCount int) *MeshData {
	m := &MeshData{Layout: layout}
	for i := 0; i < vertexCount; i++ {
		f := float32(i)
		v := Vertex{
			Position: mgl32.Vec3{f, -f, f * 0.5},
			Color:    mgl32.Vec3{1, 0.25, f / 7},
		}
		if layout == VertexLayoutTextured {
			v.TexCoord = mgl32.Vec2{f / 3, 1 - f/3}
		}
		m.Vertices = append(m.Vertices, v)
	}
	for i := 0; i < indexCount; i++ {
		m.Indices = append(m.Indices, uint32((i*7919)%vertexCount))
	}
	return m
}

func TestVertexLayoutStride(t *testing.T) {
	assert.Equal(t, uint32(24), VertexLayoutSimple.Stride())
	assert.Equal(t, uint32(32), VertexLayoutTextured.Stride())
	assert.Len(t, VertexLayoutSimple.Attributes(), 2)

	attrs := VertexLayoutTextured.Attributes()
	require.Len(t, attrs, 3)
	assert.Equal(t, uint32(24), attrs[2].Offset)
	assert.Equal(t, AttributeFormatFloat32x2, attrs[2].Format)
}

func TestMeshBytesRoundTrip(t *testing.T) {
	for _, layout := range []VertexLayout{VertexLayoutSimple, VertexLayoutTextured} {
		for _, n := range []int{1, 3, 100000} {
			t.Run(fmt.Sprintf("%s/%d", layout, n), func(t *testing.T) {
				m := syntheticMesh(layout, n, n)

				vb := m.VertexBytes()
				ib := m.IndexBytes()
				assert.Equal(t, m.VertexBufferSize(), uint64(len(vb)))
				assert.Equal(t, m.IndexBufferSize(), uint64(len(ib)))

				vertices, err := DecodeVertices(layout, vb)
				require.NoError(t, err)
				indices, err := DecodeIndices(ib)
				require.NoError(t, err)

				assert.Equal(t, m.Vertices, vertices)
				assert.Equal(t, m.Indices, indices)
			})
		}
	}
}

func TestDecodeRejectsPartialData(t *testing.T) {
	_, err := DecodeVertices(VertexLayoutTextured, make([]byte, 33))
	assert.True(t, errors.Is(err, core.ErrInvalidMesh))

	_, err = DecodeIndices(make([]byte, 6))
	assert.True(t, errors.Is(err, core.ErrInvalidMesh))
}

func TestMeshValidate(t *testing.T) {
	for _, n := range []int{1, 3, 100000} {
		assert.NoError(t, syntheticMesh(VertexLayoutTextured, n, n).Validate(), "n=%d", n)
	}

	assert.ErrorIs(t, (&MeshData{}).Validate(), core.ErrInvalidMesh)
	assert.ErrorIs(t, syntheticMesh(VertexLayoutSimple, 3, 0).Validate(), core.ErrInvalidMesh)

	outOfRange := syntheticMesh(VertexLayoutSimple, 3, 3)
	outOfRange.Indices[1] = 3
	assert.ErrorIs(t, outOfRange.Validate(), core.ErrInvalidMesh)
}

func TestMeshValidateTriangles(t *testing.T) {
	assert.NoError(t, syntheticMesh(VertexLayoutTextured, 4, 6).ValidateTriangles())

	partial := syntheticMesh(VertexLayoutSimple, 4, 4)
	assert.NoError(t, partial.Validate())
	assert.ErrorIs(t, partial.ValidateTriangles(), core.ErrInvalidMesh)

	assert.ErrorIs(t, (&MeshData{}).ValidateTriangles(), core.ErrInvalidMesh)
}

func TestPushConstantAndUBOSize(t *testing.T) {
	assert.Equal(t, uint32(64), PushConstantSize)
	assert.Equal(t, uint64(128), ViewProjUBOSize)
}
