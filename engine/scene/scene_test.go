package scene

import (
	stdmath "math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/vkscene/engine/core"
	"github.com/spaghettifunk/vkscene/engine/math"
	"github.com/spaghettifunk/vkscene/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGPU struct {
	nextMesh    metadata.MeshHandle
	nextTexture metadata.TextureHandle
	meshes      map[metadata.MeshHandle]bool
	textures    map[metadata.TextureHandle]bool
}

func newFakeGPU() *fakeGPU {
	return &fakeGPU{
		meshes:   map[metadata.MeshHandle]bool{},
		textures: map[metadata.TextureHandle]bool{},
	}
}

func (g *fakeGPU) UploadMesh(*metadata.MeshData) (metadata.MeshHandle, error) {
	g.nextMesh++
	g.meshes[g.nextMesh] = true
	return g.nextMesh, nil
}

func (g *fakeGPU) DestroyMesh(handle metadata.MeshHandle) { delete(g.meshes, handle) }

func (g *fakeGPU) UploadTexture(*metadata.ImageData) (metadata.TextureHandle, error) {
	g.nextTexture++
	g.textures[g.nextTexture] = true
	return g.nextTexture, nil
}

func (g *fakeGPU) DestroyTexture(handle metadata.TextureHandle) { delete(g.textures, handle) }

func triangle() *metadata.MeshData {
	return &metadata.MeshData{
		Layout: metadata.VertexLayoutTextured,
		Vertices: []metadata.Vertex{
			{Position: mgl32.Vec3{0, 1, 0}},
			{Position: mgl32.Vec3{-1, 0, 0}},
			{Position: mgl32.Vec3{1, 0, 0}},
		},
		Indices: []uint32{0, 1, 2},
	}
}

func TestInstanceAnimateFourSecondsIsHalfTurn(t *testing.T) {
	model := NewModel("tri", triangle(), nil)
	instance := NewInstance(model, nil)

	for i := 0; i < 4; i++ {
		instance.Animate(1)
	}

	want := mgl32.HomogRotate3DY(stdmath.Pi)
	assert.True(t, math.Mat4ApproxEqual(want, instance.ModelMatrix(), 1e-5), "got %v", instance.ModelMatrix())
}

func TestModelRefCountReleasesGPUResources(t *testing.T) {
	gpu := newFakeGPU()
	model := NewModel("tri", triangle(), &metadata.ImageData{ChannelCount: 4, Width: 1, Height: 1, Pixels: []uint8{255, 255, 255, 255}})
	require.NoError(t, model.Upload(gpu))
	assert.Equal(t, 1, model.RefCount())
	assert.Len(t, gpu.meshes, 1)
	assert.Len(t, gpu.textures, 1)

	a := NewInstance(model, nil)
	b := NewInstance(model, math.TransformFromPosition(mgl32.Vec3{5, 0, 0}))
	assert.Equal(t, 3, model.RefCount())

	model.Release()
	a.Destroy()
	assert.Len(t, gpu.meshes, 1)

	b.Destroy()
	assert.Zero(t, model.RefCount())
	assert.Empty(t, gpu.meshes)
	assert.Empty(t, gpu.textures)
	_, ok := core.IdentifierOwner(model.ID)
	assert.False(t, ok)
}

func TestModelUploadRejectsInvalidMesh(t *testing.T) {
	gpu := newFakeGPU()
	model := NewModel("empty", &metadata.MeshData{}, nil)
	assert.ErrorIs(t, model.Upload(gpu), core.ErrInvalidMesh)
	assert.Empty(t, gpu.meshes)
}

func TestScenePacketGroupsInstancesByMesh(t *testing.T) {
	gpu := newFakeGPU()
	fighter := NewModel("fighter", triangle(), nil)
	require.NoError(t, fighter.Upload(gpu))
	other := NewModel("other", triangle(), nil)
	require.NoError(t, other.Upload(gpu))

	s := New(NewCamera(4.0 / 3.0))
	s.Add(NewInstance(fighter, nil))
	s.Add(NewInstance(other, nil))
	s.Add(NewInstance(fighter, math.TransformFromPosition(mgl32.Vec3{3, 0, 0})))

	packet := s.Packet(0.5)
	assert.Equal(t, 0.5, packet.DeltaTime)
	assert.Equal(t, s.Camera.View, packet.View)
	require.Len(t, packet.Draws, 2)
	assert.Equal(t, fighter.MeshHandle, packet.Draws[0].Mesh)
	assert.Len(t, packet.Draws[0].Models, 2)
	assert.Equal(t, uint32(3), packet.Draws[0].IndexCount)
	assert.Len(t, packet.Draws[1].Models, 1)

	s.Destroy()
	fighter.Release()
	other.Release()
	assert.Empty(t, gpu.meshes)
}
