package vulkan

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/vkscene/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrawList(t *testing.T) {
	fighter := &VulkanMesh{IndexCount: 36}
	cube := &VulkanMesh{IndexCount: 12}
	meshes := map[metadata.MeshHandle]*VulkanMesh{1: fighter, 2: cube}

	a := mgl32.Translate3D(1, 0, 0)
	b := mgl32.Translate3D(0, 2, 0)
	c := mgl32.HomogRotate3DY(1)

	tests := []struct {
		name  string
		draws []metadata.DrawRef
		want  []meshDraw
	}{
		{
			name:  "instances of one shared model",
			draws: []metadata.DrawRef{{Mesh: 1, IndexCount: 36, Models: []mgl32.Mat4{a, b, c}}},
			want:  []meshDraw{{Mesh: fighter, IndexCount: 36, Models: []mgl32.Mat4{a, b, c}}},
		},
		{
			name: "several meshes keep packet order",
			draws: []metadata.DrawRef{
				{Mesh: 2, IndexCount: 12, Models: []mgl32.Mat4{a}},
				{Mesh: 1, IndexCount: 36, Models: []mgl32.Mat4{b, c}},
			},
			want: []meshDraw{
				{Mesh: cube, IndexCount: 12, Models: []mgl32.Mat4{a}},
				{Mesh: fighter, IndexCount: 36, Models: []mgl32.Mat4{b, c}},
			},
		},
		{
			name: "unknown mesh is skipped",
			draws: []metadata.DrawRef{
				{Mesh: 9, IndexCount: 3, Models: []mgl32.Mat4{a}},
				{Mesh: 2, IndexCount: 12, Models: []mgl32.Mat4{b}},
			},
			want: []meshDraw{{Mesh: cube, IndexCount: 12, Models: []mgl32.Mat4{b}}},
		},
		{
			name:  "zero index count draws the whole mesh",
			draws: []metadata.DrawRef{{Mesh: 1, Models: []mgl32.Mat4{a}}},
			want:  []meshDraw{{Mesh: fighter, IndexCount: 36, Models: []mgl32.Mat4{a}}},
		},
		{
			name:  "oversized index count is clamped",
			draws: []metadata.DrawRef{{Mesh: 2, IndexCount: 1000, Models: []mgl32.Mat4{a}}},
			want:  []meshDraw{{Mesh: cube, IndexCount: 12, Models: []mgl32.Mat4{a}}},
		},
		{
			name:  "partial index count is kept",
			draws: []metadata.DrawRef{{Mesh: 1, IndexCount: 6, Models: []mgl32.Mat4{a}}},
			want:  []meshDraw{{Mesh: fighter, IndexCount: 6, Models: []mgl32.Mat4{a}}},
		},
		{
			name:  "no instances",
			draws: []metadata.DrawRef{{Mesh: 1, IndexCount: 36}},
			want:  []meshDraw{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := drawList(meshes, tt.draws)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.Same(t, tt.want[i].Mesh, got[i].Mesh)
				assert.Equal(t, tt.want[i].IndexCount, got[i].IndexCount)
				assert.Equal(t, tt.want[i].Models, got[i].Models)
			}
		})
	}
}
