package vulkan

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkscene/engine/core"
	"github.com/spaghettifunk/vkscene/engine/renderer/metadata"
)

// uboBytes views the uniform block as raw bytes. ViewProjUBO is two
// column-major matrices with no padding, matching the std140 layout.
func uboBytes(ubo *metadata.ViewProjUBO) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(ubo)), metadata.ViewProjUBOSize)
}

// Record rewrites the command buffer and the uniform buffer of image. The
// caller must have waited on the fence guarding image.
func (vr *VulkanRenderer) Record(image uint32, packet *metadata.RenderPacket) error {
	ctx := vr.context
	if int(image) >= len(ctx.GraphicsCommandBuffers) {
		return fmt.Errorf("no command buffer for image %d", image)
	}

	ubo := packet.UBO()
	if err := ctx.UniformBuffers[image].LoadData(ctx, 0, uboBytes(&ubo)); err != nil {
		return err
	}

	cb := ctx.GraphicsCommandBuffers[image]
	if err := cb.Reset(); err != nil {
		return err
	}
	if err := cb.Begin(false, false, true); err != nil {
		return err
	}

	extent := ctx.Swapchain.Extent
	ctx.MainRenderpass.RenderpassBegin(cb, ctx.Framebuffers[image].Handle, extent)

	vk.CmdSetViewport(cb.Handle, 0, 1, []vk.Viewport{{
		X:        0,
		Y:        0,
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MinDepth: 0.0,
		MaxDepth: 1.0,
	}})
	vk.CmdSetScissor(cb.Handle, 0, 1, []vk.Rect2D{{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: extent,
	}})

	ctx.Pipeline.Bind(cb, vk.PipelineBindPointGraphics)
	vk.CmdBindDescriptorSets(cb.Handle, vk.PipelineBindPointGraphics, ctx.Pipeline.PipelineLayout,
		0, 1, []vk.DescriptorSet{ctx.DescriptorSets[image]}, 0, nil)

	for _, draw := range drawList(vr.meshes, packet.Draws) {
		vk.CmdBindVertexBuffers(cb.Handle, 0, 1, []vk.Buffer{draw.Mesh.VertexBuffer.Handle}, []vk.DeviceSize{0})
		vk.CmdBindIndexBuffer(cb.Handle, draw.Mesh.IndexBuffer.Handle, 0, vk.IndexTypeUint32)

		for i := range draw.Models {
			model := draw.Models[i]
			vr.pushModel(cb, &model)
			vk.CmdDrawIndexed(cb.Handle, draw.IndexCount, 1, 0, 0, 0)
		}
	}

	ctx.MainRenderpass.RenderpassEnd(cb)
	return cb.End()
}

// meshDraw is one bind of a mesh's buffers followed by one push constant and
// one indexed draw per model matrix.
type meshDraw struct {
	Mesh       *VulkanMesh
	IndexCount uint32
	Models     []mgl32.Mat4
}

// drawList resolves the packet's draws against the uploaded meshes. Unknown
// handles are skipped. An IndexCount of zero, or one past the end of the
// index buffer, draws the whole mesh.
func drawList(meshes map[metadata.MeshHandle]*VulkanMesh, draws []metadata.DrawRef) []meshDraw {
	out := make([]meshDraw, 0, len(draws))
	for _, draw := range draws {
		mesh, ok := meshes[draw.Mesh]
		if !ok {
			core.LogWarn("skipping draw of unknown mesh %d", draw.Mesh)
			continue
		}
		if len(draw.Models) == 0 {
			continue
		}
		indexCount := draw.IndexCount
		if indexCount == 0 || indexCount > mesh.IndexCount {
			indexCount = mesh.IndexCount
		}
		out = append(out, meshDraw{Mesh: mesh, IndexCount: indexCount, Models: draw.Models})
	}
	return out
}

func (vr *VulkanRenderer) pushModel(cb *VulkanCommandBuffer, model *mgl32.Mat4) {
	vk.CmdPushConstants(cb.Handle, vr.context.Pipeline.PipelineLayout,
		vk.ShaderStageFlags(vk.ShaderStageVertexBit), 0, metadata.PushConstantSize, unsafe.Pointer(model))
}
