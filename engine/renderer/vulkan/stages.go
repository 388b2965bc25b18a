package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkscene/engine/core"
	"github.com/spaghettifunk/vkscene/engine/renderer/frame"
	"github.com/spaghettifunk/vkscene/engine/renderer/metadata"
)

// stages lists the swapchain dependent objects in creation order. The
// lifecycle destroys them in reverse.
func (vr *VulkanRenderer) stages() []frame.Stage {
	return []frame.Stage{
		{Name: "swapchain", Create: vr.createSwapchain, Destroy: vr.destroySwapchain},
		{Name: "image views", Create: vr.createImageViews, Destroy: vr.destroyImageViews},
		{Name: "render pass", Create: vr.createRenderpass, Destroy: vr.destroyRenderpass},
		{Name: "pipeline", Create: vr.createPipeline, Destroy: vr.destroyPipeline},
		{Name: "color target", Create: vr.createColorTarget, Destroy: vr.destroyColorTarget},
		{Name: "depth target", Create: vr.createDepthTarget, Destroy: vr.destroyDepthTarget},
		{Name: "framebuffers", Create: vr.createFramebuffers, Destroy: vr.destroyFramebuffers},
		{Name: "uniforms", Create: vr.createUniforms, Destroy: vr.destroyUniforms},
		{Name: "command buffers", Create: vr.createCommandBuffers, Destroy: vr.destroyCommandBuffers},
	}
}

func (vr *VulkanRenderer) createSwapchain(extent frame.Extent) error {
	sc, err := SwapchainCreate(vr.context, extent)
	if err != nil {
		return err
	}
	vr.context.Swapchain = sc
	return nil
}

func (vr *VulkanRenderer) destroySwapchain() {
	if vr.context.Swapchain != nil {
		vr.context.Swapchain.Destroy(vr.context)
		vr.context.Swapchain = nil
	}
}

func (vr *VulkanRenderer) createImageViews(frame.Extent) error {
	return vr.context.Swapchain.CreateViews(vr.context)
}

func (vr *VulkanRenderer) destroyImageViews() {
	vr.context.Swapchain.DestroyViews(vr.context)
}

func (vr *VulkanRenderer) createRenderpass(frame.Extent) error {
	rp, err := RenderpassCreate(vr.context, vr.context.Device.MaxSamples, 0.0, 0.0, 0.0, 1.0, 1.0, 0)
	if err != nil {
		return err
	}
	vr.context.MainRenderpass = rp
	return nil
}

func (vr *VulkanRenderer) destroyRenderpass() {
	if vr.context.MainRenderpass != nil {
		vr.context.MainRenderpass.RenderpassDestroy(vr.context)
		vr.context.MainRenderpass = nil
	}
}

func (vr *VulkanRenderer) createPipeline(extent frame.Extent) error {
	vertex, err := NewShaderStage(vr.context, vr.vertexShader, vk.ShaderStageVertexBit)
	if err != nil {
		return err
	}
	defer vertex.Destroy(vr.context)
	fragment, err := NewShaderStage(vr.context, vr.fragmentShader, vk.ShaderStageFragmentBit)
	if err != nil {
		return err
	}
	defer fragment.Destroy(vr.context)

	pipeline, err := NewGraphicsPipeline(vr.context, &VulkanPipelineConfig{
		Renderpass:           vr.context.MainRenderpass,
		Layout:               metadata.VertexLayoutTextured,
		DescriptorSetLayouts: []vk.DescriptorSetLayout{vr.context.DescriptorSetLayout},
		Stages:               []vk.PipelineShaderStageCreateInfo{vertex.ShaderStageCreateInfo, fragment.ShaderStageCreateInfo},
		Extent:               vk.Extent2D{Width: extent.Width, Height: extent.Height},
		CullMode:             metadata.FaceCullModeBack,
		Samples:              vr.context.Device.MaxSamples,
		PushConstantSize:     metadata.PushConstantSize,
	})
	if err != nil {
		return err
	}
	vr.context.Pipeline = pipeline
	return nil
}

func (vr *VulkanRenderer) destroyPipeline() {
	if vr.context.Pipeline != nil {
		vr.context.Pipeline.Destroy(vr.context)
		vr.context.Pipeline = nil
	}
}

// transitionOnce records a single layout transition and waits for it.
func (vr *VulkanRenderer) transitionOnce(image *VulkanImage, newLayout vk.ImageLayout) error {
	return singleUse(vr.context, func(cb *VulkanCommandBuffer) error {
		return image.TransitionLayout(cb, vk.ImageLayoutUndefined, newLayout)
	})
}

func (vr *VulkanRenderer) createColorTarget(extent frame.Extent) error {
	samples := vr.context.Device.MaxSamples
	if samples == vk.SampleCount1Bit {
		// Render straight into the swapchain image.
		return nil
	}
	image, err := ImageCreate(vr.context, ImageConfig{
		Width:       extent.Width,
		Height:      extent.Height,
		MipLevels:   1,
		Samples:     samples,
		Format:      vr.context.Swapchain.ImageFormat.Format,
		Tiling:      vk.ImageTilingOptimal,
		Usage:       vk.ImageUsageFlags(vk.ImageUsageTransientAttachmentBit) | vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		MemoryFlags: deviceLocalMemory,
		Aspect:      vk.ImageAspectFlags(vk.ImageAspectColorBit),
	})
	if err != nil {
		return err
	}
	vr.context.ColorTarget = image
	if err := vr.transitionOnce(image, vk.ImageLayoutColorAttachmentOptimal); err != nil {
		vr.destroyColorTarget()
		return err
	}
	return nil
}

func (vr *VulkanRenderer) destroyColorTarget() {
	if vr.context.ColorTarget != nil {
		vr.context.ColorTarget.Destroy(vr.context)
		vr.context.ColorTarget = nil
	}
}

func (vr *VulkanRenderer) createDepthTarget(extent frame.Extent) error {
	image, err := ImageCreate(vr.context, ImageConfig{
		Width:       extent.Width,
		Height:      extent.Height,
		MipLevels:   1,
		Samples:     vr.context.Device.MaxSamples,
		Format:      vr.context.Device.DepthFormat,
		Tiling:      vk.ImageTilingOptimal,
		Usage:       vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
		MemoryFlags: deviceLocalMemory,
		Aspect:      vk.ImageAspectFlags(vk.ImageAspectDepthBit),
	})
	if err != nil {
		return err
	}
	vr.context.DepthTarget = image
	if err := vr.transitionOnce(image, vk.ImageLayoutDepthStencilAttachmentOptimal); err != nil {
		vr.destroyDepthTarget()
		return err
	}
	return nil
}

func (vr *VulkanRenderer) destroyDepthTarget() {
	if vr.context.DepthTarget != nil {
		vr.context.DepthTarget.Destroy(vr.context)
		vr.context.DepthTarget = nil
	}
}

func (vr *VulkanRenderer) createFramebuffers(extent frame.Extent) error {
	ctx := vr.context
	sc := ctx.Swapchain
	ctx.Framebuffers = make([]*VulkanFramebuffer, 0, sc.ImageCount)
	for i := uint32(0); i < sc.ImageCount; i++ {
		var attachments []vk.ImageView
		if ctx.ColorTarget != nil {
			attachments = []vk.ImageView{ctx.ColorTarget.View, ctx.DepthTarget.View, sc.Views[i]}
		} else {
			attachments = []vk.ImageView{sc.Views[i], ctx.DepthTarget.View}
		}
		fb, err := FramebufferCreate(ctx, ctx.MainRenderpass, extent.Width, extent.Height, attachments)
		if err != nil {
			vr.destroyFramebuffers()
			return err
		}
		ctx.Framebuffers = append(ctx.Framebuffers, fb)
	}
	return nil
}

func (vr *VulkanRenderer) destroyFramebuffers() {
	for _, fb := range vr.context.Framebuffers {
		fb.Destroy(vr.context)
	}
	vr.context.Framebuffers = nil
}

// createUniforms allocates one host coherent UBO and one descriptor set per
// swapchain image.
func (vr *VulkanRenderer) createUniforms(frame.Extent) error {
	ctx := vr.context
	count := ctx.Swapchain.ImageCount

	ctx.UniformBuffers = make([]*VulkanBuffer, 0, count)
	for i := uint32(0); i < count; i++ {
		ubo, err := BufferCreate(ctx, metadata.ViewProjUBOSize, vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit), hostVisibleCoherent)
		if err != nil {
			vr.destroyUniforms()
			return err
		}
		ctx.UniformBuffers = append(ctx.UniformBuffers, ubo)
	}

	pool, err := DescriptorPoolCreate(ctx, count)
	if err != nil {
		vr.destroyUniforms()
		return err
	}
	ctx.DescriptorPool = pool

	sets, err := DescriptorSetsAllocate(ctx, pool, ctx.DescriptorSetLayout, count)
	if err != nil {
		vr.destroyUniforms()
		return err
	}
	ctx.DescriptorSets = sets
	for i, set := range sets {
		DescriptorSetWrite(ctx, set, ctx.UniformBuffers[i], vr.currentTexture())
	}
	return nil
}

func (vr *VulkanRenderer) destroyUniforms() {
	ctx := vr.context
	if ctx.DescriptorPool != nil {
		// Frees the sets as well.
		vk.DestroyDescriptorPool(ctx.Device.LogicalDevice, ctx.DescriptorPool, ctx.Allocator)
		ctx.DescriptorPool = nil
	}
	ctx.DescriptorSets = nil
	for _, ubo := range ctx.UniformBuffers {
		ubo.Destroy(ctx)
	}
	ctx.UniformBuffers = nil
}

func (vr *VulkanRenderer) createCommandBuffers(frame.Extent) error {
	ctx := vr.context
	ctx.GraphicsCommandBuffers = make([]*VulkanCommandBuffer, 0, ctx.Swapchain.ImageCount)
	for i := uint32(0); i < ctx.Swapchain.ImageCount; i++ {
		cb, err := NewVulkanCommandBuffer(ctx, ctx.Device.GraphicsCommandPool, true)
		if err != nil {
			vr.destroyCommandBuffers()
			return err
		}
		ctx.GraphicsCommandBuffers = append(ctx.GraphicsCommandBuffers, cb)
	}
	core.LogDebug("Vulkan command buffers created.")
	return nil
}

func (vr *VulkanRenderer) destroyCommandBuffers() {
	for _, cb := range vr.context.GraphicsCommandBuffers {
		cb.Free(vr.context, vr.context.Device.GraphicsCommandPool)
	}
	vr.context.GraphicsCommandBuffers = nil
}
