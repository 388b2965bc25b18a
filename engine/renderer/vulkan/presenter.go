package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkscene/engine/renderer/frame"
)

// The methods below implement frame.Presenter.

func (vr *VulkanRenderer) FramesInFlight() uint32 {
	return uint32(len(vr.context.FrameSlots))
}

func (vr *VulkanRenderer) ImageCount() uint32 {
	if vr.context.Swapchain == nil {
		return 0
	}
	return vr.context.Swapchain.ImageCount
}

func (vr *VulkanRenderer) WaitFence(slot uint32) error {
	return vr.context.FrameSlots[slot].InFlight.FenceWait(vr.context, vk.MaxUint64)
}

func (vr *VulkanRenderer) Acquire(slot uint32) (uint32, frame.Status, error) {
	ctx := vr.context
	ctx.CurrentFrame = slot
	image, status, err := ctx.Swapchain.AcquireNextImage(ctx, ctx.FrameSlots[slot].ImageAvailable)
	if err == nil && status != frame.StatusOutOfDate {
		ctx.ImageIndex = image
	}
	return image, status, err
}

func (vr *VulkanRenderer) ResetFence(slot uint32) error {
	return vr.context.FrameSlots[slot].InFlight.FenceReset(vr.context)
}

// Submit waits on image-available at color output and signals
// render-finished and the slot fence.
func (vr *VulkanRenderer) Submit(slot, image uint32) error {
	ctx := vr.context
	fs := ctx.FrameSlots[slot]
	commandBuffer := ctx.GraphicsCommandBuffers[image]

	submitInfo := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{fs.ImageAvailable},
		PWaitDstStageMask:    []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{commandBuffer.Handle},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{fs.RenderFinished},
	}

	err := ctx.lockPool.SafeQueueCall(ctx.Device.GraphicsQueueIndex, func() error {
		return vkCheck(vk.QueueSubmit(ctx.Device.GraphicsQueue, 1, []vk.SubmitInfo{submitInfo}, fs.InFlight.Handle), "vkQueueSubmit")
	})
	if err != nil {
		return err
	}
	commandBuffer.UpdateSubmitted()
	return nil
}

func (vr *VulkanRenderer) Present(slot, image uint32) (frame.Status, error) {
	ctx := vr.context
	return ctx.Swapchain.Present(ctx, ctx.FrameSlots[slot].RenderFinished, image)
}
