package vulkan

import (
	vk "github.com/goki/vulkan"
)

// FrameSlot is one entry of the frames-in-flight ring.
type FrameSlot struct {
	ImageAvailable vk.Semaphore
	RenderFinished vk.Semaphore
	InFlight       *VulkanFence
}

func newSemaphore(context *VulkanContext) (vk.Semaphore, error) {
	info := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}
	var semaphore vk.Semaphore
	if err := vkCheck(vk.CreateSemaphore(context.Device.LogicalDevice, &info, context.Allocator, &semaphore), "vkCreateSemaphore"); err != nil {
		return vk.NullSemaphore, err
	}
	return semaphore, nil
}

// FrameSlotsCreate creates count slots. Fences start signaled so the first
// wait on every slot returns immediately.
func FrameSlotsCreate(context *VulkanContext, count uint32) ([]*FrameSlot, error) {
	slots := make([]*FrameSlot, 0, count)
	for i := uint32(0); i < count; i++ {
		slot := &FrameSlot{}
		slots = append(slots, slot)

		var err error
		if slot.ImageAvailable, err = newSemaphore(context); err != nil {
			FrameSlotsDestroy(context, slots)
			return nil, err
		}
		if slot.RenderFinished, err = newSemaphore(context); err != nil {
			FrameSlotsDestroy(context, slots)
			return nil, err
		}
		if slot.InFlight, err = NewFence(context, true); err != nil {
			FrameSlotsDestroy(context, slots)
			return nil, err
		}
	}
	return slots, nil
}

func FrameSlotsDestroy(context *VulkanContext, slots []*FrameSlot) {
	for _, slot := range slots {
		if slot.ImageAvailable != vk.NullSemaphore {
			vk.DestroySemaphore(context.Device.LogicalDevice, slot.ImageAvailable, context.Allocator)
			slot.ImageAvailable = vk.NullSemaphore
		}
		if slot.RenderFinished != vk.NullSemaphore {
			vk.DestroySemaphore(context.Device.LogicalDevice, slot.RenderFinished, context.Allocator)
			slot.RenderFinished = vk.NullSemaphore
		}
		if slot.InFlight != nil {
			slot.InFlight.FenceDestroy(context)
			slot.InFlight = nil
		}
	}
}
