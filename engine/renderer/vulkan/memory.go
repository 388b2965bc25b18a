package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkscene/engine/core"
)

// MemoryTypeProvider exposes the memory types of a physical device.
type MemoryTypeProvider interface {
	MemoryTypeCount() uint32
	MemoryTypeFlags(index uint32) vk.MemoryPropertyFlags
}

// FindMemoryType returns the first memory type allowed by typeBits whose
// property flags include every bit of required.
func FindMemoryType(provider MemoryTypeProvider, typeBits uint32, required vk.MemoryPropertyFlags) (uint32, error) {
	for i := uint32(0); i < provider.MemoryTypeCount(); i++ {
		if typeBits&(1<<i) == 0 {
			continue
		}
		if provider.MemoryTypeFlags(i)&required == required {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: type bits %#x, flags %#x", core.ErrNoSuitableMemoryType, typeBits, uint32(required))
}

// deviceMemoryTypes adapts the cached properties of a physical device.
type deviceMemoryTypes struct {
	props vk.PhysicalDeviceMemoryProperties
}

func newDeviceMemoryTypes(pd vk.PhysicalDevice) *deviceMemoryTypes {
	var props vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(pd, &props)
	props.Deref()
	for i := uint32(0); i < props.MemoryTypeCount; i++ {
		props.MemoryTypes[i].Deref()
	}
	for i := uint32(0); i < props.MemoryHeapCount; i++ {
		props.MemoryHeaps[i].Deref()
	}
	return &deviceMemoryTypes{props: props}
}

func (d *deviceMemoryTypes) MemoryTypeCount() uint32 {
	return d.props.MemoryTypeCount
}

func (d *deviceMemoryTypes) MemoryTypeFlags(index uint32) vk.MemoryPropertyFlags {
	return d.props.MemoryTypes[index].PropertyFlags
}

// allocateMemory allocates memory matching the requirements and returns it
// unbound.
func allocateMemory(context *VulkanContext, reqs vk.MemoryRequirements, flags vk.MemoryPropertyFlags) (vk.DeviceMemory, error) {
	index, err := FindMemoryType(context.Device.Memory, reqs.MemoryTypeBits, flags)
	if err != nil {
		core.LogError(err.Error())
		return vk.NullDeviceMemory, err
	}

	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  reqs.Size,
		MemoryTypeIndex: index,
	}
	var memory vk.DeviceMemory
	if err := vkCheck(vk.AllocateMemory(context.Device.LogicalDevice, &allocInfo, context.Allocator, &memory), "vkAllocateMemory"); err != nil {
		return vk.NullDeviceMemory, err
	}
	return memory, nil
}
