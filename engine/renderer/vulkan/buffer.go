package vulkan

import (
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/pkg/errors"
	"github.com/spaghettifunk/vkscene/engine/core"
)

const (
	hostVisibleCoherent = vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit) | vk.MemoryPropertyFlags(vk.MemoryPropertyHostCoherentBit)
	deviceLocalMemory   = vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)
)

// VulkanBuffer is a buffer bound to its own allocation.
type VulkanBuffer struct {
	Handle      vk.Buffer
	Memory      vk.DeviceMemory
	Size        uint64
	Usage       vk.BufferUsageFlags
	MemoryFlags vk.MemoryPropertyFlags
}

func BufferCreate(context *VulkanContext, size uint64, usage vk.BufferUsageFlags, memoryFlags vk.MemoryPropertyFlags) (*VulkanBuffer, error) {
	if size == 0 {
		return nil, errors.New("cannot create a zero sized buffer")
	}
	buffer := &VulkanBuffer{
		Size:        size,
		Usage:       usage,
		MemoryFlags: memoryFlags,
	}

	bufferInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(size),
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive,
	}

	err := context.lockPool.SafeCall(MemoryManagement, func() error {
		var handle vk.Buffer
		if err := vkCheck(vk.CreateBuffer(context.Device.LogicalDevice, &bufferInfo, context.Allocator, &handle), "vkCreateBuffer"); err != nil {
			return err
		}
		buffer.Handle = handle

		var reqs vk.MemoryRequirements
		vk.GetBufferMemoryRequirements(context.Device.LogicalDevice, handle, &reqs)
		reqs.Deref()

		memory, err := allocateMemory(context, reqs, memoryFlags)
		if err != nil {
			return err
		}
		buffer.Memory = memory
		return vkCheck(vk.BindBufferMemory(context.Device.LogicalDevice, handle, memory, 0), "vkBindBufferMemory")
	})
	if err != nil {
		buffer.Destroy(context)
		return nil, err
	}
	return buffer, nil
}

// Destroy releases the buffer and its memory. Calling it again is a no-op.
func (b *VulkanBuffer) Destroy(context *VulkanContext) {
	context.lockPool.SafeCall(MemoryManagement, func() error {
		if b.Handle != vk.NullBuffer {
			vk.DestroyBuffer(context.Device.LogicalDevice, b.Handle, context.Allocator)
			b.Handle = vk.NullBuffer
		}
		if b.Memory != vk.NullDeviceMemory {
			vk.FreeMemory(context.Device.LogicalDevice, b.Memory, context.Allocator)
			b.Memory = vk.NullDeviceMemory
		}
		return nil
	})
}

// LoadData copies data into a host visible buffer at offset.
func (b *VulkanBuffer) LoadData(context *VulkanContext, offset uint64, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if offset+uint64(len(data)) > b.Size {
		return errors.Errorf("write of %d bytes at %d overflows buffer of %d bytes", len(data), offset, b.Size)
	}
	var ptr unsafe.Pointer
	if err := vkCheck(vk.MapMemory(context.Device.LogicalDevice, b.Memory, vk.DeviceSize(offset), vk.DeviceSize(len(data)), 0, &ptr), "vkMapMemory"); err != nil {
		return err
	}
	copy(unsafe.Slice((*byte)(ptr), len(data)), data)
	vk.UnmapMemory(context.Device.LogicalDevice, b.Memory)
	return nil
}

// ReadData copies size bytes out of a host visible buffer.
func (b *VulkanBuffer) ReadData(context *VulkanContext, size uint64) ([]byte, error) {
	var ptr unsafe.Pointer
	if err := vkCheck(vk.MapMemory(context.Device.LogicalDevice, b.Memory, 0, vk.DeviceSize(size), 0, &ptr), "vkMapMemory"); err != nil {
		return nil, err
	}
	out := make([]byte, size)
	copy(out, unsafe.Slice((*byte)(ptr), size))
	vk.UnmapMemory(context.Device.LogicalDevice, b.Memory)
	return out, nil
}

// CopyTo records a full copy of b into dst on a one-shot buffer and waits
// for it.
func (b *VulkanBuffer) CopyTo(context *VulkanContext, dst *VulkanBuffer, size uint64) error {
	return singleUse(context, func(cb *VulkanCommandBuffer) error {
		vk.CmdCopyBuffer(cb.Handle, b.Handle, dst.Handle, 1, []vk.BufferCopy{{
			SrcOffset: 0,
			DstOffset: 0,
			Size:      vk.DeviceSize(size),
		}})
		return nil
	})
}

func stagingBuffer(context *VulkanContext, data []byte) (*VulkanBuffer, error) {
	staging, err := BufferCreate(context, uint64(len(data)), vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit), hostVisibleCoherent)
	if err != nil {
		return nil, err
	}
	if err := staging.LoadData(context, 0, data); err != nil {
		staging.Destroy(context)
		return nil, err
	}
	return staging, nil
}

// BufferUploadStaged creates a device local buffer holding data. The bytes go
// through a host visible staging buffer that is freed before returning.
func BufferUploadStaged(context *VulkanContext, data []byte, usage vk.BufferUsageFlags) (*VulkanBuffer, error) {
	staging, err := stagingBuffer(context, data)
	if err != nil {
		return nil, err
	}
	defer staging.Destroy(context)

	buffer, err := BufferCreate(context, uint64(len(data)), vk.BufferUsageFlags(vk.BufferUsageTransferDstBit)|usage, deviceLocalMemory)
	if err != nil {
		return nil, err
	}
	if err := staging.CopyTo(context, buffer, uint64(len(data))); err != nil {
		buffer.Destroy(context)
		return nil, err
	}
	core.LogDebug("uploaded %d bytes to device local buffer", len(data))
	return buffer, nil
}

// BufferReadBack returns the contents of a buffer created with
// TRANSFER_SRC usage.
func BufferReadBack(context *VulkanContext, src *VulkanBuffer) ([]byte, error) {
	readback, err := BufferCreate(context, src.Size, vk.BufferUsageFlags(vk.BufferUsageTransferDstBit), hostVisibleCoherent)
	if err != nil {
		return nil, err
	}
	defer readback.Destroy(context)

	if err := src.CopyTo(context, readback, src.Size); err != nil {
		return nil, err
	}
	return readback.ReadData(context, src.Size)
}
