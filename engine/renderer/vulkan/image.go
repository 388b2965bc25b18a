package vulkan

import (
	"math/bits"

	vk "github.com/goki/vulkan"
	"github.com/pkg/errors"
	"github.com/spaghettifunk/vkscene/engine/core"
)

type VulkanImage struct {
	Handle    vk.Image
	Memory    vk.DeviceMemory
	View      vk.ImageView
	Width     uint32
	Height    uint32
	MipLevels uint32
	Format    vk.Format
	Samples   vk.SampleCountFlagBits
	Aspect    vk.ImageAspectFlags
}

// ImageConfig describes a 2D image and the view created over all its levels.
type ImageConfig struct {
	Width, Height uint32
	MipLevels     uint32
	Samples       vk.SampleCountFlagBits
	Format        vk.Format
	Tiling        vk.ImageTiling
	Usage         vk.ImageUsageFlags
	MemoryFlags   vk.MemoryPropertyFlags
	Aspect        vk.ImageAspectFlags
}

// MipLevelCount is floor(log2(max(w, h))) + 1.
func MipLevelCount(width, height uint32) uint32 {
	largest := width
	if height > largest {
		largest = height
	}
	if largest == 0 {
		return 1
	}
	return uint32(bits.Len32(largest))
}

func createImageView(context *VulkanContext, image vk.Image, format vk.Format, aspect vk.ImageAspectFlags, mipLevels uint32) (vk.ImageView, error) {
	viewInfo := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     aspect,
			BaseMipLevel:   0,
			LevelCount:     mipLevels,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}
	var view vk.ImageView
	if err := vkCheck(vk.CreateImageView(context.Device.LogicalDevice, &viewInfo, context.Allocator, &view), "vkCreateImageView"); err != nil {
		return vk.NullImageView, err
	}
	return view, nil
}

func ImageCreate(context *VulkanContext, config ImageConfig) (*VulkanImage, error) {
	if config.MipLevels == 0 {
		config.MipLevels = 1
	}
	if config.Samples == 0 {
		config.Samples = vk.SampleCount1Bit
	}
	image := &VulkanImage{
		Width:     config.Width,
		Height:    config.Height,
		MipLevels: config.MipLevels,
		Format:    config.Format,
		Samples:   config.Samples,
		Aspect:    config.Aspect,
	}

	imageCreateInfo := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Extent: vk.Extent3D{
			Width:  config.Width,
			Height: config.Height,
			Depth:  1,
		},
		MipLevels:     config.MipLevels,
		ArrayLayers:   1,
		Format:        config.Format,
		Tiling:        config.Tiling,
		InitialLayout: vk.ImageLayoutUndefined,
		Usage:         config.Usage,
		Samples:       config.Samples,
		SharingMode:   vk.SharingModeExclusive,
	}

	err := context.lockPool.SafeCall(MemoryManagement, func() error {
		var handle vk.Image
		if err := vkCheck(vk.CreateImage(context.Device.LogicalDevice, &imageCreateInfo, context.Allocator, &handle), "vkCreateImage"); err != nil {
			return err
		}
		image.Handle = handle

		var reqs vk.MemoryRequirements
		vk.GetImageMemoryRequirements(context.Device.LogicalDevice, handle, &reqs)
		reqs.Deref()

		memory, err := allocateMemory(context, reqs, config.MemoryFlags)
		if err != nil {
			return err
		}
		image.Memory = memory
		return vkCheck(vk.BindImageMemory(context.Device.LogicalDevice, handle, memory, 0), "vkBindImageMemory")
	})
	if err != nil {
		image.Destroy(context)
		return nil, err
	}

	view, err := createImageView(context, image.Handle, config.Format, config.Aspect, config.MipLevels)
	if err != nil {
		image.Destroy(context)
		return nil, err
	}
	image.View = view
	return image, nil
}

func (vi *VulkanImage) Destroy(context *VulkanContext) {
	context.lockPool.SafeCall(MemoryManagement, func() error {
		if vi.View != vk.NullImageView {
			vk.DestroyImageView(context.Device.LogicalDevice, vi.View, context.Allocator)
			vi.View = vk.NullImageView
		}
		if vi.Handle != vk.NullImage {
			vk.DestroyImage(context.Device.LogicalDevice, vi.Handle, context.Allocator)
			vi.Handle = vk.NullImage
		}
		if vi.Memory != vk.NullDeviceMemory {
			vk.FreeMemory(context.Device.LogicalDevice, vi.Memory, context.Allocator)
			vi.Memory = vk.NullDeviceMemory
		}
		return nil
	})
}

// LayoutBarrier holds the access masks and stages of one layout transition.
type LayoutBarrier struct {
	SrcAccess vk.AccessFlags
	DstAccess vk.AccessFlags
	SrcStage  vk.PipelineStageFlags
	DstStage  vk.PipelineStageFlags
}

type layoutPair struct {
	from, to vk.ImageLayout
}

var layoutTransitions = map[layoutPair]LayoutBarrier{
	{vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal}: {
		SrcAccess: 0,
		DstAccess: vk.AccessFlags(vk.AccessTransferWriteBit),
		SrcStage:  vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit),
		DstStage:  vk.PipelineStageFlags(vk.PipelineStageTransferBit),
	},
	{vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal}: {
		SrcAccess: vk.AccessFlags(vk.AccessTransferWriteBit),
		DstAccess: vk.AccessFlags(vk.AccessShaderReadBit),
		SrcStage:  vk.PipelineStageFlags(vk.PipelineStageTransferBit),
		DstStage:  vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit),
	},
	{vk.ImageLayoutUndefined, vk.ImageLayoutDepthStencilAttachmentOptimal}: {
		SrcAccess: 0,
		DstAccess: vk.AccessFlags(vk.AccessDepthStencilAttachmentReadBit) | vk.AccessFlags(vk.AccessDepthStencilAttachmentWriteBit),
		SrcStage:  vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit),
		DstStage:  vk.PipelineStageFlags(vk.PipelineStageEarlyFragmentTestsBit),
	},
	{vk.ImageLayoutUndefined, vk.ImageLayoutColorAttachmentOptimal}: {
		SrcAccess: 0,
		DstAccess: vk.AccessFlags(vk.AccessColorAttachmentReadBit) | vk.AccessFlags(vk.AccessColorAttachmentWriteBit),
		SrcStage:  vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit),
		DstStage:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
	},
}

// LayoutTransition looks up the barrier parameters for moving an image from
// oldLayout to newLayout.
func LayoutTransition(oldLayout, newLayout vk.ImageLayout) (LayoutBarrier, error) {
	barrier, ok := layoutTransitions[layoutPair{oldLayout, newLayout}]
	if !ok {
		return LayoutBarrier{}, errors.Wrapf(core.ErrUnsupportedLayoutTransition, "%d -> %d", oldLayout, newLayout)
	}
	return barrier, nil
}

func hasStencilComponent(format vk.Format) bool {
	return format == vk.FormatD32SfloatS8Uint || format == vk.FormatD24UnormS8Uint
}

func imageBarrier(image vk.Image, aspect vk.ImageAspectFlags, oldLayout, newLayout vk.ImageLayout, srcAccess, dstAccess vk.AccessFlags, baseMip, levels uint32) vk.ImageMemoryBarrier {
	return vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		SrcAccessMask:       srcAccess,
		DstAccessMask:       dstAccess,
		OldLayout:           oldLayout,
		NewLayout:           newLayout,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               image,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     aspect,
			BaseMipLevel:   baseMip,
			LevelCount:     levels,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}
}

// TransitionLayout records a barrier moving every mip level of the image.
func (vi *VulkanImage) TransitionLayout(cb *VulkanCommandBuffer, oldLayout, newLayout vk.ImageLayout) error {
	transition, err := LayoutTransition(oldLayout, newLayout)
	if err != nil {
		core.LogError(err.Error())
		return err
	}

	aspect := vk.ImageAspectFlags(vk.ImageAspectColorBit)
	if newLayout == vk.ImageLayoutDepthStencilAttachmentOptimal {
		aspect = vk.ImageAspectFlags(vk.ImageAspectDepthBit)
		if hasStencilComponent(vi.Format) {
			aspect |= vk.ImageAspectFlags(vk.ImageAspectStencilBit)
		}
	}

	barrier := imageBarrier(vi.Handle, aspect, oldLayout, newLayout, transition.SrcAccess, transition.DstAccess, 0, vi.MipLevels)
	vk.CmdPipelineBarrier(cb.Handle, transition.SrcStage, transition.DstStage, 0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})
	return nil
}

// CopyFromBuffer copies tightly packed pixels into mip level 0. The image
// must be in TRANSFER_DST_OPTIMAL.
func (vi *VulkanImage) CopyFromBuffer(cb *VulkanCommandBuffer, buffer *VulkanBuffer) {
	region := vk.BufferImageCopy{
		BufferOffset:      0,
		BufferRowLength:   0,
		BufferImageHeight: 0,
		ImageSubresource: vk.ImageSubresourceLayers{
			AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
			MipLevel:       0,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
		ImageOffset: vk.Offset3D{X: 0, Y: 0, Z: 0},
		ImageExtent: vk.Extent3D{Width: vi.Width, Height: vi.Height, Depth: 1},
	}
	vk.CmdCopyBufferToImage(cb.Handle, buffer.Handle, vi.Handle, vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{region})
}

func halve(v int32) int32 {
	if v > 1 {
		return v / 2
	}
	return 1
}

// GenerateMipmaps fills levels 1..N-1 by successive linear blits and leaves
// every level in SHADER_READ_ONLY_OPTIMAL. All levels must start in
// TRANSFER_DST_OPTIMAL with level 0 populated.
func (vi *VulkanImage) GenerateMipmaps(context *VulkanContext, cb *VulkanCommandBuffer) error {
	var properties vk.FormatProperties
	vk.GetPhysicalDeviceFormatProperties(context.Device.PhysicalDevice, vi.Format, &properties)
	properties.Deref()
	if properties.OptimalTilingFeatures&vk.FormatFeatureFlags(vk.FormatFeatureSampledImageFilterLinearBit) == 0 {
		err := errors.Wrapf(core.ErrLinearBlitUnsupported, "format %d", vi.Format)
		core.LogError(err.Error())
		return err
	}

	color := vk.ImageAspectFlags(vk.ImageAspectColorBit)
	width := int32(vi.Width)
	height := int32(vi.Height)

	for level := uint32(1); level < vi.MipLevels; level++ {
		toSrc := imageBarrier(vi.Handle, color,
			vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutTransferSrcOptimal,
			vk.AccessFlags(vk.AccessTransferWriteBit), vk.AccessFlags(vk.AccessTransferReadBit),
			level-1, 1)
		vk.CmdPipelineBarrier(cb.Handle,
			vk.PipelineStageFlags(vk.PipelineStageTransferBit), vk.PipelineStageFlags(vk.PipelineStageTransferBit),
			0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{toSrc})

		nextWidth, nextHeight := halve(width), halve(height)
		blit := vk.ImageBlit{
			SrcSubresource: vk.ImageSubresourceLayers{
				AspectMask:     color,
				MipLevel:       level - 1,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
			SrcOffsets: [2]vk.Offset3D{
				{X: 0, Y: 0, Z: 0},
				{X: width, Y: height, Z: 1},
			},
			DstSubresource: vk.ImageSubresourceLayers{
				AspectMask:     color,
				MipLevel:       level,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
			DstOffsets: [2]vk.Offset3D{
				{X: 0, Y: 0, Z: 0},
				{X: nextWidth, Y: nextHeight, Z: 1},
			},
		}
		vk.CmdBlitImage(cb.Handle,
			vi.Handle, vk.ImageLayoutTransferSrcOptimal,
			vi.Handle, vk.ImageLayoutTransferDstOptimal,
			1, []vk.ImageBlit{blit}, vk.FilterLinear)

		toRead := imageBarrier(vi.Handle, color,
			vk.ImageLayoutTransferSrcOptimal, vk.ImageLayoutShaderReadOnlyOptimal,
			vk.AccessFlags(vk.AccessTransferReadBit), vk.AccessFlags(vk.AccessShaderReadBit),
			level-1, 1)
		vk.CmdPipelineBarrier(cb.Handle,
			vk.PipelineStageFlags(vk.PipelineStageTransferBit), vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit),
			0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{toRead})

		width, height = nextWidth, nextHeight
	}

	last := imageBarrier(vi.Handle, color,
		vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal,
		vk.AccessFlags(vk.AccessTransferWriteBit), vk.AccessFlags(vk.AccessShaderReadBit),
		vi.MipLevels-1, 1)
	vk.CmdPipelineBarrier(cb.Handle,
		vk.PipelineStageFlags(vk.PipelineStageTransferBit), vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit),
		0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{last})
	return nil
}
