package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkscene/engine/core"
	"github.com/spaghettifunk/vkscene/engine/renderer/metadata"
)

// VulkanTexture is a mipmapped, sampled RGBA8 image.
type VulkanTexture struct {
	Image   *VulkanImage
	Sampler vk.Sampler
}

// TextureCreate uploads pixels through a staging buffer, generates the full
// mip chain and creates an anisotropic sampler over it.
func TextureCreate(context *VulkanContext, data *metadata.ImageData) (*VulkanTexture, error) {
	if data.ChannelCount != 4 || uint64(len(data.Pixels)) != data.Size() || data.Size() == 0 {
		return nil, fmt.Errorf("texture must be non-empty RGBA8, got %dx%dx%d with %d bytes", data.Width, data.Height, data.ChannelCount, len(data.Pixels))
	}

	staging, err := stagingBuffer(context, data.Pixels)
	if err != nil {
		return nil, err
	}
	defer staging.Destroy(context)

	mipLevels := MipLevelCount(data.Width, data.Height)
	image, err := ImageCreate(context, ImageConfig{
		Width:     data.Width,
		Height:    data.Height,
		MipLevels: mipLevels,
		Samples:   vk.SampleCount1Bit,
		Format:    vk.FormatR8g8b8a8Srgb,
		Tiling:    vk.ImageTilingOptimal,
		Usage: vk.ImageUsageFlags(vk.ImageUsageTransferSrcBit) |
			vk.ImageUsageFlags(vk.ImageUsageTransferDstBit) |
			vk.ImageUsageFlags(vk.ImageUsageSampledBit),
		MemoryFlags: deviceLocalMemory,
		Aspect:      vk.ImageAspectFlags(vk.ImageAspectColorBit),
	})
	if err != nil {
		return nil, err
	}
	texture := &VulkanTexture{Image: image}

	err = singleUse(context, func(cb *VulkanCommandBuffer) error {
		if err := image.TransitionLayout(cb, vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal); err != nil {
			return err
		}
		image.CopyFromBuffer(cb, staging)
		return image.GenerateMipmaps(context, cb)
	})
	if err != nil {
		texture.Destroy(context)
		return nil, err
	}

	samplerInfo := vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               vk.FilterLinear,
		MinFilter:               vk.FilterLinear,
		AddressModeU:            vk.SamplerAddressModeRepeat,
		AddressModeV:            vk.SamplerAddressModeRepeat,
		AddressModeW:            vk.SamplerAddressModeRepeat,
		AnisotropyEnable:        vk.True,
		MaxAnisotropy:           context.Device.Properties.Limits.MaxSamplerAnisotropy,
		BorderColor:             vk.BorderColorIntOpaqueBlack,
		UnnormalizedCoordinates: vk.False,
		CompareEnable:           vk.False,
		CompareOp:               vk.CompareOpAlways,
		MipmapMode:              vk.SamplerMipmapModeLinear,
		MipLodBias:              0,
		MinLod:                  0,
		MaxLod:                  float32(mipLevels),
	}
	var sampler vk.Sampler
	if err := vkCheck(vk.CreateSampler(context.Device.LogicalDevice, &samplerInfo, context.Allocator, &sampler), "vkCreateSampler"); err != nil {
		texture.Destroy(context)
		return nil, err
	}
	texture.Sampler = sampler

	core.LogDebug("texture %dx%d uploaded with %d mip levels", data.Width, data.Height, mipLevels)
	return texture, nil
}

func (t *VulkanTexture) Destroy(context *VulkanContext) {
	if t.Sampler != nil {
		vk.DestroySampler(context.Device.LogicalDevice, t.Sampler, context.Allocator)
		t.Sampler = nil
	}
	if t.Image != nil {
		t.Image.Destroy(context)
		t.Image = nil
	}
}

// defaultTextureData is a single opaque white pixel, bound until a real
// texture is uploaded.
func defaultTextureData() *metadata.ImageData {
	return &metadata.ImageData{
		ChannelCount: 4,
		Width:        1,
		Height:       1,
		Pixels:       []uint8{255, 255, 255, 255},
	}
}
