package vulkan

import (
	"fmt"
	"strconv"
	"strings"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkscene/engine/renderer/frame"
)

// RendererConfig is fixed for the lifetime of the backend.
type RendererConfig struct {
	ApplicationName string
	Validation      bool
	// APIVersion is packed with vk.MakeVersion.
	APIVersion     uint32
	FramesInFlight uint32
	// MaxSamples caps the MSAA sample count; 0 uses the device maximum.
	MaxSamples uint32

	VertexShader   []uint32
	FragmentShader []uint32
}

// ParseAPIVersion turns "major.minor" or "major.minor.patch" into a packed
// Vulkan version. An empty string is 0, which the backend treats as 1.0.
func ParseAPIVersion(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	parts := strings.Split(s, ".")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid vulkan api version `%s`", s)
	}
	nums := [3]int{}
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid vulkan api version `%s`", s)
		}
		nums[i] = n
	}
	return uint32(vk.MakeVersion(nums[0], nums[1], nums[2])), nil
}

type VulkanContext struct {
	Instance  vk.Instance
	Allocator *vk.AllocationCallbacks
	Surface   vk.Surface

	debugCallback vk.DebugReportCallback

	Device *VulkanDevice

	lockPool *VulkanLockPool

	// Resize independent objects, created once.
	DescriptorSetLayout vk.DescriptorSetLayout
	FrameSlots          []*FrameSlot

	// Swapchain dependent objects, rebuilt by the lifecycle.
	Swapchain      *VulkanSwapchain
	MainRenderpass *VulkanRenderpass
	Pipeline       *VulkanPipeline
	ColorTarget    *VulkanImage
	DepthTarget    *VulkanImage
	Framebuffers   []*VulkanFramebuffer
	UniformBuffers []*VulkanBuffer
	DescriptorPool vk.DescriptorPool
	DescriptorSets []vk.DescriptorSet

	GraphicsCommandBuffers []*VulkanCommandBuffer

	ImageIndex   uint32
	CurrentFrame uint32
}

// Extent is the current swapchain extent, zero before the first build.
func (vc *VulkanContext) Extent() frame.Extent {
	if vc.Swapchain == nil {
		return frame.Extent{}
	}
	return frame.Extent{Width: vc.Swapchain.Extent.Width, Height: vc.Swapchain.Extent.Height}
}
