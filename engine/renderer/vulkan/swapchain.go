package vulkan

import (
	"math"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkscene/engine/core"
	"github.com/spaghettifunk/vkscene/engine/renderer/frame"
)

type VulkanSwapchain struct {
	Handle      vk.Swapchain
	ImageFormat vk.SurfaceFormat
	PresentMode vk.PresentMode
	Extent      vk.Extent2D
	ImageCount  uint32

	// Images are owned by the swapchain and go away with it.
	Images []vk.Image
	Views  []vk.ImageView
}

type VulkanSwapchainSupportInfo struct {
	Capabilities vk.SurfaceCapabilities
	Formats      []vk.SurfaceFormat
	PresentModes []vk.PresentMode
}

// chooseSurfaceFormat prefers BGRA8 unorm in the sRGB nonlinear colorspace and
// falls back to the first format reported.
func chooseSurfaceFormat(formats []vk.SurfaceFormat) vk.SurfaceFormat {
	for _, format := range formats {
		if format.Format == vk.FormatB8g8r8a8Unorm && format.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return format
		}
	}
	return formats[0]
}

// choosePresentMode prefers mailbox. FIFO is always available.
func choosePresentMode(modes []vk.PresentMode) vk.PresentMode {
	for _, mode := range modes {
		if mode == vk.PresentModeMailbox {
			return mode
		}
	}
	return vk.PresentModeFifo
}

// surfaceLimits returns the extent range the surface accepts. A surface with
// a fixed current extent pins both ends to it.
func surfaceLimits(caps vk.SurfaceCapabilities) (lo, hi frame.Extent) {
	if caps.CurrentExtent.Width != math.MaxUint32 {
		current := frame.Extent{Width: caps.CurrentExtent.Width, Height: caps.CurrentExtent.Height}
		return current, current
	}
	lo = frame.Extent{Width: caps.MinImageExtent.Width, Height: caps.MinImageExtent.Height}
	hi = frame.Extent{Width: caps.MaxImageExtent.Width, Height: caps.MaxImageExtent.Height}
	return lo, hi
}

// chooseImageCount asks for one image more than the minimum. A maximum of
// zero means unbounded.
func chooseImageCount(minCount, maxCount uint32) uint32 {
	count := minCount + 1
	if maxCount > 0 && count > maxCount {
		count = maxCount
	}
	return count
}

// SwapchainCreate builds a swapchain with the given, already clamped, extent.
// Image views are created separately by CreateViews.
func SwapchainCreate(context *VulkanContext, extent frame.Extent) (*VulkanSwapchain, error) {
	support, err := DeviceQuerySwapchainSupport(context.Device.PhysicalDevice, context.Surface)
	if err != nil {
		return nil, err
	}
	context.Device.SwapchainSupport = support
	caps := support.Capabilities

	swapchain := &VulkanSwapchain{
		ImageFormat: chooseSurfaceFormat(support.Formats),
		PresentMode: choosePresentMode(support.PresentModes),
		Extent:      vk.Extent2D{Width: extent.Width, Height: extent.Height},
	}
	imageCount := chooseImageCount(caps.MinImageCount, caps.MaxImageCount)

	swapchainCreateInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          context.Surface,
		MinImageCount:    imageCount,
		ImageFormat:      swapchain.ImageFormat.Format,
		ImageColorSpace:  swapchain.ImageFormat.ColorSpace,
		ImageExtent:      swapchain.Extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		PreTransform:     caps.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      swapchain.PresentMode,
		Clipped:          vk.True,
		OldSwapchain:     vk.NullSwapchain,
	}

	if context.Device.GraphicsQueueIndex != context.Device.PresentQueueIndex {
		swapchainCreateInfo.ImageSharingMode = vk.SharingModeConcurrent
		swapchainCreateInfo.QueueFamilyIndexCount = 2
		swapchainCreateInfo.PQueueFamilyIndices = []uint32{
			context.Device.GraphicsQueueIndex,
			context.Device.PresentQueueIndex,
		}
	} else {
		swapchainCreateInfo.ImageSharingMode = vk.SharingModeExclusive
	}

	var handle vk.Swapchain
	if err := vkCheck(vk.CreateSwapchain(context.Device.LogicalDevice, &swapchainCreateInfo, context.Allocator, &handle), "vkCreateSwapchainKHR"); err != nil {
		return nil, err
	}
	swapchain.Handle = handle

	var count uint32
	if err := vkCheck(vk.GetSwapchainImages(context.Device.LogicalDevice, handle, &count, nil), "vkGetSwapchainImagesKHR"); err != nil {
		swapchain.Destroy(context)
		return nil, err
	}
	swapchain.Images = make([]vk.Image, count)
	if err := vkCheck(vk.GetSwapchainImages(context.Device.LogicalDevice, handle, &count, swapchain.Images), "vkGetSwapchainImagesKHR"); err != nil {
		swapchain.Destroy(context)
		return nil, err
	}
	swapchain.ImageCount = count

	core.LogInfo("Swapchain created: %dx%d, %d images.", extent.Width, extent.Height, count)
	return swapchain, nil
}

// CreateViews creates one color view per swapchain image.
func (vs *VulkanSwapchain) CreateViews(context *VulkanContext) error {
	vs.Views = make([]vk.ImageView, 0, vs.ImageCount)
	for i := uint32(0); i < vs.ImageCount; i++ {
		view, err := createImageView(context, vs.Images[i], vs.ImageFormat.Format, vk.ImageAspectFlags(vk.ImageAspectColorBit), 1)
		if err != nil {
			vs.DestroyViews(context)
			return err
		}
		vs.Views = append(vs.Views, view)
	}
	return nil
}

func (vs *VulkanSwapchain) DestroyViews(context *VulkanContext) {
	for _, view := range vs.Views {
		vk.DestroyImageView(context.Device.LogicalDevice, view, context.Allocator)
	}
	vs.Views = nil
}

// Destroy releases the swapchain handle. The images go with it.
func (vs *VulkanSwapchain) Destroy(context *VulkanContext) {
	if vs.Handle != vk.NullSwapchain {
		vk.DestroySwapchain(context.Device.LogicalDevice, vs.Handle, context.Allocator)
		vs.Handle = vk.NullSwapchain
	}
	vs.Images = nil
	vs.ImageCount = 0
}

// acquireStatus maps the results acquire and present may return to a frame
// status. Anything else is an error.
func acquireStatus(result vk.Result, what string) (frame.Status, error) {
	switch result {
	case vk.Success:
		return frame.StatusSuccess, nil
	case vk.Suboptimal:
		return frame.StatusSuboptimal, nil
	case vk.ErrorOutOfDate:
		return frame.StatusOutOfDate, nil
	default:
		return frame.StatusSuccess, vkCheck(result, what)
	}
}

// AcquireNextImage waits without a timeout and signals imageAvailable when
// the returned image is ready to be rendered to.
func (vs *VulkanSwapchain) AcquireNextImage(context *VulkanContext, imageAvailable vk.Semaphore) (uint32, frame.Status, error) {
	var index uint32
	result := vk.AcquireNextImage(context.Device.LogicalDevice, vs.Handle, vk.MaxUint64, imageAvailable, vk.NullFence, &index)
	status, err := acquireStatus(result, "vkAcquireNextImageKHR")
	return index, status, err
}

// Present hands image back to the presentation engine once renderFinished
// has been signaled.
func (vs *VulkanSwapchain) Present(context *VulkanContext, renderFinished vk.Semaphore, image uint32) (frame.Status, error) {
	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{renderFinished},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{vs.Handle},
		PImageIndices:      []uint32{image},
	}

	var result vk.Result
	context.lockPool.SafeQueueCall(context.Device.PresentQueueIndex, func() error {
		result = vk.QueuePresent(context.Device.PresentQueue, &presentInfo)
		return nil
	})
	return acquireStatus(result, "vkQueuePresentKHR")
}
