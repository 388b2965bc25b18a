package vulkan

import (
	"math"
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkscene/engine/renderer/frame"
	"github.com/stretchr/testify/assert"
)

func TestChooseSurfaceFormat(t *testing.T) {
	preferred := vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear}
	other := vk.SurfaceFormat{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear}

	assert.Equal(t, preferred, chooseSurfaceFormat([]vk.SurfaceFormat{other, preferred}))
	assert.Equal(t, other, chooseSurfaceFormat([]vk.SurfaceFormat{other}))
}

func TestChoosePresentMode(t *testing.T) {
	assert.Equal(t, vk.PresentModeMailbox, choosePresentMode([]vk.PresentMode{vk.PresentModeFifo, vk.PresentModeMailbox}))
	assert.Equal(t, vk.PresentModeFifo, choosePresentMode([]vk.PresentMode{vk.PresentModeImmediate}))
	assert.Equal(t, vk.PresentModeFifo, choosePresentMode(nil))
}

func TestSurfaceLimits(t *testing.T) {
	caps := vk.SurfaceCapabilities{
		CurrentExtent:  vk.Extent2D{Width: math.MaxUint32, Height: math.MaxUint32},
		MinImageExtent: vk.Extent2D{Width: 1, Height: 1},
		MaxImageExtent: vk.Extent2D{Width: 4096, Height: 2048},
	}
	lo, hi := surfaceLimits(caps)
	assert.Equal(t, frame.Extent{Width: 1, Height: 1}, lo)
	assert.Equal(t, frame.Extent{Width: 4096, Height: 2048}, hi)

	caps.CurrentExtent = vk.Extent2D{Width: 1280, Height: 720}
	lo, hi = surfaceLimits(caps)
	assert.Equal(t, frame.Extent{Width: 1280, Height: 720}, lo)
	assert.Equal(t, lo, hi)
	assert.Equal(t, lo, frame.ClampExtent(frame.Extent{Width: 800, Height: 600}, lo, hi))
}

func TestChooseImageCount(t *testing.T) {
	assert.Equal(t, uint32(3), chooseImageCount(2, 0))
	assert.Equal(t, uint32(3), chooseImageCount(2, 8))
	assert.Equal(t, uint32(2), chooseImageCount(2, 2))
}

func TestAcquireStatus(t *testing.T) {
	status, err := acquireStatus(vk.Success, "acquire")
	assert.NoError(t, err)
	assert.Equal(t, frame.StatusSuccess, status)

	status, err = acquireStatus(vk.Suboptimal, "acquire")
	assert.NoError(t, err)
	assert.Equal(t, frame.StatusSuboptimal, status)

	status, err = acquireStatus(vk.ErrorOutOfDate, "acquire")
	assert.NoError(t, err)
	assert.Equal(t, frame.StatusOutOfDate, status)

	_, err = acquireStatus(vk.ErrorDeviceLost, "acquire")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "VK_ERROR_DEVICE_LOST")
}
