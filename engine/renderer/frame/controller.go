package frame

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/vkscene/engine/core"
	"github.com/spaghettifunk/vkscene/engine/renderer/metadata"
)

// Presenter is the device side of one frame. slot indexes the
// frames-in-flight ring, image indexes the swapchain.
type Presenter interface {
	FramesInFlight() uint32
	ImageCount() uint32
	// WaitFence blocks until the slot's last submission has completed.
	WaitFence(slot uint32) error
	Acquire(slot uint32) (image uint32, status Status, err error)
	ResetFence(slot uint32) error
	// Record rewrites the command buffer and the uniform buffer of image.
	Record(image uint32, packet *metadata.RenderPacket) error
	Submit(slot, image uint32) error
	Present(slot, image uint32) (Status, error)
}

const noSlot = -1

// Controller runs the acquire/record/submit/present protocol and routes
// stale surfaces into the lifecycle.
type Controller struct {
	presenter Presenter
	lifecycle *Lifecycle

	slot uint32
	// imagesInFlight maps a swapchain image to the slot whose fence guards it.
	imagesInFlight []int

	Frames   uint64
	Dropped  uint64
	Rebuilds uint64
}

func NewController(presenter Presenter, lifecycle *Lifecycle) *Controller {
	return &Controller{
		presenter: presenter,
		lifecycle: lifecycle,
	}
}

func (c *Controller) Lifecycle() *Lifecycle { return c.lifecycle }

// CurrentSlot is the frames-in-flight slot the next frame will use.
func (c *Controller) CurrentSlot() uint32 { return c.slot }

// DrawFrame draws one frame. It returns false, with a nil error, when the
// frame was skipped because the swapchain is rebuilding.
func (c *Controller) DrawFrame(packet *metadata.RenderPacket) (bool, error) {
	if c.lifecycle.State() == StateRebuilding {
		if ok, err := c.rebuild(); !ok || err != nil {
			c.Dropped++
			return false, err
		}
	}

	slot := c.slot
	if err := c.presenter.WaitFence(slot); err != nil {
		return false, fmt.Errorf("wait for frame %d: %w", slot, err)
	}

	image, status, err := c.presenter.Acquire(slot)
	if err != nil {
		return false, fmt.Errorf("acquire: %w", err)
	}
	if status == StatusOutOfDate {
		// The slot fence is still signaled, nothing was submitted.
		c.lifecycle.MarkStale(status)
		c.Dropped++
		_, err := c.rebuild()
		return false, err
	}

	if int(image) >= len(c.imagesInFlight) {
		return false, fmt.Errorf("acquire returned image %d of %d", image, len(c.imagesInFlight))
	}
	if owner := c.imagesInFlight[image]; owner != noSlot && uint32(owner) != slot {
		if err := c.presenter.WaitFence(uint32(owner)); err != nil {
			return false, fmt.Errorf("wait for image %d held by frame %d: %w", image, owner, err)
		}
	}
	c.imagesInFlight[image] = int(slot)

	if err := c.presenter.ResetFence(slot); err != nil {
		return false, fmt.Errorf("reset fence %d: %w", slot, err)
	}
	if err := c.presenter.Record(image, packet); err != nil {
		return false, fmt.Errorf("record image %d: %w", image, err)
	}
	if err := c.presenter.Submit(slot, image); err != nil {
		return false, fmt.Errorf("submit: %w", err)
	}

	status, err = c.presenter.Present(slot, image)
	if err != nil {
		return false, fmt.Errorf("present: %w", err)
	}
	c.slot = (slot + 1) % c.presenter.FramesInFlight()
	c.Frames++

	if status != StatusSuccess || c.lifecycle.NeedsRebuild() {
		c.lifecycle.MarkStale(status)
		if _, err := c.rebuild(); err != nil {
			return true, err
		}
	}
	return true, nil
}

// Rebuild creates or recreates every stage now. It returns
// core.ErrSwapchainBooting while the window has no area.
func (c *Controller) Rebuild() error {
	ok, err := c.rebuild()
	if err == nil && !ok {
		return core.ErrSwapchainBooting
	}
	return err
}

// rebuild reports false without error when the window has no area yet.
func (c *Controller) rebuild() (bool, error) {
	if err := c.lifecycle.Rebuild(); err != nil {
		if errors.Is(err, core.ErrSwapchainBooting) {
			return false, nil
		}
		return false, err
	}
	c.Rebuilds++
	c.imagesInFlight = make([]int, c.presenter.ImageCount())
	for i := range c.imagesInFlight {
		c.imagesInFlight[i] = noSlot
	}
	return true, nil
}
