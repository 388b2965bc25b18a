package frame

import (
	"fmt"

	"github.com/spaghettifunk/vkscene/engine/core"
)

// Host is the device and window side the lifecycle queries during a rebuild.
type Host interface {
	WaitIdle() error
	// FramebufferExtent is the window's drawable size in pixels.
	FramebufferExtent() Extent
	// SurfaceLimits re-queries the surface and returns its min/max image extent.
	SurfaceLimits() (min Extent, max Extent, err error)
}

// Stage is one group of swapchain-dependent objects. Stages are created in
// order and destroyed in reverse.
type Stage struct {
	Name    string
	Create  func(extent Extent) error
	Destroy func()
}

// Lifecycle owns the swapchain-dependent stages and rebuilds them when the
// surface changes.
type Lifecycle struct {
	host   Host
	stages []Stage
	live   []bool

	state  State
	extent Extent

	// Current generation of framebuffer size. Rebuild catches
	// sizeLastGeneration up to it.
	sizeGeneration     uint64
	sizeLastGeneration uint64
	pendingReason      string

	rebuilds uint64
}

// NewLifecycle starts in StateRebuilding: nothing is live until the first
// successful Rebuild.
func NewLifecycle(host Host, stages ...Stage) *Lifecycle {
	return &Lifecycle{
		host:   host,
		stages: stages,
		live:   make([]bool, len(stages)),
		state:  StateRebuilding,
	}
}

func (l *Lifecycle) State() State { return l.state }

func (l *Lifecycle) Extent() Extent { return l.extent }

func (l *Lifecycle) Rebuilds() uint64 { return l.rebuilds }

// NotifyResize records that the window changed size. The rebuild happens at
// the next frame boundary.
func (l *Lifecycle) NotifyResize(width, height uint32) {
	l.sizeGeneration++
	core.LogDebug("resize notified: %dx%d (generation %d)", width, height, l.sizeGeneration)
}

// RequestRebuild asks for a rebuild with the same extent, e.g. after new
// shader binaries appeared.
func (l *Lifecycle) RequestRebuild(reason string) {
	l.pendingReason = reason
}

// NeedsRebuild reports a pending resize or rebuild request.
func (l *Lifecycle) NeedsRebuild() bool {
	return l.state == StateRebuilding || l.sizeGeneration != l.sizeLastGeneration || l.pendingReason != ""
}

// MarkStale moves to StateRebuilding. Used when acquire or present reports the
// surface out of date.
func (l *Lifecycle) MarkStale(status Status) {
	if l.state == StateActive {
		core.LogDebug("swapchain stale (%s)", status)
	}
	l.state = StateRebuilding
}

// Rebuild waits for the device, clamps the window extent to the surface and
// recreates every stage. A zero window extent leaves the lifecycle in
// StateRebuilding and returns core.ErrSwapchainBooting.
func (l *Lifecycle) Rebuild() error {
	l.state = StateRebuilding

	if err := l.host.WaitIdle(); err != nil {
		return fmt.Errorf("rebuild: wait idle: %w", err)
	}

	window := l.host.FramebufferExtent()
	if window.IsZero() {
		return core.ErrSwapchainBooting
	}
	lo, hi, err := l.host.SurfaceLimits()
	if err != nil {
		return fmt.Errorf("rebuild: surface limits: %w", err)
	}
	extent := ClampExtent(window, lo, hi)
	if extent.IsZero() {
		return core.ErrSwapchainBooting
	}

	l.destroyLive()

	for i, s := range l.stages {
		if err := s.Create(extent); err != nil {
			err = fmt.Errorf("rebuild: create %s: %w", s.Name, err)
			core.LogError(err.Error())
			return err
		}
		l.live[i] = true
	}

	if l.pendingReason != "" {
		core.LogInfo("swapchain rebuilt at %s (%s)", extent, l.pendingReason)
	} else {
		core.LogInfo("swapchain rebuilt at %s", extent)
	}

	l.extent = extent
	l.sizeLastGeneration = l.sizeGeneration
	l.pendingReason = ""
	l.state = StateActive
	l.rebuilds++
	return nil
}

// Destroy tears down every live stage in reverse order. The caller waits for
// the device before calling it.
func (l *Lifecycle) Destroy() {
	l.destroyLive()
	l.state = StateRebuilding
}

func (l *Lifecycle) destroyLive() {
	for i := len(l.stages) - 1; i >= 0; i-- {
		if !l.live[i] {
			continue
		}
		if l.stages[i].Destroy != nil {
			l.stages[i].Destroy()
		}
		l.live[i] = false
	}
}
