package renderer

import (
	"github.com/spaghettifunk/vkscene/engine/core"
	"github.com/spaghettifunk/vkscene/engine/renderer/frame"
	"github.com/spaghettifunk/vkscene/engine/renderer/metadata"
)

// RendererBackend is what the frontend needs from a graphics API backend.
type RendererBackend interface {
	Initialize() error
	Shutdown() error
	Resized(width, height uint32)
	DrawFrame(packet *metadata.RenderPacket) (bool, error)
	WaitIdle() error
	Extent() frame.Extent

	UploadMesh(data *metadata.MeshData) (metadata.MeshHandle, error)
	DestroyMesh(handle metadata.MeshHandle)
	UploadTexture(data *metadata.ImageData) (metadata.TextureHandle, error)
	DestroyTexture(handle metadata.TextureHandle)
	ReloadShaders(vertex, fragment []uint32)
}

type RendererType uint8

const (
	Vulkan RendererType = iota
)

type Renderer struct {
	backend RendererBackend

	initialized bool
	// Frames counts packets that reached the screen.
	Frames uint64
	// Skipped counts packets dropped by a rebuild or a minimized window.
	Skipped uint64
}

func New(backend RendererBackend) *Renderer {
	return &Renderer{backend: backend}
}

func (r *Renderer) Initialize() error {
	if err := r.backend.Initialize(); err != nil {
		return err
	}
	r.initialized = true
	core.LogInfo("Renderer initialized.")
	return nil
}

// Shutdown waits for the device to drain before the backend destroys
// anything. It is safe to call on a renderer that never initialized.
func (r *Renderer) Shutdown() error {
	if !r.initialized {
		return r.backend.Shutdown()
	}
	if err := r.backend.WaitIdle(); err != nil {
		core.LogError("renderer wait idle failed: %s", err)
	}
	r.initialized = false
	return r.backend.Shutdown()
}

func (r *Renderer) OnResize(width, height uint32) {
	r.backend.Resized(width, height)
}

// DrawFrame hands the packet to the backend. Skipped frames are not errors.
func (r *Renderer) DrawFrame(packet *metadata.RenderPacket) error {
	drawn, err := r.backend.DrawFrame(packet)
	if err != nil {
		core.LogError("renderer draw frame failed: %s", err)
		return err
	}
	if drawn {
		r.Frames++
	} else {
		r.Skipped++
	}
	return nil
}

// AspectRatio is the swapchain width over height, 1 before the first build.
func (r *Renderer) AspectRatio() float32 {
	extent := r.backend.Extent()
	if extent.IsZero() {
		return 1
	}
	return float32(extent.Width) / float32(extent.Height)
}

func (r *Renderer) WaitIdle() error {
	return r.backend.WaitIdle()
}

func (r *Renderer) UploadMesh(data *metadata.MeshData) (metadata.MeshHandle, error) {
	return r.backend.UploadMesh(data)
}

func (r *Renderer) DestroyMesh(handle metadata.MeshHandle) {
	r.backend.DestroyMesh(handle)
}

func (r *Renderer) UploadTexture(data *metadata.ImageData) (metadata.TextureHandle, error) {
	return r.backend.UploadTexture(data)
}

func (r *Renderer) DestroyTexture(handle metadata.TextureHandle) {
	r.backend.DestroyTexture(handle)
}

// ReloadShaders swaps the SPIR-V blobs; the pipeline picks them up on the next rebuild.
func (r *Renderer) ReloadShaders(vertex, fragment []uint32) {
	r.backend.ReloadShaders(vertex, fragment)
}
