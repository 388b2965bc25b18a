package engine

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spaghettifunk/vkscene/engine/assets"
	"github.com/spaghettifunk/vkscene/engine/core"
	"github.com/spaghettifunk/vkscene/engine/renderer"
	"github.com/spaghettifunk/vkscene/engine/renderer/frame"
	"github.com/spaghettifunk/vkscene/engine/renderer/metadata"
	"github.com/spaghettifunk/vkscene/engine/renderer/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ renderer.RendererBackend = (*vulkan.VulkanRenderer)(nil)

type recorder struct {
	calls []string
}

func (r *recorder) record(call string) {
	r.calls = append(r.calls, call)
}

func (r *recorder) index(call string) int {
	for i, c := range r.calls {
		if c == call {
			return i
		}
	}
	return -1
}

type fakeWindow struct {
	log    *recorder
	open   bool
	pumps  int
	events *core.EventQueue
	// onPump runs before each pump reports, to inject OS events.
	onPump func(pump int)
}

func (w *fakeWindow) Startup(string, uint32, uint32, uint32, uint32) error {
	w.log.record("window.startup")
	return nil
}

func (w *fakeWindow) PumpMessages() bool {
	w.pumps++
	if w.onPump != nil {
		w.onPump(w.pumps)
	}
	return w.open
}

func (w *fakeWindow) Shutdown() error {
	w.log.record("window.shutdown")
	return nil
}

type fakeBackend struct {
	log     *recorder
	extent  frame.Extent
	packets []*metadata.RenderPacket
	resized []frame.Extent
	drawErr error
	next    uint32
}

func (b *fakeBackend) Initialize() error {
	b.log.record("backend.initialize")
	return nil
}

func (b *fakeBackend) Shutdown() error {
	b.log.record("backend.shutdown")
	return nil
}

func (b *fakeBackend) Resized(width, height uint32) {
	b.resized = append(b.resized, frame.Extent{Width: width, Height: height})
	b.extent = frame.Extent{Width: width, Height: height}
}

func (b *fakeBackend) DrawFrame(packet *metadata.RenderPacket) (bool, error) {
	if b.drawErr != nil {
		return false, b.drawErr
	}
	b.packets = append(b.packets, packet)
	return !b.extent.IsZero(), nil
}

func (b *fakeBackend) WaitIdle() error {
	b.log.record("backend.wait_idle")
	return nil
}

func (b *fakeBackend) Extent() frame.Extent { return b.extent }

func (b *fakeBackend) UploadMesh(*metadata.MeshData) (metadata.MeshHandle, error) {
	b.next++
	return metadata.MeshHandle(b.next), nil
}

func (b *fakeBackend) DestroyMesh(metadata.MeshHandle) {
	b.log.record("backend.destroy_mesh")
}

func (b *fakeBackend) UploadTexture(*metadata.ImageData) (metadata.TextureHandle, error) {
	b.next++
	return metadata.TextureHandle(b.next), nil
}

func (b *fakeBackend) DestroyTexture(metadata.TextureHandle) {
	b.log.record("backend.destroy_texture")
}

func (b *fakeBackend) ReloadShaders([]uint32, []uint32) {
	b.log.record("backend.reload_shaders")
}

type testHarness struct {
	engine  *Engine
	window  *fakeWindow
	backend *fakeBackend
	log     *recorder
	clock   time.Time
	updates []float64
	renders []float64
	resizes []frame.Extent
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()
	h := &testHarness{
		log:   &recorder{},
		clock: time.Unix(1000, 0),
	}
	events := core.NewEventQueue()
	h.window = &fakeWindow{log: h.log, open: true, events: events}
	h.backend = &fakeBackend{log: h.log, extent: frame.Extent{Width: 800, Height: 600}}

	g := &Game{
		ApplicationConfig: DefaultApplicationConfig(),
		FnInitialize: func() error {
			h.log.record("game.initialize")
			return nil
		},
		FnUpdate: func(deltaTime float64) error {
			h.updates = append(h.updates, deltaTime)
			return nil
		},
		FnRender: func(deltaTime float64) (*metadata.RenderPacket, error) {
			h.renders = append(h.renders, deltaTime)
			return &metadata.RenderPacket{DeltaTime: deltaTime}, nil
		},
		FnOnResize: func(width, height uint32) error {
			h.resizes = append(h.resizes, frame.Extent{Width: width, Height: height})
			return nil
		},
		FnShutdown: func() error {
			h.log.record("game.shutdown")
			h.engine.renderer.DestroyMesh(1)
			return nil
		},
	}
	var err error
	h.engine, err = newEngine(g, events, h.window, h.backend, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.engine.jobs.Shutdown() })
	h.engine.now = func() time.Time { return h.clock }
	require.NoError(t, h.engine.Initialize())
	return h
}

// advance moves the fake clock by one frame interval at 120 FPS.
func (h *testHarness) advance() {
	h.clock = h.clock.Add(time.Second / 120)
}

func TestEngineInitializeOrder(t *testing.T) {
	h := newTestHarness(t)

	assert.Equal(t, []string{"window.startup", "backend.initialize", "game.initialize"}, h.log.calls)
	assert.Equal(t, []frame.Extent{{Width: 800, Height: 600}}, h.resizes)
	assert.True(t, h.engine.IsRunning())
	assert.Same(t, h.engine.renderer, h.engine.gameInstance.Renderer)
	assert.NotNil(t, h.engine.gameInstance.Input)
	assert.NotNil(t, h.engine.gameInstance.Jobs)
}

func TestEngineEscapeQuits(t *testing.T) {
	h := newTestHarness(t)
	var updatesBefore, rendersBefore int
	h.window.onPump = func(pump int) {
		h.advance()
		if pump == 3 {
			updatesBefore, rendersBefore = len(h.updates), len(h.renders)
			h.window.events.Push(core.EventContext{
				Type: core.EVENT_CODE_KEY_PRESSED,
				Data: &core.KeyEvent{KeyCode: core.KEY_ESCAPE},
			})
		}
	}

	require.NoError(t, h.engine.Run())

	assert.False(t, h.engine.IsRunning())
	assert.Equal(t, 3, h.window.pumps)
	// Nothing runs after the iteration that saw Escape.
	assert.Len(t, h.updates, updatesBefore)
	assert.Len(t, h.renders, rendersBefore)
	assert.Len(t, h.backend.packets, rendersBefore)
	assert.Equal(t, 2, updatesBefore)
	assert.Equal(t, 2, rendersBefore)
}

func TestEngineEscapeSkipsQueuedFrame(t *testing.T) {
	h := newTestHarness(t)
	h.advance()
	h.window.events.Push(core.EventContext{
		Type: core.EVENT_CODE_KEY_PRESSED,
		Data: &core.KeyEvent{KeyCode: core.KEY_ESCAPE},
	})

	require.NoError(t, h.engine.step())

	assert.False(t, h.engine.IsRunning())
	assert.Empty(t, h.updates)
	assert.Empty(t, h.renders)
	assert.Empty(t, h.backend.packets)
	assert.Zero(t, h.engine.renderer.Frames)
}

func TestEngineWindowCloseQuits(t *testing.T) {
	h := newTestHarness(t)
	h.window.onPump = func(pump int) {
		h.advance()
		h.window.open = pump < 2
	}

	require.NoError(t, h.engine.Run())
	assert.Equal(t, 2, h.window.pumps)
}

func TestEngineDrawsOnlyWhenFrameDue(t *testing.T) {
	h := newTestHarness(t)

	// No time passed: update runs, nothing is drawn.
	require.NoError(t, h.engine.step())
	assert.Len(t, h.updates, 1)
	assert.Empty(t, h.renders)

	h.advance()
	require.NoError(t, h.engine.step())
	require.Len(t, h.renders, 1)
	assert.InDelta(t, 1.0/120, h.renders[0], 1e-9)
	assert.Equal(t, uint64(1), h.engine.renderer.Frames)
	require.Len(t, h.backend.packets, 1)
	assert.InDelta(t, 1.0/120, h.backend.packets[0].DeltaTime, 1e-9)
}

func TestEngineResizeSuspendsWhenMinimized(t *testing.T) {
	h := newTestHarness(t)

	h.window.events.Push(core.EventContext{
		Type: core.EVENT_CODE_RESIZED,
		Data: &core.SystemEvent{WindowWidth: 0, WindowHeight: 0},
	})
	h.advance()
	require.NoError(t, h.engine.step())

	assert.True(t, h.engine.isSuspended)
	assert.Empty(t, h.updates)
	assert.Empty(t, h.renders)
	assert.Equal(t, []frame.Extent{{Width: 0, Height: 0}}, h.backend.resized)

	h.window.events.Push(core.EventContext{
		Type: core.EVENT_CODE_RESIZED,
		Data: &core.SystemEvent{WindowWidth: 1024, WindowHeight: 768},
	})
	h.advance()
	require.NoError(t, h.engine.step())

	assert.False(t, h.engine.isSuspended)
	assert.Equal(t, frame.Extent{Width: 1024, Height: 768}, h.resizes[len(h.resizes)-1])
	assert.Len(t, h.renders, 1)
	w, ht := h.engine.GetFramebufferSize()
	assert.Equal(t, uint32(1024), w)
	assert.Equal(t, uint32(768), ht)
}

func TestEngineInputVisibleToUpdate(t *testing.T) {
	h := newTestHarness(t)
	var sawW bool
	h.engine.gameInstance.FnUpdate = func(float64) error {
		sawW = h.engine.input.IsKeyDown(core.KEY_W)
		return nil
	}

	h.window.events.Push(core.EventContext{
		Type: core.EVENT_CODE_KEY_PRESSED,
		Data: &core.KeyEvent{KeyCode: core.KEY_W},
	})
	require.NoError(t, h.engine.step())

	assert.True(t, sawW)
	assert.True(t, h.engine.input.WasKeyDown(core.KEY_W))
}

func TestEngineDrawErrorStopsRun(t *testing.T) {
	h := newTestHarness(t)
	h.backend.drawErr = errors.New("device lost")
	h.window.onPump = func(int) { h.advance() }

	err := h.engine.Run()
	assert.EqualError(t, err, "device lost")
	assert.False(t, h.engine.IsRunning())
}

func TestEngineShutdownOrder(t *testing.T) {
	h := newTestHarness(t)
	h.log.calls = nil

	require.NoError(t, h.engine.Shutdown())

	waitIdle := h.log.index("backend.wait_idle")
	destroy := h.log.index("backend.destroy_mesh")
	shutdown := h.log.index("backend.shutdown")
	window := h.log.index("window.shutdown")
	require.True(t, waitIdle >= 0 && destroy >= 0 && shutdown >= 0 && window >= 0, "calls: %v", h.log.calls)
	assert.Less(t, waitIdle, destroy)
	assert.Less(t, destroy, shutdown)
	assert.Less(t, shutdown, window)

	// Second shutdown is a no-op.
	h.log.calls = nil
	require.NoError(t, h.engine.Shutdown())
	assert.Empty(t, h.log.calls)
}

func TestEngineReloadsShadersOnChange(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "shaders"), 0o755))
	spirv := []byte{0x03, 0x02, 0x23, 0x07}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shaders", "vert.spv"), spirv, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shaders", "frag.spv"), spirv, 0o644))

	am, err := assets.NewAssetManager()
	require.NoError(t, err)
	require.NoError(t, am.Initialize(dir))

	h := newTestHarness(t)
	h.engine.assetManager = am
	t.Cleanup(func() { _ = am.Shutdown() })

	require.NoError(t, h.engine.onEvent(core.EventContext{
		Type: core.EVENT_CODE_ASSET_CHANGED,
		Data: &core.AssetEvent{Path: "fighter.obj"},
	}))
	assert.Equal(t, -1, h.log.index("backend.reload_shaders"))

	require.NoError(t, h.engine.onEvent(core.EventContext{
		Type: core.EVENT_CODE_ASSET_CHANGED,
		Data: &core.AssetEvent{Path: "shaders/frag.spv"},
	}))
	assert.GreaterOrEqual(t, h.log.index("backend.reload_shaders"), 0)
}
