package engine

import (
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/spaghettifunk/vkscene/engine/assets"
	"github.com/spaghettifunk/vkscene/engine/core"
	"github.com/spaghettifunk/vkscene/engine/platform"
	"github.com/spaghettifunk/vkscene/engine/renderer"
	"github.com/spaghettifunk/vkscene/engine/renderer/metadata"
	"github.com/spaghettifunk/vkscene/engine/renderer/vulkan"
	"github.com/spaghettifunk/vkscene/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
	// Engine released everything
	EngineStageShutdown
)

// Window is the part of the platform the loop drives.
type Window interface {
	Startup(applicationName string, x, y, width, height uint32) error
	PumpMessages() bool
	Shutdown() error
}

type Engine struct {
	currentStage Stage
	gameInstance *Game
	config       *ApplicationConfig

	isRunning   atomic.Bool
	isSuspended bool
	frameDue    bool

	window       Window
	events       *core.EventQueue
	input        *core.InputState
	renderer     *renderer.Renderer
	assetManager *assets.AssetManager
	jobs         *systems.JobSystem

	width  uint32
	height uint32

	clock   *core.Clock
	now     func() time.Time
	limiter *core.FrameLimiter
	fps     *core.FPSReporter
}

// New wires the glfw platform, the asset watcher and the Vulkan backend.
func New(g *Game) (*Engine, error) {
	config := g.ApplicationConfig
	if config == nil {
		config = DefaultApplicationConfig()
		g.ApplicationConfig = config
	}
	core.SetLogLevel(config.Log.Level)

	events := core.NewEventQueue()
	p := platform.New(events)

	am, err := assets.NewAssetManager()
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	if err := am.Initialize(config.Assets.Dir); err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	rendererConfig, err := config.RendererConfig()
	if err != nil {
		return nil, err
	}
	if rendererConfig.VertexShader, rendererConfig.FragmentShader, err = loadShaders(am, config.Assets); err != nil {
		_ = am.Shutdown()
		return nil, err
	}

	backend := vulkan.New(p, rendererConfig)
	e, err := newEngine(g, events, p, backend, am)
	if err != nil {
		_ = am.Shutdown()
		return nil, err
	}
	return e, nil
}

func newEngine(g *Game, events *core.EventQueue, window Window, backend renderer.RendererBackend, am *assets.AssetManager) (*Engine, error) {
	config := g.ApplicationConfig
	jobs, err := systems.NewJobSystem(runtime.NumCPU(), 16)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		config:       config,
		window:       window,
		events:       events,
		input:        core.NewInputState(),
		renderer:     renderer.New(backend),
		assetManager: am,
		jobs:         jobs,
		width:        config.Window.Width,
		height:       config.Window.Height,
		clock:        core.NewClock(),
		now:          time.Now,
	}
	g.Renderer = e.renderer
	g.Assets = am
	g.Jobs = jobs
	g.Input = e.input
	return e, nil
}

func loadShaders(am *assets.AssetManager, config AssetsConfig) ([]uint32, []uint32, error) {
	vertex, err := am.LoadAsset(config.VertexShader, metadata.ResourceTypeBinary, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("vertex shader: %w", err)
	}
	fragment, err := am.LoadAsset(config.FragmentShader, metadata.ResourceTypeBinary, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("fragment shader: %w", err)
	}
	return vertex.Data.([]uint32), fragment.Data.([]uint32), nil
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing

	if err := e.window.Startup(e.config.Window.Title,
		e.config.Window.X,
		e.config.Window.Y,
		e.config.Window.Width,
		e.config.Window.Height); err != nil {
		return err
	}

	if err := e.renderer.Initialize(); err != nil {
		return err
	}

	period, err := e.config.FPSPeriod()
	if err != nil {
		return err
	}
	now := e.now()
	e.limiter = core.NewFrameLimiter(e.config.Timing.TargetFPS, now)
	e.fps = core.NewFPSReporter(period, now)

	if err := e.gameInstance.FnInitialize(); err != nil {
		return err
	}
	if err := e.gameInstance.FnOnResize(e.width, e.height); err != nil {
		return err
	}

	e.isRunning.Store(true)
	e.currentStage = EngineStageInitialized
	return nil
}

// Run loops until the window closes, Escape is pressed or Quit is called.
// Errors from the frame are fatal and returned.
func (e *Engine) Run() error {
	e.currentStage = EngineStageRunning
	e.clock.Start()

	for e.isRunning.Load() {
		if err := e.step(); err != nil {
			e.isRunning.Store(false)
			return err
		}
	}
	e.clock.Stop()
	return nil
}

// Quit asks the loop to stop after the current iteration. It is safe to call
// from any goroutine.
func (e *Engine) Quit() {
	e.isRunning.Store(false)
}

func (e *Engine) IsRunning() bool {
	return e.isRunning.Load()
}

// step runs one loop iteration: poll the OS, then deliver Idle and Redraw
// after everything the OS reported.
func (e *Engine) step() error {
	if !e.window.PumpMessages() {
		e.events.Push(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
	}
	e.collectAssetChanges()

	e.events.Push(core.EventContext{Type: core.EVENT_CODE_IDLE})
	e.events.Push(core.EventContext{Type: core.EVENT_CODE_REDRAW})

	var stepErr error
	e.events.Drain(func(event core.EventContext) {
		if stepErr != nil {
			return
		}
		stepErr = e.onEvent(event)
	})

	// Input state is copied last so handlers above saw this iteration's changes.
	e.input.Update()
	return stepErr
}

func (e *Engine) collectAssetChanges() {
	if e.assetManager == nil {
		return
	}
	for {
		select {
		case change, ok := <-e.assetManager.Changes():
			if !ok {
				return
			}
			e.events.Push(core.EventContext{Type: core.EVENT_CODE_ASSET_CHANGED, Data: &change})
		default:
			return
		}
	}
}

func (e *Engine) onEvent(context core.EventContext) error {
	switch context.Type {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.Quit()
	case core.EVENT_CODE_KEY_PRESSED, core.EVENT_CODE_KEY_RELEASED:
		e.input.Apply(context)
		e.onKey(context)
	case core.EVENT_CODE_BUTTON_PRESSED, core.EVENT_CODE_BUTTON_RELEASED:
		e.input.Apply(context)
		if me, ok := context.Data.(*core.MouseEvent); ok && context.Type == core.EVENT_CODE_BUTTON_PRESSED {
			core.LogDebug("Button: %s", me.Button)
		}
	case core.EVENT_CODE_MOUSE_MOVED:
		e.input.Apply(context)
	case core.EVENT_CODE_RESIZED:
		return e.onResized(context)
	case core.EVENT_CODE_ASSET_CHANGED:
		e.onAssetChanged(context)
	case core.EVENT_CODE_IDLE:
		return e.onIdle()
	case core.EVENT_CODE_REDRAW:
		return e.onRedraw()
	}
	return nil
}

func (e *Engine) onKey(context core.EventContext) {
	ke, ok := context.Data.(*core.KeyEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%s`", context.Type)
		return
	}
	if context.Type == core.EVENT_CODE_KEY_PRESSED && ke.KeyCode == core.KEY_ESCAPE {
		// Stop now so the idle and redraw already queued this iteration do nothing.
		core.LogInfo("Escape pressed, shutting down.")
		e.Quit()
	}
}

func (e *Engine) onIdle() error {
	if e.isSuspended || !e.isRunning.Load() {
		return nil
	}
	e.frameDue = e.limiter.Tick(e.now())
	if err := e.gameInstance.FnUpdate(e.limiter.DeltaT); err != nil {
		core.LogError("Game update failed, shutting down: %s", err)
		return err
	}
	return nil
}

// onRedraw draws when the last idle tick found a frame due. The time since
// the last drawn frame goes to the game's render hook.
func (e *Engine) onRedraw() error {
	if e.isSuspended || !e.isRunning.Load() || !e.frameDue {
		return nil
	}
	e.frameDue = false
	now := e.now()
	frameDelta := e.limiter.ConsumeFrameDelta()

	packet, err := e.gameInstance.FnRender(frameDelta)
	if err != nil {
		core.LogError("Game render failed, shutting down: %s", err)
		return err
	}
	if err := e.renderer.DrawFrame(packet); err != nil {
		return err
	}
	e.fps.Frame(now)
	return nil
}

func (e *Engine) onResized(context core.EventContext) error {
	se, ok := context.Data.(*core.SystemEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%s`", context.Type)
		return nil
	}

	width := se.WindowWidth
	height := se.WindowHeight
	if width == e.width && height == e.height {
		return nil
	}
	e.width = width
	e.height = height
	core.LogDebug("Window resize: %d, %d", width, height)

	// The backend defers its rebuild until the size is non zero again.
	e.renderer.OnResize(width, height)

	// Handle minimization
	if width == 0 || height == 0 {
		core.LogInfo("Window minimized, suspending application.")
		e.isSuspended = true
		return nil
	}
	if e.isSuspended {
		core.LogInfo("Window restored, resuming application.")
		e.isSuspended = false
	}
	return e.gameInstance.FnOnResize(width, height)
}

func (e *Engine) onAssetChanged(context core.EventContext) {
	ae, ok := context.Data.(*core.AssetEvent)
	if !ok {
		return
	}
	assetsConfig := e.config.Assets
	if ae.Path != assetsConfig.VertexShader && ae.Path != assetsConfig.FragmentShader {
		core.LogDebug("asset `%s` changed", ae.Path)
		return
	}
	vertex, fragment, err := loadShaders(e.assetManager, assetsConfig)
	if err != nil {
		// glslc writes in several steps; a half written binary shows up here.
		core.LogWarn("shader reload skipped: %s", err)
		return
	}
	core.LogInfo("shader `%s` changed, rebuilding pipeline", ae.Path)
	e.renderer.ReloadShaders(vertex, fragment)
}

// Shutdown drains the GPU before the game or the renderer destroy anything,
// then releases the platform.
func (e *Engine) Shutdown() error {
	if e.currentStage == EngineStageShutdown {
		return nil
	}
	e.currentStage = EngineStageShuttingDown
	e.isRunning.Store(false)

	var errs []error
	if err := e.renderer.WaitIdle(); err != nil {
		errs = append(errs, err)
	}
	if e.gameInstance.FnShutdown != nil {
		if err := e.gameInstance.FnShutdown(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := e.jobs.Shutdown(); err != nil {
		errs = append(errs, err)
	}
	if err := e.renderer.Shutdown(); err != nil {
		errs = append(errs, err)
	}
	if e.assetManager != nil {
		if err := e.assetManager.Shutdown(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := e.window.Shutdown(); err != nil {
		errs = append(errs, err)
	}

	e.currentStage = EngineStageShutdown
	return errors.Join(errs...)
}

// GetFramebufferSize returns the width and height (in this order)
// of the application Framebuffer
func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}
