package engine

import (
	"github.com/spaghettifunk/vkscene/engine/assets"
	"github.com/spaghettifunk/vkscene/engine/core"
	"github.com/spaghettifunk/vkscene/engine/renderer"
	"github.com/spaghettifunk/vkscene/engine/renderer/metadata"
	"github.com/spaghettifunk/vkscene/engine/systems"
)

// Game is the set of hooks the engine drives. The engine fills Renderer,
// Assets, Jobs and Input before FnInitialize runs.
type Game struct {
	ApplicationConfig *ApplicationConfig
	Renderer          *renderer.Renderer
	Assets            *assets.AssetManager
	Jobs              *systems.JobSystem
	Input             *core.InputState
	State             interface{}
	FnInitialize      Initialize
	FnUpdate          Update
	FnRender          Render
	FnOnResize        OnResize
	FnShutdown        Shutdown
}

type Initialize func() error
type Update func(deltaTime float64) error

// Render builds the packet for a frame that is about to be drawn. deltaTime
// covers every tick since the previous drawn frame.
type Render func(deltaTime float64) (*metadata.RenderPacket, error)
type OnResize func(width uint32, height uint32) error
type Shutdown func() error
