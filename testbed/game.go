package testbed

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/vkscene/engine"
	"github.com/spaghettifunk/vkscene/engine/assets/loaders"
	"github.com/spaghettifunk/vkscene/engine/core"
	"github.com/spaghettifunk/vkscene/engine/math"
	"github.com/spaghettifunk/vkscene/engine/renderer/metadata"
	"github.com/spaghettifunk/vkscene/engine/scene"
	"github.com/spaghettifunk/vkscene/engine/systems"
)

// MoveSpeed is the camera speed in world units per second.
const MoveSpeed float32 = 4.0

// MouseSensitivity is in degrees per pixel of vertical motion.
const MouseSensitivity float32 = 0.1

type TestGame struct {
	*engine.Game
}

type gameState struct {
	camera  *scene.Camera
	scene   *scene.Scene
	fighter *scene.Model

	width  uint32
	height uint32
}

func NewTestGame(config *engine.ApplicationConfig) *TestGame {
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: config,
			State:             &gameState{},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown

	return tg
}

func (g *TestGame) Initialize() error {
	core.LogDebug("TestGame Initialize fn....")

	if g.Renderer == nil || g.Assets == nil || g.Jobs == nil {
		return fmt.Errorf("the engine is not yet initialized with a renderer, an asset manager and a job system")
	}

	state := g.State.(*gameState)
	config := g.ApplicationConfig.Assets

	// Decode on the workers; the upload stays on this thread.
	results, err := g.Jobs.RunAll(
		systems.Job{Name: config.Model, Run: func() (interface{}, error) {
			return g.Assets.LoadAsset(config.Model, metadata.ResourceTypeMesh, &loaders.ModelParams{FlipV: config.FlipV})
		}},
		systems.Job{Name: config.Texture, Run: func() (interface{}, error) {
			return g.Assets.LoadAsset(config.Texture, metadata.ResourceTypeImage, &metadata.ImageResourceParams{})
		}},
	)
	if err != nil {
		return err
	}
	meshRes := results[0].Value.(*metadata.Resource)
	textureRes := results[1].Value.(*metadata.Resource)

	state.fighter = scene.NewModel(meshRes.Name, meshRes.Data.(*metadata.MeshData), textureRes.Data.(*metadata.ImageData))
	if err := state.fighter.Upload(g.Renderer); err != nil {
		return err
	}

	state.camera = scene.NewCamera(g.Renderer.AspectRatio())
	state.scene = scene.New(state.camera)
	state.scene.Add(scene.NewInstance(state.fighter, math.TransformCreate()))

	// The scene instance holds its own reference now.
	state.fighter.Release()

	return nil
}

func (g *TestGame) Update(deltaTime float64) error {
	state := g.State.(*gameState)
	if state.camera == nil {
		return nil
	}
	step := MoveSpeed * float32(deltaTime)

	if g.Input.IsKeyDown(core.KEY_W) {
		state.camera.MoveForward(step)
	}
	if g.Input.IsKeyDown(core.KEY_S) {
		state.camera.MoveBackward(step)
	}
	if g.Input.IsKeyDown(core.KEY_A) {
		state.camera.MoveLeft(step)
	}
	if g.Input.IsKeyDown(core.KEY_D) {
		state.camera.MoveRight(step)
	}
	if g.Input.IsKeyDown(core.KEY_Q) {
		state.camera.MoveUp(step)
	}
	if g.Input.IsKeyDown(core.KEY_Z) {
		state.camera.MoveDown(step)
	}

	if _, dy := g.Input.MouseDelta(); dy != 0 {
		state.camera.Pitch(mgl32.DegToRad(MouseSensitivity * float32(dy)))
	}
	return nil
}

func (g *TestGame) Render(deltaTime float64) (*metadata.RenderPacket, error) {
	state := g.State.(*gameState)
	if state.scene == nil {
		return &metadata.RenderPacket{DeltaTime: deltaTime}, nil
	}

	state.scene.Animate(float32(deltaTime))
	state.camera.SetAspect(g.Renderer.AspectRatio())

	return state.scene.Packet(deltaTime), nil
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	state := g.State.(*gameState)
	state.width = width
	state.height = height
	if state.camera != nil && height > 0 {
		state.camera.SetAspect(float32(width) / float32(height))
	}
	return nil
}

func (g *TestGame) Shutdown() error {
	core.LogDebug("TestGame Shutdown fn....")
	state := g.State.(*gameState)
	if state.scene != nil {
		// Dropping the last instance releases the fighter's buffers and texture.
		state.scene.Destroy()
		state.scene = nil
	}
	state.fighter = nil
	return nil
}
