package engine

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/vkscene/engine/core"
	"github.com/spaghettifunk/vkscene/engine/renderer/vulkan"
)

type WindowConfig struct {
	// The application name used in windowing.
	Title string `toml:"title"`
	// Window starting position x axis.
	X uint32 `toml:"x"`
	// Window starting position y axis.
	Y uint32 `toml:"y"`
	// Window starting width.
	Width uint32 `toml:"width"`
	// Window starting height.
	Height uint32 `toml:"height"`
}

type RendererSettings struct {
	Validation bool `toml:"validation"`
	// "major.minor", empty means 1.0.
	APIVersion     string `toml:"api_version"`
	FramesInFlight uint32 `toml:"frames_in_flight"`
	// 0 uses the highest sample count the device supports.
	MaxSamples uint32 `toml:"max_samples"`
}

type TimingConfig struct {
	TargetFPS uint32 `toml:"target_fps"`
	// A preset (second, five_seconds, ten_seconds, none) or a duration.
	FPSPeriod string `toml:"fps_period"`
}

type AssetsConfig struct {
	Dir            string `toml:"dir"`
	Model          string `toml:"model"`
	Texture        string `toml:"texture"`
	VertexShader   string `toml:"vertex_shader"`
	FragmentShader string `toml:"fragment_shader"`
	FlipV          bool   `toml:"flip_v"`
}

type LogConfig struct {
	Level core.LogLevel `toml:"level"`
}

type ApplicationConfig struct {
	Window   WindowConfig     `toml:"window"`
	Renderer RendererSettings `toml:"renderer"`
	Timing   TimingConfig     `toml:"timing"`
	Assets   AssetsConfig     `toml:"assets"`
	Log      LogConfig        `toml:"log"`
}

func DefaultApplicationConfig() *ApplicationConfig {
	return &ApplicationConfig{
		Window: WindowConfig{
			Title:  "vkscene",
			X:      100,
			Y:      100,
			Width:  800,
			Height: 600,
		},
		Renderer: RendererSettings{
			Validation:     false,
			FramesInFlight: 2,
		},
		Timing: TimingConfig{
			TargetFPS: core.DefaultTargetFPS,
			FPSPeriod: core.DefaultFPSPeriod.String(),
		},
		Assets: AssetsConfig{
			Dir:            "assets",
			Model:          "fighter.obj",
			Texture:        "fighterdiffuse.bmp",
			VertexShader:   "shaders/vert.spv",
			FragmentShader: "shaders/frag.spv",
			FlipV:          true,
		},
		Log: LogConfig{
			Level: core.InfoLevel,
		},
	}
}

// LoadApplicationConfig reads path over the defaults. Keys missing from the
// file keep their default; a missing file is not an error.
func LoadApplicationConfig(path string) (*ApplicationConfig, error) {
	config := DefaultApplicationConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			core.LogWarn("config file `%s` not found, using defaults", path)
			return config, nil
		}
		return nil, err
	}
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("config `%s`: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config `%s`: %w", path, err)
	}
	return config, nil
}

func (c *ApplicationConfig) Validate() error {
	if c.Window.Width == 0 || c.Window.Height == 0 {
		return fmt.Errorf("window size %dx%d must be non zero", c.Window.Width, c.Window.Height)
	}
	if c.Renderer.FramesInFlight == 0 {
		return errors.New("renderer.frames_in_flight must be at least 1")
	}
	if _, err := vulkan.ParseAPIVersion(c.Renderer.APIVersion); err != nil {
		return err
	}
	if _, err := c.FPSPeriod(); err != nil {
		return err
	}
	return nil
}

func (c *ApplicationConfig) FPSPeriod() (time.Duration, error) {
	return core.ParseFPSPeriod(c.Timing.FPSPeriod)
}

// RendererConfig derives the immutable backend configuration. Shader code
// is filled in by the caller once loaded.
func (c *ApplicationConfig) RendererConfig() (vulkan.RendererConfig, error) {
	apiVersion, err := vulkan.ParseAPIVersion(c.Renderer.APIVersion)
	if err != nil {
		return vulkan.RendererConfig{}, err
	}
	return vulkan.RendererConfig{
		ApplicationName: c.Window.Title,
		Validation:      c.Renderer.Validation,
		APIVersion:      apiVersion,
		FramesInFlight:  c.Renderer.FramesInFlight,
		MaxSamples:      c.Renderer.MaxSamples,
	}, nil
}
