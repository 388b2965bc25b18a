package platform

import (
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spaghettifunk/vkscene/engine/core"
)

var startTime float64 = 0

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

type Platform struct {
	Window *glfw.Window

	events *core.EventQueue

	// Last cursor position, used to turn positions into motion deltas.
	cursorX, cursorY float64
	hasCursor        bool
}

// New creates a platform that pushes every window event into events.
func New(events *core.EventQueue) *Platform {
	return &Platform{
		Window: nil,
		events: events,
	}
}

func (p *Platform) Startup(applicationName string, x uint32, y uint32, width uint32, height uint32) error {
	if err := glfw.Init(); err != nil {
		core.LogError("failed to initialize glfw: %s", err)
		return err
	}
	if !glfw.VulkanSupported() {
		glfw.Terminate()
		return core.ErrNoSuitableDevice
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // Required for Vulkan.

	window, err := glfw.CreateWindow(int(width), int(height), applicationName, nil, nil)
	if err != nil {
		core.LogError("failed to create window: %s", err)
		glfw.Terminate()
		return err
	}
	p.Window = window

	p.Window.SetCloseCallback(p.closeCallback)
	p.Window.SetKeyCallback(p.keyCallback)
	p.Window.SetMouseButtonCallback(p.mouseButtonCallback)
	p.Window.SetCursorPosCallback(p.cursorPosCallback)
	p.Window.SetScrollCallback(p.scrollCallback)
	p.Window.SetFramebufferSizeCallback(p.framebufferSizeCallback)
	p.Window.SetPos(int(x), int(y))
	p.Window.Show()

	startTime = glfw.GetTime()

	return nil
}

func (p *Platform) Shutdown() error {
	if p.Window != nil {
		p.Window.Destroy()
		p.Window = nil
	}
	glfw.Terminate()
	return nil
}

// PumpMessages polls the OS for events. It returns false once the window
// was asked to close.
func (p *Platform) PumpMessages() bool {
	glfw.PollEvents()
	return !p.Window.ShouldClose()
}

// GetAbsoluteTime is the number of seconds since Startup.
func (p *Platform) GetAbsoluteTime() float64 {
	return glfw.GetTime() - startTime
}

// GetRequiredExtensionNames lists the instance extensions the surface needs.
func (p *Platform) GetRequiredExtensionNames() []string {
	return p.Window.GetRequiredInstanceExtensions()
}

// FramebufferSize is the drawable size in pixels, zero while minimized.
func (p *Platform) FramebufferSize() (uint32, uint32) {
	width, height := p.Window.GetFramebufferSize()
	if width < 0 || height < 0 {
		return 0, 0
	}
	return uint32(width), uint32(height)
}

func (p *Platform) push(code core.EventCode, data interface{}) {
	p.events.Push(core.EventContext{Type: code, Data: data})
}

func (p *Platform) closeCallback(w *glfw.Window) {
	p.push(core.EVENT_CODE_APPLICATION_QUIT, nil)
}

func (p *Platform) keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action == glfw.Repeat {
		return
	}
	code := translateKey(key)
	if code == core.KEY_UNKNOWN {
		return
	}
	if action == glfw.Press {
		p.push(core.EVENT_CODE_KEY_PRESSED, &core.KeyEvent{KeyCode: code})
	} else {
		p.push(core.EVENT_CODE_KEY_RELEASED, &core.KeyEvent{KeyCode: code})
	}
}

func (p *Platform) mouseButtonCallback(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	event := &core.MouseEvent{Button: translateButton(button)}
	if action == glfw.Press {
		p.push(core.EVENT_CODE_BUTTON_PRESSED, event)
	} else {
		p.push(core.EVENT_CODE_BUTTON_RELEASED, event)
	}
}

func (p *Platform) cursorPosCallback(w *glfw.Window, xpos, ypos float64) {
	dx, dy, ok := p.cursorDelta(xpos, ypos)
	if !ok {
		return
	}
	p.push(core.EVENT_CODE_MOUSE_MOVED, &core.MouseEvent{DeltaX: dx, DeltaY: dy})
}

// cursorDelta returns the motion since the previous position. The first
// position only primes the tracker.
func (p *Platform) cursorDelta(xpos, ypos float64) (float64, float64, bool) {
	if !p.hasCursor {
		p.cursorX, p.cursorY = xpos, ypos
		p.hasCursor = true
		return 0, 0, false
	}
	dx, dy := xpos-p.cursorX, ypos-p.cursorY
	p.cursorX, p.cursorY = xpos, ypos
	if dx == 0 && dy == 0 {
		return 0, 0, false
	}
	return dx, dy, true
}

func (p *Platform) scrollCallback(w *glfw.Window, xoff, yoff float64) {
	var scroll int8
	if yoff > 0 {
		scroll = 1
	} else if yoff < 0 {
		scroll = -1
	}
	p.push(core.EVENT_CODE_MOUSE_WHEEL, &core.MouseEvent{Scroll: scroll})
}

func (p *Platform) framebufferSizeCallback(w *glfw.Window, width, height int) {
	if width < 0 || height < 0 {
		return
	}
	p.push(core.EVENT_CODE_RESIZED, &core.SystemEvent{
		WindowWidth:  uint32(width),
		WindowHeight: uint32(height),
	})
}

func translateButton(button glfw.MouseButton) core.Button {
	switch button {
	case glfw.MouseButtonLeft:
		return core.BUTTON_LEFT
	case glfw.MouseButtonRight:
		return core.BUTTON_RIGHT
	case glfw.MouseButtonMiddle:
		return core.BUTTON_MIDDLE
	}
	return core.BUTTON_OTHER
}

func translateKey(key glfw.Key) core.KeyCode {
	// glfw letter keys share the ASCII codes of core.KeyCode.
	if key >= glfw.KeyA && key <= glfw.KeyZ {
		return core.KeyCode(key)
	}
	if key >= glfw.KeyF1 && key <= glfw.KeyF12 {
		return core.KEY_F1 + core.KeyCode(key-glfw.KeyF1)
	}
	switch key {
	case glfw.KeyEscape:
		return core.KEY_ESCAPE
	case glfw.KeySpace:
		return core.KEY_SPACE
	case glfw.KeyEnter:
		return core.KEY_ENTER
	case glfw.KeyTab:
		return core.KEY_TAB
	case glfw.KeyBackspace:
		return core.KEY_BACKSPACE
	case glfw.KeyLeft:
		return core.KEY_LEFT
	case glfw.KeyRight:
		return core.KEY_RIGHT
	case glfw.KeyUp:
		return core.KEY_UP
	case glfw.KeyDown:
		return core.KEY_DOWN
	case glfw.KeyInsert:
		return core.KEY_INSERT
	case glfw.KeyDelete:
		return core.KEY_DELETE
	case glfw.KeyHome:
		return core.KEY_HOME
	case glfw.KeyEnd:
		return core.KEY_END
	case glfw.KeyPause:
		return core.KEY_PAUSE
	case glfw.KeyCapsLock:
		return core.KEY_CAPITAL
	case glfw.KeyLeftShift:
		return core.KEY_LSHIFT
	case glfw.KeyRightShift:
		return core.KEY_RSHIFT
	case glfw.KeyLeftControl:
		return core.KEY_LCONTROL
	case glfw.KeyRightControl:
		return core.KEY_RCONTROL
	}
	return core.KEY_UNKNOWN
}
