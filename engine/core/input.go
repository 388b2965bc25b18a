package core

type Button uint16

const (
	BUTTON_LEFT Button = iota
	BUTTON_RIGHT
	BUTTON_MIDDLE
	BUTTON_OTHER
	BUTTON_MAX_BUTTONS
)

func (b Button) String() string {
	switch b {
	case BUTTON_LEFT:
		return "Left"
	case BUTTON_RIGHT:
		return "Right"
	case BUTTON_MIDDLE:
		return "Middle"
	default:
		return "Other"
	}
}

// Key code definitions
type KeyCode uint16

const (
	KEY_UNKNOWN   KeyCode = 0x00
	KEY_BACKSPACE KeyCode = 0x08
	KEY_TAB       KeyCode = 0x09
	KEY_ENTER     KeyCode = 0x0D
	KEY_SHIFT     KeyCode = 0x10
	KEY_CONTROL   KeyCode = 0x11
	KEY_PAUSE     KeyCode = 0x13
	KEY_CAPITAL   KeyCode = 0x14
	KEY_ESCAPE    KeyCode = 0x1B
	KEY_SPACE     KeyCode = 0x20
	KEY_END       KeyCode = 0x23
	KEY_HOME      KeyCode = 0x24
	KEY_LEFT      KeyCode = 0x25
	KEY_UP        KeyCode = 0x26
	KEY_RIGHT     KeyCode = 0x27
	KEY_DOWN      KeyCode = 0x28
	KEY_INSERT    KeyCode = 0x2D
	KEY_DELETE    KeyCode = 0x2E
	KEY_A         KeyCode = 0x41
	KEY_B         KeyCode = 0x42
	KEY_C         KeyCode = 0x43
	KEY_D         KeyCode = 0x44
	KEY_E         KeyCode = 0x45
	KEY_F         KeyCode = 0x46
	KEY_G         KeyCode = 0x47
	KEY_H         KeyCode = 0x48
	KEY_I         KeyCode = 0x49
	KEY_J         KeyCode = 0x4A
	KEY_K         KeyCode = 0x4B
	KEY_L         KeyCode = 0x4C
	KEY_M         KeyCode = 0x4D
	KEY_N         KeyCode = 0x4E
	KEY_O         KeyCode = 0x4F
	KEY_P         KeyCode = 0x50
	KEY_Q         KeyCode = 0x51
	KEY_R         KeyCode = 0x52
	KEY_S         KeyCode = 0x53
	KEY_T         KeyCode = 0x54
	KEY_U         KeyCode = 0x55
	KEY_V         KeyCode = 0x56
	KEY_W         KeyCode = 0x57
	KEY_X         KeyCode = 0x58
	KEY_Y         KeyCode = 0x59
	KEY_Z         KeyCode = 0x5A
	KEY_F1        KeyCode = 0x70
	KEY_F2        KeyCode = 0x71
	KEY_F3        KeyCode = 0x72
	KEY_F4        KeyCode = 0x73
	KEY_F5        KeyCode = 0x74
	KEY_F6        KeyCode = 0x75
	KEY_F7        KeyCode = 0x76
	KEY_F8        KeyCode = 0x77
	KEY_F9        KeyCode = 0x78
	KEY_F10       KeyCode = 0x79
	KEY_F11       KeyCode = 0x7A
	KEY_F12       KeyCode = 0x7B
	KEY_LSHIFT    KeyCode = 0xA0
	KEY_RSHIFT    KeyCode = 0xA1
	KEY_LCONTROL  KeyCode = 0xA2
	KEY_RCONTROL  KeyCode = 0xA3
	KEYS_MAX_KEYS KeyCode = 0xFF
)

// Mouse state structure
type MouseState struct {
	// Motion accumulated since the last Update.
	DeltaX  float64
	DeltaY  float64
	Buttons [BUTTON_MAX_BUTTONS]bool
}

// Keyboard state structure
type KeyboardState struct {
	Keys [KEYS_MAX_KEYS + 1]bool
}

// InputState holds current and previous states for keyboard and mouse. It is
// fed from the event queue and read by the game during update.
type InputState struct {
	KeyboardCurrent  KeyboardState
	KeyboardPrevious KeyboardState
	MouseCurrent     MouseState
	MousePrevious    MouseState
}

func NewInputState() *InputState {
	return &InputState{}
}

// Update copies the current states into the previous ones and clears the
// accumulated mouse motion. Call it once at the end of a loop iteration.
func (s *InputState) Update() {
	s.KeyboardPrevious = s.KeyboardCurrent
	s.MousePrevious = s.MouseCurrent
	s.MouseCurrent.DeltaX = 0
	s.MouseCurrent.DeltaY = 0
}

// keyboard input
func (s *InputState) IsKeyDown(key KeyCode) bool {
	return s.KeyboardCurrent.Keys[key]
}

func (s *InputState) IsKeyUp(key KeyCode) bool {
	return !s.KeyboardCurrent.Keys[key]
}

func (s *InputState) WasKeyDown(key KeyCode) bool {
	return s.KeyboardPrevious.Keys[key]
}

func (s *InputState) WasKeyUp(key KeyCode) bool {
	return !s.KeyboardPrevious.Keys[key]
}

// ProcessKey records the key state and reports whether it changed.
func (s *InputState) ProcessKey(key KeyCode, pressed bool) bool {
	if s.KeyboardCurrent.Keys[key] == pressed {
		return false
	}
	s.KeyboardCurrent.Keys[key] = pressed
	return true
}

// mouse input
func (s *InputState) IsButtonDown(button Button) bool {
	return s.MouseCurrent.Buttons[button]
}

func (s *InputState) WasButtonDown(button Button) bool {
	return s.MousePrevious.Buttons[button]
}

func (s *InputState) ProcessButton(button Button, pressed bool) bool {
	if s.MouseCurrent.Buttons[button] == pressed {
		return false
	}
	s.MouseCurrent.Buttons[button] = pressed
	return true
}

func (s *InputState) ProcessMouseMove(dx, dy float64) {
	s.MouseCurrent.DeltaX += dx
	s.MouseCurrent.DeltaY += dy
}

func (s *InputState) MouseDelta() (float64, float64) {
	return s.MouseCurrent.DeltaX, s.MouseCurrent.DeltaY
}

// Apply folds an input event into the state. Non-input events are ignored.
func (s *InputState) Apply(event EventContext) {
	switch event.Type {
	case EVENT_CODE_KEY_PRESSED, EVENT_CODE_KEY_RELEASED:
		if ke, ok := event.Data.(*KeyEvent); ok {
			s.ProcessKey(ke.KeyCode, event.Type == EVENT_CODE_KEY_PRESSED)
		}
	case EVENT_CODE_BUTTON_PRESSED, EVENT_CODE_BUTTON_RELEASED:
		if me, ok := event.Data.(*MouseEvent); ok {
			s.ProcessButton(me.Button, event.Type == EVENT_CODE_BUTTON_PRESSED)
		}
	case EVENT_CODE_MOUSE_MOVED:
		if me, ok := event.Data.(*MouseEvent); ok {
			s.ProcessMouseMove(me.DeltaX, me.DeltaY)
		}
	}
}
