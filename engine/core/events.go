package core

import "sync"

// System event codes.
type EventCode int

const (
	// The window asked to be closed.
	EVENT_CODE_APPLICATION_QUIT EventCode = iota + 1
	// Keyboard key pressed.
	EVENT_CODE_KEY_PRESSED
	// Keyboard key released.
	EVENT_CODE_KEY_RELEASED
	// Mouse button pressed.
	EVENT_CODE_BUTTON_PRESSED
	// Mouse button released.
	EVENT_CODE_BUTTON_RELEASED
	// Raw mouse motion, delta since the last motion event.
	EVENT_CODE_MOUSE_MOVED
	// Mouse wheel scrolled.
	EVENT_CODE_MOUSE_WHEEL
	// Framebuffer resized/resolution changed from the OS.
	EVENT_CODE_RESIZED
	// Posted once per loop iteration after the OS events were pumped.
	EVENT_CODE_IDLE
	// Posted after idle when a frame may be drawn.
	EVENT_CODE_REDRAW
	// An asset on disk changed.
	EVENT_CODE_ASSET_CHANGED
)

func (c EventCode) String() string {
	switch c {
	case EVENT_CODE_APPLICATION_QUIT:
		return "quit"
	case EVENT_CODE_KEY_PRESSED:
		return "key_pressed"
	case EVENT_CODE_KEY_RELEASED:
		return "key_released"
	case EVENT_CODE_BUTTON_PRESSED:
		return "button_pressed"
	case EVENT_CODE_BUTTON_RELEASED:
		return "button_released"
	case EVENT_CODE_MOUSE_MOVED:
		return "mouse_moved"
	case EVENT_CODE_MOUSE_WHEEL:
		return "mouse_wheel"
	case EVENT_CODE_RESIZED:
		return "resized"
	case EVENT_CODE_IDLE:
		return "idle"
	case EVENT_CODE_REDRAW:
		return "redraw"
	case EVENT_CODE_ASSET_CHANGED:
		return "asset_changed"
	default:
		return "unknown"
	}
}

type KeyEvent struct {
	KeyCode KeyCode
}

type MouseEvent struct {
	Button Button
	DeltaX float64
	DeltaY float64
	Scroll int8
}

type SystemEvent struct {
	WindowWidth  uint32
	WindowHeight uint32
}

type AssetEvent struct {
	Path string
}

type EventContext struct {
	Type EventCode
	Data interface{}
}

// EventQueue collects window and engine events. The main loop drains it once per
// iteration, so handlers always run on the loop thread and in arrival order.
type EventQueue struct {
	mu      sync.Mutex
	pending []EventContext
}

func NewEventQueue() *EventQueue {
	return &EventQueue{
		pending: make([]EventContext, 0, 64),
	}
}

func (q *EventQueue) Push(event EventContext) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, event)
}

func (q *EventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Drain hands every queued event to fn. Events pushed by fn itself are
// delivered in the same call, after the ones already queued.
func (q *EventQueue) Drain(fn func(EventContext)) {
	for {
		q.mu.Lock()
		batch := q.pending
		q.pending = make([]EventContext, 0, cap(batch))
		q.mu.Unlock()

		if len(batch) == 0 {
			return
		}
		for _, e := range batch {
			fn(e)
		}
	}
}
