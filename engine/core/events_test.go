package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventQueueDrainOrder(t *testing.T) {
	q := NewEventQueue()
	q.Push(EventContext{Type: EVENT_CODE_RESIZED, Data: &SystemEvent{WindowWidth: 1, WindowHeight: 2}})
	q.Push(EventContext{Type: EVENT_CODE_KEY_PRESSED, Data: &KeyEvent{KeyCode: KEY_W}})
	q.Push(EventContext{Type: EVENT_CODE_IDLE})

	var seen []EventCode
	q.Drain(func(e EventContext) {
		seen = append(seen, e.Type)
		if e.Type == EVENT_CODE_IDLE {
			q.Push(EventContext{Type: EVENT_CODE_REDRAW})
		}
	})

	assert.Equal(t, []EventCode{
		EVENT_CODE_RESIZED,
		EVENT_CODE_KEY_PRESSED,
		EVENT_CODE_IDLE,
		EVENT_CODE_REDRAW,
	}, seen)
	assert.Zero(t, q.Len())
}

func TestEventCodeString(t *testing.T) {
	assert.Equal(t, "quit", EVENT_CODE_APPLICATION_QUIT.String())
	assert.Equal(t, "redraw", EVENT_CODE_REDRAW.String())
	assert.Equal(t, "unknown", EventCode(999).String())
}
