package platform

import (
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spaghettifunk/vkscene/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateKey(t *testing.T) {
	tests := []struct {
		key  glfw.Key
		want core.KeyCode
	}{
		{glfw.KeyW, core.KEY_W},
		{glfw.KeyA, core.KEY_A},
		{glfw.KeyZ, core.KEY_Z},
		{glfw.KeyEscape, core.KEY_ESCAPE},
		{glfw.KeyF5, core.KEY_F5},
		{glfw.KeyLeftShift, core.KEY_LSHIFT},
		{glfw.KeyGraveAccent, core.KEY_UNKNOWN},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, translateKey(tt.key), "glfw key %d", tt.key)
	}
}

func TestCursorDeltaPrimesOnFirstPosition(t *testing.T) {
	p := New(core.NewEventQueue())

	_, _, ok := p.cursorDelta(100, 50)
	assert.False(t, ok)

	dx, dy, ok := p.cursorDelta(103, 45)
	require.True(t, ok)
	assert.Equal(t, 3.0, dx)
	assert.Equal(t, -5.0, dy)

	_, _, ok = p.cursorDelta(103, 45)
	assert.False(t, ok)
}

func TestCallbacksPushEvents(t *testing.T) {
	events := core.NewEventQueue()
	p := New(events)

	p.keyCallback(nil, glfw.KeyEscape, 0, glfw.Press, 0)
	p.keyCallback(nil, glfw.KeyEscape, 0, glfw.Repeat, 0)
	p.keyCallback(nil, glfw.KeyW, 0, glfw.Release, 0)
	p.mouseButtonCallback(nil, glfw.MouseButtonRight, glfw.Press, 0)
	p.cursorPosCallback(nil, 10, 10)
	p.cursorPosCallback(nil, 10, 12)
	p.framebufferSizeCallback(nil, 640, 480)
	p.closeCallback(nil)

	var got []core.EventContext
	events.Drain(func(e core.EventContext) { got = append(got, e) })
	require.Len(t, got, 6)

	assert.Equal(t, core.EVENT_CODE_KEY_PRESSED, got[0].Type)
	assert.Equal(t, core.KEY_ESCAPE, got[0].Data.(*core.KeyEvent).KeyCode)
	assert.Equal(t, core.EVENT_CODE_KEY_RELEASED, got[1].Type)
	assert.Equal(t, core.BUTTON_RIGHT, got[2].Data.(*core.MouseEvent).Button)
	assert.Equal(t, 2.0, got[3].Data.(*core.MouseEvent).DeltaY)
	assert.Equal(t, uint32(640), got[4].Data.(*core.SystemEvent).WindowWidth)
	assert.Equal(t, core.EVENT_CODE_APPLICATION_QUIT, got[5].Type)
}
