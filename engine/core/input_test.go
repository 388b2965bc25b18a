package core

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInputStateKeys(t *testing.T) {
	s := NewInputState()

	assert.True(t, s.ProcessKey(KEY_W, true))
	assert.False(t, s.ProcessKey(KEY_W, true), "repeat press is not a change")
	assert.True(t, s.IsKeyDown(KEY_W))
	assert.True(t, s.WasKeyUp(KEY_W))

	s.Update()
	assert.True(t, s.WasKeyDown(KEY_W))

	s.Apply(EventContext{Type: EVENT_CODE_KEY_RELEASED, Data: &KeyEvent{KeyCode: KEY_W}})
	assert.True(t, s.IsKeyUp(KEY_W))
}

func TestInputStateMouse(t *testing.T) {
	s := NewInputState()
	s.Apply(EventContext{Type: EVENT_CODE_MOUSE_MOVED, Data: &MouseEvent{DeltaX: 1, DeltaY: 2}})
	s.Apply(EventContext{Type: EVENT_CODE_MOUSE_MOVED, Data: &MouseEvent{DeltaX: 3, DeltaY: -5}})
	s.Apply(EventContext{Type: EVENT_CODE_BUTTON_PRESSED, Data: &MouseEvent{Button: BUTTON_LEFT}})

	dx, dy := s.MouseDelta()
	assert.Equal(t, 4.0, dx)
	assert.Equal(t, -3.0, dy)
	assert.True(t, s.IsButtonDown(BUTTON_LEFT))

	s.Update()
	dx, dy = s.MouseDelta()
	assert.Zero(t, dx)
	assert.Zero(t, dy)
	assert.True(t, s.WasButtonDown(BUTTON_LEFT))
}

func TestIdentifierLifecycle(t *testing.T) {
	before := IdentifierLiveCount()
	owner := &struct{ name string }{"fighter"}

	id := IdentifierAcquireNewID(owner)
	assert.NotEqual(t, uuid.Nil, id)
	assert.Equal(t, before+1, IdentifierLiveCount())

	got, ok := IdentifierOwner(id)
	require.True(t, ok)
	assert.Same(t, owner, got)

	require.NoError(t, IdentifierReleaseID(id))
	assert.Error(t, IdentifierReleaseID(id))
	assert.Equal(t, before, IdentifierLiveCount())
}
