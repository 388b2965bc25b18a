package vulkan

import (
	"errors"
	"testing"

	"github.com/spaghettifunk/vkscene/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddTextureBindsNewHandle(t *testing.T) {
	vr := New(nil, RendererConfig{})

	var bound metadata.TextureHandle
	handle, err := vr.addTexture(&VulkanTexture{}, func(h metadata.TextureHandle) error {
		bound = h
		vr.activeTexture = h
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, metadata.TextureHandle(1), handle)
	assert.Equal(t, handle, bound)
	assert.Contains(t, vr.textures, handle)
	assert.Equal(t, handle, vr.activeTexture)
}

func TestAddTextureBindFailureDropsTexture(t *testing.T) {
	vr := New(nil, RendererConfig{})
	first, err := vr.addTexture(&VulkanTexture{}, func(h metadata.TextureHandle) error {
		vr.activeTexture = h
		return nil
	})
	require.NoError(t, err)

	bindErr := errors.New("device lost")
	handle, err := vr.addTexture(&VulkanTexture{}, func(h metadata.TextureHandle) error {
		vr.activeTexture = h
		return bindErr
	})

	assert.ErrorIs(t, err, bindErr)
	assert.Zero(t, handle)
	assert.Len(t, vr.textures, 1)
	assert.Contains(t, vr.textures, first)
	assert.Equal(t, first, vr.activeTexture)
}
