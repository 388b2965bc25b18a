package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkscene/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockMemoryTypes []vk.MemoryPropertyFlags

func (m mockMemoryTypes) MemoryTypeCount() uint32 { return uint32(len(m)) }

func (m mockMemoryTypes) MemoryTypeFlags(i uint32) vk.MemoryPropertyFlags { return m[i] }

const (
	deviceLocal  = vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)
	hostVisible  = vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit)
	hostCoherent = vk.MemoryPropertyFlags(vk.MemoryPropertyHostCoherentBit)
)

func TestFindMemoryType(t *testing.T) {
	types := mockMemoryTypes{deviceLocal, hostVisible | hostCoherent, hostVisible}

	tests := []struct {
		name     string
		typeBits uint32
		required vk.MemoryPropertyFlags
		want     uint32
	}{
		{"host coherent", 0b111, hostVisible | hostCoherent, 1},
		{"device local", 0b111, deviceLocal, 0},
		{"host visible first match", 0b111, hostVisible, 1},
		{"type bits exclude earlier match", 0b100, hostVisible, 2},
		{"no requirements", 0b110, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindMemoryType(types, tt.typeBits, tt.required)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindMemoryTypeNoMatch(t *testing.T) {
	types := mockMemoryTypes{deviceLocal, hostVisible}

	_, err := FindMemoryType(types, 0b11, hostVisible|hostCoherent)
	assert.ErrorIs(t, err, core.ErrNoSuitableMemoryType)

	_, err = FindMemoryType(types, 0b01, hostVisible)
	assert.ErrorIs(t, err, core.ErrNoSuitableMemoryType)
}
