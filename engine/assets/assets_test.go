package assets

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spaghettifunk/vkscene/engine/assets/loaders"
	"github.com/spaghettifunk/vkscene/engine/core"
	"github.com/spaghettifunk/vkscene/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const triangleOBJ = "v 0 0 0\nv 1 0 0\nv 0 1 0\nvt 0 0\nvt 1 0\nvt 0 1\nf 1/1 2/2 3/3\n"

func newTestManager(t *testing.T) (*AssetManager, string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "shaders"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tri.obj"), []byte(triangleOBJ), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shaders", "shader.vert"), []byte("#version 450\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	am, err := NewAssetManager()
	require.NoError(t, err)
	require.NoError(t, am.Initialize(dir))
	t.Cleanup(func() { _ = am.Shutdown() })
	return am, dir
}

func TestAssetManagerIndexesKnownTypes(t *testing.T) {
	am, _ := newTestManager(t)

	assert.True(t, am.Has("tri.obj"))
	assert.True(t, am.Has("shaders/shader.vert"))
	assert.False(t, am.Has("notes.txt"))
	assert.Equal(t, 2, am.Count())
}

func TestAssetManagerLoadAsset(t *testing.T) {
	am, _ := newTestManager(t)

	res, err := am.LoadAsset("tri.obj", metadata.ResourceTypeMesh, &loaders.ModelParams{})
	require.NoError(t, err)
	mesh := res.Data.(*metadata.MeshData)
	assert.Equal(t, uint32(3), mesh.IndexCount())
	assert.Equal(t, "tri.obj", res.Name)

	_, err = am.LoadAsset("missing.obj", metadata.ResourceTypeMesh, nil)
	assert.ErrorIs(t, err, core.ErrAssetNotFound)

	_, err = am.LoadAsset("tri.obj", metadata.ResourceTypeImage, nil)
	assert.Error(t, err)
}

func TestAssetManagerReportsChanges(t *testing.T) {
	am, dir := newTestManager(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "shaders", "vert.spv"), []byte{3, 2, 35, 7}, 0o644))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case e := <-am.Changes():
			if e.Path == "shaders/vert.spv" {
				assert.True(t, am.Has("shaders/vert.spv"))
				return
			}
		case <-deadline:
			t.Fatal("no change notification for shaders/vert.spv")
		}
	}
}

func TestDetermineAssetType(t *testing.T) {
	assert.Equal(t, metadata.ResourceTypeBinary, determineAssetType("a/frag.spv"))
	assert.Equal(t, metadata.ResourceTypeImage, determineAssetType("fighterdiffuse.BMP"))
	assert.Equal(t, metadata.ResourceTypeMesh, determineAssetType("fighter.obj"))
	assert.Equal(t, metadata.ResourceTypeShader, determineAssetType("shader.frag"))
	assert.Equal(t, metadata.ResourceTypeUnknown, determineAssetType("readme.md"))
}
