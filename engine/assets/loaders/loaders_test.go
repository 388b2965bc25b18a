package loaders

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/vkscene/engine/core"
	"github.com/spaghettifunk/vkscene/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

const quadOBJ = `# a unit quad
o quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
f 1/1/1 2/2/1 3/3/1 4/4/1
`

func TestDecodeOBJTriangulatesAndDedups(t *testing.T) {
	mesh, err := DecodeOBJ(strings.NewReader(quadOBJ), false)
	require.NoError(t, err)

	assert.Equal(t, metadata.VertexLayoutTextured, mesh.Layout)
	assert.Len(t, mesh.Vertices, 4)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, mesh.Indices)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, mesh.Vertices[0].Color)
	assert.Equal(t, mgl32.Vec2{1, 1}, mesh.Vertices[2].TexCoord)
}

func TestDecodeOBJFlipV(t *testing.T) {
	mesh, err := DecodeOBJ(strings.NewReader(quadOBJ), true)
	require.NoError(t, err)
	assert.Equal(t, mgl32.Vec2{0, 1}, mesh.Vertices[0].TexCoord)
	assert.Equal(t, mgl32.Vec2{1, 0}, mesh.Vertices[2].TexCoord)
}

func TestDecodeOBJNegativeIndices(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nvt 0 0\nf -3/-1 -2/-1 -1/-1\n"
	mesh, err := DecodeOBJ(strings.NewReader(src), false)
	require.NoError(t, err)
	assert.Len(t, mesh.Vertices, 3)
	assert.Equal(t, []uint32{0, 1, 2}, mesh.Indices)
}

func TestDecodeOBJErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"missing texture coordinate", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"},
		{"empty texture slot", "v 0 0 0\nv 1 0 0\nv 0 1 0\nvt 0 0\nf 1//1 2//1 3//1\n"},
		{"index out of range", "v 0 0 0\nvt 0 0\nf 1/1 2/1 3/1\n"},
		{"no faces", "v 0 0 0\nvt 0 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeOBJ(strings.NewReader(tt.src), false)
			assert.ErrorIs(t, err, core.ErrInvalidMesh)
		})
	}

	_, err := DecodeOBJ(strings.NewReader("v 0 zero 0\n"), false)
	assert.Error(t, err)
}

func TestModelLoaderMissingFile(t *testing.T) {
	_, err := (&ModelLoader{}).Load(filepath.Join(t.TempDir(), "nope.obj"), metadata.ResourceTypeMesh, nil)
	assert.ErrorIs(t, err, core.ErrAssetNotFound)
}

func TestBinaryLoader(t *testing.T) {
	dir := t.TempDir()
	words := []uint32{spirvMagic, 0x00010000, 7}
	buf := make([]byte, len(words)*4)
	for i, w := range words {
		binary.LittleEndian.PutUint32(buf[i*4:], w)
	}
	path := filepath.Join(dir, "vert.spv")
	require.NoError(t, os.WriteFile(path, buf, 0o644))

	res, err := (&BinaryLoader{}).Load(path, metadata.ResourceTypeBinary, nil)
	require.NoError(t, err)
	assert.Equal(t, words, res.Data.([]uint32))
	assert.Equal(t, uint64(12), res.DataSize)

	bad := filepath.Join(dir, "bad.spv")
	require.NoError(t, os.WriteFile(bad, []byte{1, 2, 3, 4, 5}, 0o644))
	_, err = (&BinaryLoader{}).Load(bad, metadata.ResourceTypeBinary, nil)
	assert.Error(t, err)
}

func checker() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{255, 0, 0, 255})
	img.Set(1, 0, color.NRGBA{0, 255, 0, 255})
	img.Set(0, 1, color.NRGBA{0, 0, 255, 255})
	img.Set(1, 1, color.NRGBA{255, 255, 255, 255})
	return img
}

func TestTextureLoaderDecodesBMPAndPNG(t *testing.T) {
	dir := t.TempDir()

	var bmpBuf, pngBuf bytes.Buffer
	require.NoError(t, bmp.Encode(&bmpBuf, checker()))
	require.NoError(t, png.Encode(&pngBuf, checker()))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tex.bmp"), bmpBuf.Bytes(), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tex.png"), pngBuf.Bytes(), 0o644))

	for _, name := range []string{"tex.bmp", "tex.png"} {
		t.Run(name, func(t *testing.T) {
			res, err := (&TextureLoader{}).Load(filepath.Join(dir, name), metadata.ResourceTypeImage, nil)
			require.NoError(t, err)
			data := res.Data.(*metadata.ImageData)
			assert.Equal(t, uint32(2), data.Width)
			assert.Equal(t, uint8(4), data.ChannelCount)
			require.Len(t, data.Pixels, 16)
			assert.Equal(t, []uint8{255, 0, 0, 255}, data.Pixels[0:4])
			assert.Equal(t, []uint8{0, 0, 255, 255}, data.Pixels[8:12])
		})
	}
}

func TestToImageDataFlipY(t *testing.T) {
	data := ToImageData(checker(), true)
	assert.Equal(t, []uint8{0, 0, 255, 255}, data.Pixels[0:4])
	assert.Equal(t, []uint8{255, 0, 0, 255}, data.Pixels[8:12])
}
