package loaders

import (
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"

	"github.com/spaghettifunk/vkscene/engine/core"
	"github.com/spaghettifunk/vkscene/engine/renderer/metadata"
)

// TextureLoader decodes bmp and png files into RGBA8 pixels.
type TextureLoader struct{}

func (tl *TextureLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", core.ErrAssetNotFound, path)
		}
		return nil, err
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var flip bool
	if p, ok := params.(*metadata.ImageResourceParams); ok && p != nil {
		flip = p.FlipY
	}
	data := ToImageData(img, flip)
	core.LogDebug("texture `%s` decoded (%s, %dx%d)", path, format, data.Width, data.Height)

	return &metadata.Resource{
		Name:     path,
		FullPath: path,
		Type:     metadata.ResourceTypeImage,
		DataSize: data.Size(),
		Data:     data,
	}, nil
}

func (tl *TextureLoader) Unload(*metadata.Resource) error {
	return nil
}

// ToImageData converts any image to tightly packed RGBA8, optionally
// flipping rows.
func ToImageData(img image.Image, flipY bool) *metadata.ImageData {
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	data := &metadata.ImageData{
		ChannelCount: 4,
		Width:        uint32(bounds.Dx()),
		Height:       uint32(bounds.Dy()),
		Pixels:       make([]uint8, 0, len(rgba.Pix)),
	}
	rowSize := bounds.Dx() * 4
	for y := 0; y < bounds.Dy(); y++ {
		row := y
		if flipY {
			row = bounds.Dy() - 1 - y
		}
		start := row * rgba.Stride
		data.Pixels = append(data.Pixels, rgba.Pix[start:start+rowSize]...)
	}
	return data
}
