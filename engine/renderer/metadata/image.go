package metadata

/**
 * @brief A structure to hold decoded image data. Pixels are always RGBA8.
 */
type ImageData struct {
	/** @brief The number of channels. Always 4. */
	ChannelCount uint8
	/** @brief The width of the image. */
	Width uint32
	/** @brief The height of the image. */
	Height uint32
	/** @brief The pixel data of the image, row major, top row first. */
	Pixels []uint8
}

/** @brief Size of the pixel data in bytes. */
func (i *ImageData) Size() uint64 {
	return uint64(i.Width) * uint64(i.Height) * uint64(i.ChannelCount)
}

/** @brief Parameters used when loading an image. */
type ImageResourceParams struct {
	/** @brief Indicates if the image should be flipped on the y-axis when loaded. */
	FlipY bool
}
