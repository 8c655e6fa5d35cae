package canvas

import "fmt"

const imageDataDims = "ImageData dimensions must be positive integers"

// ImageData is a rectangle of unpremultiplied RGBA pixels.
type ImageData struct {
	Width, Height int
	// Data holds Width*Height*4 bytes, row by row.
	Data       []byte
	ColorSpace string
}

// NewImageData returns transparent black pixels.
func NewImageData(width, height int) (*ImageData, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidArgument, imageDataDims)
	}
	return &ImageData{
		Width:      width,
		Height:     height,
		Data:       make([]byte, width*height*4),
		ColorSpace: "srgb",
	}, nil
}

// ImageDataFrom wraps existing pixels. A zero height is derived from the
// data length.
func ImageDataFrom(data []byte, width, height int) (*ImageData, error) {
	if width <= 0 || height < 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidArgument, imageDataDims)
	}
	if height == 0 {
		height = len(data) / (width * 4)
	}
	if height == 0 || len(data) != width*height*4 {
		return nil, fmt.Errorf("%w: %d bytes for %dx%d pixels", ErrInvalidArgument, len(data), width, height)
	}
	return &ImageData{Width: width, Height: height, Data: data, ColorSpace: "srgb"}, nil
}
