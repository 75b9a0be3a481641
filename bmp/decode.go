package bmp

import (
	"image"
	"io"

	"github.com/bodgit/bmp565/rgb565"
)

func rectangle(width, height int) image.Rectangle {
	return image.Rect(0, 0, width, height)
}

// Decode reads a bitmap from r and returns it as an RGB565 image, blending
// any translucent pixels against black.
func Decode(r io.ReadSeeker) (*rgb565.Image, error) {
	var d Decoder
	if err := d.Open(r); err != nil {
		return nil, err
	}
	return d.Image()
}

// DecodeConfig returns the color model and dimensions of a bitmap without
// decoding the pixels.
func DecodeConfig(r io.ReadSeeker) (image.Config, error) {
	var d Decoder
	if err := d.Open(r); err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: rgb565.Model,
		Width:      d.Width(),
		Height:     d.Height(),
	}, nil
}
