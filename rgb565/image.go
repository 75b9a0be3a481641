package rgb565

import (
	"image"
	"image/color"
	"io"
)

// Image is an in-memory framebuffer of RGB565 pixels. Each pixel occupies
// two bytes in little-endian order, which is the layout most SPI display
// controllers accept when streamed.
type Image struct {
	// Pix holds the image's pixels. The pixel at (x, y) starts at
	// Pix[(y-Rect.Min.Y)*Stride + (x-Rect.Min.X)*2].
	Pix    []byte
	Stride int
	Rect   image.Rectangle
}

// NewImage returns a new Image with the given bounds, filled with black.
func NewImage(r image.Rectangle) *Image {
	return &Image{
		Pix:    make([]byte, 2*r.Dx()*r.Dy()),
		Stride: 2 * r.Dx(),
		Rect:   r,
	}
}

// ColorModel implements the image.Image interface.
func (m *Image) ColorModel() color.Model { return Model }

// Bounds implements the image.Image interface.
func (m *Image) Bounds() image.Rectangle { return m.Rect }

// PixOffset returns the index of the first element of Pix that corresponds
// to the pixel at (x, y).
func (m *Image) PixOffset(x, y int) int {
	return (y-m.Rect.Min.Y)*m.Stride + (x-m.Rect.Min.X)*2
}

// At implements the image.Image interface.
func (m *Image) At(x, y int) color.Color {
	return Color(m.RGB565At(x, y))
}

// RGB565At returns the packed color at (x, y), or black if the point is out
// of bounds.
func (m *Image) RGB565At(x, y int) uint16 {
	if !(image.Point{x, y}.In(m.Rect)) {
		return Black
	}
	i := m.PixOffset(x, y)
	return uint16(m.Pix[i]) | uint16(m.Pix[i+1])<<8
}

// Set implements the draw.Image interface.
func (m *Image) Set(x, y int, c color.Color) {
	m.SetPixel(x, y, uint16(Model.Convert(c).(Color)))
}

// SetPixel stores the packed color c at (x, y). Points outside the image
// are ignored.
func (m *Image) SetPixel(x, y int, c uint16) {
	if !(image.Point{x, y}.In(m.Rect)) {
		return
	}
	i := m.PixOffset(x, y)
	m.Pix[i] = byte(c)
	m.Pix[i+1] = byte(c >> 8)
}

// WriteTo writes the raw pixels, row by row, to w.
func (m *Image) WriteTo(w io.Writer) (int64, error) {
	var n int64
	rowBytes := 2 * m.Rect.Dx()
	for y := m.Rect.Min.Y; y < m.Rect.Max.Y; y++ {
		i := m.PixOffset(m.Rect.Min.X, y)
		c, err := w.Write(m.Pix[i : i+rowBytes])
		n += int64(c)
		if err != nil {
			return n, err
		}
	}
	return n, nil
}
