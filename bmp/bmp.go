/*
Package bmp implements a streaming Windows bitmap decoder that renders
directly to an RGB565 display.

A bitmap is a 14 byte file header followed by a 40 byte info header. Images
with fewer than 16 bits per pixel then carry a palette of up to 256 four byte
entries stored as blue, green, red and a reserved byte. Uncompressed pixel
data starts at the offset given in the file header and is stored bottom row
first, each row padded to a multiple of four bytes.

Supported depths are 1, 4 and 8 bits per pixel (indexed), 16 bits per pixel
(already RGB565), 24 bits per pixel (blue, green, red) and 32 bits per pixel
(blue, green, red, alpha or arbitrary channel masks when the compression is
BI_BITFIELDS). 32 bit pixels are blended against a background color using
their alpha channel.

Rather than decoding the whole image into memory the decoder reads one padded
row at a time and hands each pixel to a Sink, so memory use is bounded by a
single row plus the palette.
*/
package bmp

import "errors"

const (
	fileHeaderLen = 14
	infoHeaderLen = 40
	masksLen      = 16
	entryLen      = 4

	signature = 0x4d42 // "BM"

	biRGB       = 0
	biBitFields = 3

	maxPaletteSize = 256
)

var (
	// ErrInvalidFormat is returned when the stream is not a well-formed
	// bitmap, such as a bad signature or an empty channel mask.
	ErrInvalidFormat = errors.New("bmp: invalid format")

	// ErrTruncatedData is returned when a header, the palette or a row
	// ends early.
	ErrTruncatedData = errors.New("bmp: truncated data")

	// ErrUnsupportedFormat is returned for valid bitmaps this package
	// cannot decode, such as RLE compression or an unusual depth.
	ErrUnsupportedFormat = errors.New("bmp: unsupported format")

	// ErrOutOfRangeIndex is returned when a pixel refers to a palette
	// entry beyond the palette size, or a row outside the image.
	ErrOutOfRangeIndex = errors.New("bmp: index out of range")
)

// Sink receives decoded pixels. rgb565.Image implements it, as would a
// driver for a physical display.
type Sink interface {
	SetPixel(x, y int, c uint16)
}
