/*
Package rgb565 implements the 16-bit RGB565 color encoding used by small
raster displays along with a framebuffer image that stores pixels in that
encoding.

Each pixel is a packed 16-bit value with red in the top five bits, green in
the middle six bits and blue in the bottom five bits:

	bit  15 14 13 12 11 10 9 8 7 6 5 4 3 2 1 0
	      R  R  R  R  R  G G G G G G B B B B B
*/
package rgb565

import "image/color"

const (
	redBits   = 5
	greenBits = 6
	blueBits  = 5

	blueShift  = 0
	greenShift = blueShift + blueBits
	redShift   = greenShift + greenBits

	redMax   = 1<<redBits - 1
	greenMax = 1<<greenBits - 1
	blueMax  = 1<<blueBits - 1
)

// Common colors
const (
	Black uint16 = 0x0000
	White uint16 = 0xffff
	Red   uint16 = 0xf800
	Green uint16 = 0x07e0
	Blue  uint16 = 0x001f
)

// Quantize converts an 8-bit per channel color to RGB565 by truncating the
// low bits of each channel.
func Quantize(r, g, b uint8) uint16 {
	return uint16(r>>3)<<redShift | uint16(g>>2)<<greenShift | uint16(b>>3)
}

func unpack(c uint16) (r, g, b uint32) {
	return uint32(c>>redShift) & redMax, uint32(c>>greenShift) & greenMax, uint32(c) & blueMax
}

// Mix linearly interpolates between a and b, channel by channel. A weight of
// 0 returns a and a weight of 255 returns b. Each channel is floored once
// over the whole sum, so it can be one step above
// a*(255-weight)/255 + b*weight/255 with the two terms floored separately.
func Mix(a, b uint16, weight uint8) uint16 {
	ar, ag, ab := unpack(a)
	br, bg, bb := unpack(b)

	w := uint32(weight)
	mix := func(x, y uint32) uint32 {
		return (x*(255-w) + y*w) / 255
	}

	return uint16(mix(ar, br)&redMax)<<redShift | uint16(mix(ag, bg)&greenMax)<<greenShift | uint16(mix(ab, bb)&blueMax)
}

// Expand converts an RGB565 color back to 8 bits per channel, replicating
// the high bits into the low bits so that full intensity maps to 0xff.
func Expand(c uint16) (r, g, b uint8) {
	r5, g6, b5 := unpack(c)
	return uint8(r5<<3 | r5>>2), uint8(g6<<2 | g6>>4), uint8(b5<<3 | b5>>2)
}

// Color is an opaque RGB565 color. It implements the color.Color interface.
type Color uint16

// RGBA implements the color.Color interface.
func (c Color) RGBA() (r, g, b, a uint32) {
	r8, g8, b8 := Expand(uint16(c))
	r = uint32(r8)
	r |= r << 8
	g = uint32(g8)
	g |= g << 8
	b = uint32(b8)
	b |= b << 8
	return r, g, b, 0xffff
}

// Model converts any color to the nearest RGB565 Color, ignoring alpha.
var Model = color.ModelFunc(model)

func model(c color.Color) color.Color {
	if _, ok := c.(Color); ok {
		return c
	}
	r, g, b, _ := c.RGBA()
	return Color(Quantize(uint8(r>>8), uint8(g>>8), uint8(b>>8)))
}
