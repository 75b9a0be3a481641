package bmp

import (
	"encoding/binary"
	"fmt"

	"github.com/bodgit/bmp565/rgb565"
)

type rowFunc func(s Sink, b []byte, x, y int) error

// Draw renders the bitmap with its top left corner at (x, y). It does
// nothing if the decoder is not open. Drawing stops at the first row that
// cannot be read or decoded.
func (d *Decoder) Draw(s Sink, x, y int) error {
	if d.r == nil {
		return nil
	}

	var fn rowFunc
	switch d.infoHeader.BitCount {
	case 1:
		fn = d.drawIndexed1
	case 4:
		fn = d.drawIndexed4
	case 8:
		fn = d.drawIndexed8
	case 16:
		fn = d.drawRGB565
	case 24:
		fn = d.drawRGB
	case 32:
		fn = d.drawRGBA
	default:
		return fmt.Errorf("%w: %d bits per pixel", ErrUnsupportedFormat, d.infoHeader.BitCount)
	}

	b := make([]byte, d.stride)
	for iy := 0; iy < d.height; iy++ {
		if err := d.ReadRow(iy, b); err != nil {
			return err
		}
		if err := fn(s, b, x, y+iy); err != nil {
			return err
		}
	}

	return nil
}

func (d *Decoder) lookup(i uint8) (uint16, error) {
	if int(i) >= d.paletteSize {
		return 0, fmt.Errorf("%w: palette index %d of %d", ErrOutOfRangeIndex, i, d.paletteSize)
	}
	return d.colors[i], nil
}

func (d *Decoder) drawIndexed1(s Sink, b []byte, x, y int) error {
	for ix := 0; ix < d.width; ix++ {
		c, err := d.lookup(b[ix>>3] >> (7 - ix%8) & 0x01)
		if err != nil {
			return err
		}
		s.SetPixel(x+ix, y, c)
	}
	return nil
}

func (d *Decoder) drawIndexed4(s Sink, b []byte, x, y int) error {
	for ix := 0; ix < d.width; ix++ {
		i := b[ix>>1]
		if ix%2 == 0 {
			i >>= 4
		}
		c, err := d.lookup(i & 0x0f)
		if err != nil {
			return err
		}
		s.SetPixel(x+ix, y, c)
	}
	return nil
}

func (d *Decoder) drawIndexed8(s Sink, b []byte, x, y int) error {
	for ix := 0; ix < d.width; ix++ {
		c, err := d.lookup(b[ix])
		if err != nil {
			return err
		}
		s.SetPixel(x+ix, y, c)
	}
	return nil
}

func (d *Decoder) drawRGB565(s Sink, b []byte, x, y int) error {
	for ix := 0; ix < d.width; ix++ {
		s.SetPixel(x+ix, y, binary.LittleEndian.Uint16(b[ix*2:]))
	}
	return nil
}

func (d *Decoder) drawRGB(s Sink, b []byte, x, y int) error {
	for ix := 0; ix < d.width; ix++ {
		p := b[ix*3:]
		s.SetPixel(x+ix, y, rgb565.Quantize(p[2], p[1], p[0]))
	}
	return nil
}

func (d *Decoder) drawRGBA(s Sink, b []byte, x, y int) error {
	r, g, bl, a := d.channels[0], d.channels[1], d.channels[2], d.channels[3]
	for ix := 0; ix < d.width; ix++ {
		v := binary.LittleEndian.Uint32(b[ix*4:])
		fg := rgb565.Quantize(r.extract(v), g.extract(v), bl.extract(v))
		s.SetPixel(x+ix, y, rgb565.Mix(d.background, fg, a.extract(v)))
	}
	return nil
}
