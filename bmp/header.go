package bmp

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/bits"

	"github.com/bodgit/bmp565/rgb565"
)

func readFull(r io.Reader, b []byte) error {
	_, err := io.ReadFull(r, b)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

// FileHeader is the BITMAPFILEHEADER structure at the start of the file.
type FileHeader struct {
	Type      uint16
	Size      uint32
	Reserved1 uint16
	Reserved2 uint16
	Offset    uint32
}

// UnmarshalBinary decodes the header from the first 14 bytes of b.
func (h *FileHeader) UnmarshalBinary(b []byte) error {
	if len(b) < fileHeaderLen {
		return ErrTruncatedData
	}
	h.Type = binary.LittleEndian.Uint16(b[0:])
	h.Size = binary.LittleEndian.Uint32(b[2:])
	h.Reserved1 = binary.LittleEndian.Uint16(b[6:])
	h.Reserved2 = binary.LittleEndian.Uint16(b[8:])
	h.Offset = binary.LittleEndian.Uint32(b[10:])
	return nil
}

// InfoHeader is the BITMAPINFOHEADER structure that follows the file header.
// The channel masks are only populated when Compression is BI_BITFIELDS.
type InfoHeader struct {
	Size            uint32
	Width           int32
	Height          int32
	Planes          uint16
	BitCount        uint16
	Compression     uint32
	SizeImage       uint32
	XPelsPerMeter   int32
	YPelsPerMeter   int32
	ColorsUsed      uint32
	ColorsImportant uint32

	RedMask   uint32
	GreenMask uint32
	BlueMask  uint32
	AlphaMask uint32
}

// UnmarshalBinary decodes the classic 40 byte header from b.
func (h *InfoHeader) UnmarshalBinary(b []byte) error {
	if len(b) < infoHeaderLen {
		return ErrTruncatedData
	}
	h.Size = binary.LittleEndian.Uint32(b[0:])
	h.Width = int32(binary.LittleEndian.Uint32(b[4:]))
	h.Height = int32(binary.LittleEndian.Uint32(b[8:]))
	h.Planes = binary.LittleEndian.Uint16(b[12:])
	h.BitCount = binary.LittleEndian.Uint16(b[14:])
	h.Compression = binary.LittleEndian.Uint32(b[16:])
	h.SizeImage = binary.LittleEndian.Uint32(b[20:])
	h.XPelsPerMeter = int32(binary.LittleEndian.Uint32(b[24:]))
	h.YPelsPerMeter = int32(binary.LittleEndian.Uint32(b[28:]))
	h.ColorsUsed = binary.LittleEndian.Uint32(b[32:])
	h.ColorsImportant = binary.LittleEndian.Uint32(b[36:])
	return nil
}

func (h *InfoHeader) unmarshalMasks(b []byte) error {
	if len(b) < masksLen {
		return ErrTruncatedData
	}
	h.RedMask = binary.LittleEndian.Uint32(b[0:])
	h.GreenMask = binary.LittleEndian.Uint32(b[4:])
	h.BlueMask = binary.LittleEndian.Uint32(b[8:])
	h.AlphaMask = binary.LittleEndian.Uint32(b[12:])
	return nil
}

// PaletteEntry is one color of the palette, in the order it is stored.
type PaletteEntry struct {
	Blue, Green, Red, Reserved uint8
}

// RGB565 returns the entry quantized for display.
func (p PaletteEntry) RGB565() uint16 {
	return rgb565.Quantize(p.Red, p.Green, p.Blue)
}

// Stride returns the number of bytes in one row of pixel data, including
// the padding to a four byte boundary.
func Stride(bitCount, width int) int {
	if width <= 0 {
		return 0
	}
	return ((bitCount*width+7)/8 + 3) &^ 3
}

// channel extracts one color component from a packed 32 bit pixel.
type channel struct {
	mask  uint32
	shift uint
}

func (c channel) extract(v uint32) uint8 {
	return uint8((v & c.mask) >> c.shift)
}

// channelShift returns the position of the lowest set bit in mask.
func channelShift(mask uint32) (uint, error) {
	if mask == 0 {
		return 0, fmt.Errorf("%w: empty channel mask", ErrInvalidFormat)
	}
	return uint(bits.TrailingZeros32(mask)), nil
}

func newChannel(mask uint32) (channel, error) {
	shift, err := channelShift(mask)
	if err != nil {
		return channel{}, err
	}
	return channel{mask, shift}, nil
}

// Red, green, blue and alpha of a pixel stored as blue, green, red and alpha
// bytes
var defaultChannels = [4]channel{
	{0x00ff0000, 16},
	{0x0000ff00, 8},
	{0x000000ff, 0},
	{0xff000000, 24},
}

func (h *InfoHeader) channels() ([4]channel, error) {
	if h.Compression != biBitFields {
		return defaultChannels, nil
	}
	var c [4]channel
	for i, m := range []uint32{h.RedMask, h.GreenMask, h.BlueMask, h.AlphaMask} {
		var err error
		if c[i], err = newChannel(m); err != nil {
			return c, err
		}
	}
	return c, nil
}
