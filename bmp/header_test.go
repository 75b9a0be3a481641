package bmp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStride(t *testing.T) {
	tests := []struct {
		bitCount, width, want int
	}{
		{1, 0, 0},
		{1, 1, 4},
		{1, 8, 4},
		{1, 33, 8},
		{4, 1, 4},
		{4, 8, 4},
		{4, 9, 8},
		{8, 4, 4},
		{8, 5, 8},
		{16, 2, 4},
		{16, 3, 8},
		{24, 1, 4},
		{24, 4, 12},
		{24, 5, 16},
		{32, 1, 4},
		{32, 3, 12},
	}

	for _, tt := range tests {
		got := Stride(tt.bitCount, tt.width)
		assert.Equal(t, tt.want, got, "Stride(%d, %d)", tt.bitCount, tt.width)
		assert.Zero(t, got%4)
		assert.Equal(t, got, Stride(tt.bitCount, tt.width))
	}

	for _, bpp := range []int{1, 4, 8, 16, 24, 32} {
		for w := 1; w < 70; w++ {
			assert.Equal(t, ((bpp*w+7)/8+3)&^3, Stride(bpp, w))
			assert.GreaterOrEqual(t, Stride(bpp, w)*8, bpp*w)
		}
	}
}

func TestChannelShift(t *testing.T) {
	tests := []struct {
		mask  uint32
		shift uint
	}{
		{0x000000ff, 0},
		{0x0000ff00, 8},
		{0x00ff0000, 16},
		{0xff000000, 24},
		{0x000007e0, 5},
		{0x0000f800, 11},
		{0x80000000, 31},
		{0x3ff00000, 20},
	}

	for _, tt := range tests {
		shift, err := channelShift(tt.mask)
		require.NoError(t, err)
		assert.Equal(t, tt.shift, shift, "channelShift(%#08x)", tt.mask)
	}

	_, err := channelShift(0)
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestChannelExtract(t *testing.T) {
	c, err := newChannel(0x0000ff00)
	require.NoError(t, err)
	assert.Equal(t, uint8(0xab), c.extract(0x12ab34cd))

	// Channels wider than 8 bits keep their low bits
	c, err = newChannel(0x000ffc00)
	require.NoError(t, err)
	assert.Equal(t, uint8(0xff), c.extract(0x0003fc00))
}

func TestDefaultChannels(t *testing.T) {
	h := InfoHeader{Compression: biRGB, RedMask: 0, AlphaMask: 0}
	c, err := h.channels()
	require.NoError(t, err)

	// Stored as blue, green, red, alpha
	v := uint32(0x11) | uint32(0x22)<<8 | uint32(0x33)<<16 | uint32(0x44)<<24
	assert.Equal(t, uint8(0x33), c[0].extract(v))
	assert.Equal(t, uint8(0x22), c[1].extract(v))
	assert.Equal(t, uint8(0x11), c[2].extract(v))
	assert.Equal(t, uint8(0x44), c[3].extract(v))
}

func TestBitFieldChannels(t *testing.T) {
	h := InfoHeader{
		Compression: biBitFields,
		RedMask:     0xff000000,
		GreenMask:   0x00ff0000,
		BlueMask:    0x0000ff00,
		AlphaMask:   0x000000ff,
	}
	c, err := h.channels()
	require.NoError(t, err)
	assert.Equal(t, [4]uint{24, 16, 8, 0}, [4]uint{c[0].shift, c[1].shift, c[2].shift, c[3].shift})

	h.GreenMask = 0
	_, err = h.channels()
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestUnmarshalHeaders(t *testing.T) {
	b := fixture{
		bitCount:   8,
		width:      3,
		height:     2,
		colorsUsed: 1,
		palette:    []PaletteEntry{red},
		rows:       [][]byte{{0, 0, 0}, {0, 0, 0}},
	}.bytes()

	var fh FileHeader
	require.NoError(t, fh.UnmarshalBinary(b))
	assert.Equal(t, FileHeader{
		Type:   signature,
		Size:   uint32(len(b)),
		Offset: 14 + 40 + 4,
	}, fh)

	var ih InfoHeader
	require.NoError(t, ih.UnmarshalBinary(b[fileHeaderLen:]))
	assert.Equal(t, InfoHeader{
		Size:          40,
		Width:         3,
		Height:        2,
		Planes:        1,
		BitCount:      8,
		SizeImage:     8,
		XPelsPerMeter: 2835,
		YPelsPerMeter: 2835,
		ColorsUsed:    1,
	}, ih)

	assert.ErrorIs(t, fh.UnmarshalBinary(b[:13]), ErrTruncatedData)
	assert.ErrorIs(t, ih.UnmarshalBinary(b[fileHeaderLen:fileHeaderLen+39]), ErrTruncatedData)
}

func TestPaletteEntryRGB565(t *testing.T) {
	assert.Equal(t, uint16(0xf800), red.RGB565())
	assert.Equal(t, uint16(0x07e0), green.RGB565())
	assert.Equal(t, uint16(0x001f), blue.RGB565())
	assert.Equal(t, uint16(0xffff), white.RGB565())
	assert.Equal(t, uint16(0x0000), black.RGB565())

	// The reserved byte plays no part in the color
	assert.Equal(t, uint16(0xf800), PaletteEntry{Red: 0xff, Reserved: 0xff}.RGB565())
}
