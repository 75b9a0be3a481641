package bmp

import (
	"bytes"
	"encoding/binary"
	"io"
)

// fixture describes a bitmap to be serialized for a test. Rows are listed
// top first and unpadded; bytes() stores them bottom first with padding.
type fixture struct {
	bitCount    uint16
	width       int
	height      int
	compression uint32
	masks       [4]uint32
	colorsUsed  uint32
	palette     []PaletteEntry
	rows        [][]byte
}

func (f fixture) offset() int {
	n := fileHeaderLen + infoHeaderLen + len(f.palette)*entryLen
	if f.compression == biBitFields {
		n += masksLen
	}
	return n
}

func (f fixture) bytes() []byte {
	stride := Stride(int(f.bitCount), f.width)
	offset := f.offset()

	b := new(bytes.Buffer)
	le := func(v interface{}) {
		if err := binary.Write(b, binary.LittleEndian, v); err != nil {
			panic(err)
		}
	}

	// File header
	le(uint16(signature))
	le(uint32(offset + stride*len(f.rows)))
	le(uint16(0))
	le(uint16(0))
	le(uint32(offset))

	// Info header
	le(uint32(infoHeaderLen))
	le(int32(f.width))
	le(int32(f.height))
	le(uint16(1))
	le(f.bitCount)
	le(f.compression)
	le(uint32(stride * len(f.rows)))
	le(int32(2835))
	le(int32(2835))
	le(f.colorsUsed)
	le(uint32(0))

	if f.compression == biBitFields {
		le(f.masks)
	}

	for _, p := range f.palette {
		b.Write([]byte{p.Blue, p.Green, p.Red, p.Reserved})
	}

	for i := len(f.rows) - 1; i >= 0; i-- {
		row := make([]byte, stride)
		copy(row, f.rows[i])
		b.Write(row)
	}

	return b.Bytes()
}

// recorder wraps a bytes.Reader and remembers every seek that moves it.
type recorder struct {
	*bytes.Reader
	seeks  []int64
	closed bool
}

func newRecorder(b []byte) *recorder {
	return &recorder{Reader: bytes.NewReader(b)}
}

func (r *recorder) Seek(offset int64, whence int) (int64, error) {
	n, err := r.Reader.Seek(offset, whence)
	if err == nil && (whence != io.SeekCurrent || offset != 0) {
		r.seeks = append(r.seeks, n)
	}
	return n, err
}

func (r *recorder) Close() error {
	r.closed = true
	return nil
}

type counter int

func (c *counter) SetPixel(x, y int, color uint16) {
	*c++
}

var (
	black = PaletteEntry{0x00, 0x00, 0x00, 0x00}
	white = PaletteEntry{0xff, 0xff, 0xff, 0x00}
	red   = PaletteEntry{Red: 0xff}
	green = PaletteEntry{Green: 0xff}
	blue  = PaletteEntry{Blue: 0xff}
)
