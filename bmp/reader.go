package bmp

import (
	"errors"
	"fmt"
	"io"

	"github.com/bodgit/bmp565/rgb565"
)

// ErrClosed is returned when rows are read from a decoder that is not open.
var ErrClosed = errors.New("bmp: decoder not open")

func truncated(err error, what string) error {
	if err == io.ErrUnexpectedEOF {
		return fmt.Errorf("%w: %s", ErrTruncatedData, what)
	}
	return err
}

// A Decoder renders a bitmap from a seekable stream one row at a time. The
// zero value is ready to use and blends against black.
type Decoder struct {
	r io.ReadSeeker

	fileHeader FileHeader
	infoHeader InfoHeader

	palette     [maxPaletteSize]PaletteEntry
	colors      [maxPaletteSize]uint16
	paletteSize int

	channels [4]channel

	width, height int
	stride        int

	// Current stream position or -1 if unknown
	pos int64

	background uint16
}

// NewDecoder returns a Decoder that blends translucent pixels against
// background.
func NewDecoder(background uint16) *Decoder {
	return &Decoder{background: background}
}

func (d *Decoder) reset() {
	background := d.background
	*d = Decoder{background: background, pos: -1}
}

// Open parses the headers and palette from r and prepares the decoder to
// draw. Any previous state is discarded. If Open fails the decoder is left
// closed and Draw does nothing.
func (d *Decoder) Open(r io.ReadSeeker) error {
	d.reset()
	if err := d.load(r); err != nil {
		d.reset()
		return err
	}
	d.r = r
	return nil
}

func (d *Decoder) load(r io.ReadSeeker) error {
	var b [infoHeaderLen + masksLen]byte

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return err
	}

	if err := readFull(r, b[:fileHeaderLen]); err != nil {
		return truncated(err, "file header")
	}
	if err := d.fileHeader.UnmarshalBinary(b[:fileHeaderLen]); err != nil {
		return err
	}
	if d.fileHeader.Type != signature {
		return fmt.Errorf("%w: bad signature %#04x", ErrInvalidFormat, d.fileHeader.Type)
	}

	if err := readFull(r, b[:infoHeaderLen]); err != nil {
		return truncated(err, "info header")
	}
	if err := d.infoHeader.UnmarshalBinary(b[:infoHeaderLen]); err != nil {
		return err
	}

	h := &d.infoHeader
	if h.Width < 0 {
		return fmt.Errorf("%w: negative width %d", ErrInvalidFormat, h.Width)
	}
	if h.Height < 0 {
		return fmt.Errorf("%w: top-down bitmap", ErrUnsupportedFormat)
	}

	switch h.BitCount {
	case 1, 4, 8, 16, 24, 32:
	default:
		return fmt.Errorf("%w: %d bits per pixel", ErrUnsupportedFormat, h.BitCount)
	}

	switch h.Compression {
	case biRGB:
	case biBitFields:
		if h.BitCount != 16 && h.BitCount != 32 {
			return fmt.Errorf("%w: bit fields with %d bits per pixel", ErrUnsupportedFormat, h.BitCount)
		}
		// The masks immediately follow the classic header
		if err := readFull(r, b[infoHeaderLen:]); err != nil {
			return truncated(err, "channel masks")
		}
		if err := h.unmarshalMasks(b[infoHeaderLen:]); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: compression method %d", ErrUnsupportedFormat, h.Compression)
	}

	switch h.BitCount {
	case 1, 4, 8:
		if err := d.loadPalette(r); err != nil {
			return err
		}
	case 16:
		// Pixels are passed through untouched so must already be RGB565
		if h.Compression == biBitFields && (h.RedMask != 0xf800 || h.GreenMask != 0x07e0 || h.BlueMask != 0x001f) {
			return fmt.Errorf("%w: 16 bit channel masks %#x/%#x/%#x", ErrUnsupportedFormat, h.RedMask, h.GreenMask, h.BlueMask)
		}
	case 32:
		var err error
		if d.channels, err = h.channels(); err != nil {
			return err
		}
	}

	// Check the stream really holds the declared pixels before anything
	// is sized from the header
	stride := ((int64(h.BitCount)*int64(h.Width)+7)/8 + 3) &^ 3
	end, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return err
	}
	offset := int64(d.fileHeader.Offset)
	if offset > end || (h.Height > 0 && stride > (end-offset)/int64(h.Height)) {
		return fmt.Errorf("%w: pixel data for %dx%d at offset %d, stream is %d bytes", ErrTruncatedData, h.Width, h.Height, offset, end)
	}

	if _, err := r.Seek(offset, io.SeekStart); err != nil {
		return err
	}
	d.pos = offset

	d.width = int(h.Width)
	d.height = int(h.Height)
	d.stride = int(stride)

	return nil
}

func (d *Decoder) loadPalette(r io.ReadSeeker) error {
	if _, err := r.Seek(fileHeaderLen+int64(d.infoHeader.Size), io.SeekStart); err != nil {
		return err
	}

	n := int(d.infoHeader.ColorsUsed)
	if n == 0 {
		n = 1 << d.infoHeader.BitCount
	}
	if n > maxPaletteSize {
		return fmt.Errorf("%w: %d palette entries", ErrInvalidFormat, n)
	}

	var b [maxPaletteSize * entryLen]byte
	if err := readFull(r, b[:n*entryLen]); err != nil {
		return truncated(err, "palette")
	}

	for i := 0; i < n; i++ {
		p := PaletteEntry{
			Blue:     b[i*entryLen+0],
			Green:    b[i*entryLen+1],
			Red:      b[i*entryLen+2],
			Reserved: b[i*entryLen+3],
		}
		d.palette[i] = p
		d.colors[i] = p.RGB565()
	}
	d.paletteSize = n

	return nil
}

// Close releases the stream, closing it if it implements io.Closer.
func (d *Decoder) Close() error {
	r := d.r
	d.reset()
	if c, ok := r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// ReadRow reads the padded pixel data for the given row into b, which must
// be at least Stride bytes long. Row 0 is the top of the image, which is the
// last row stored in the file.
func (d *Decoder) ReadRow(row int, b []byte) error {
	if d.r == nil {
		return ErrClosed
	}
	if row < 0 || row >= d.height {
		return fmt.Errorf("%w: row %d", ErrOutOfRangeIndex, row)
	}
	if len(b) < d.stride {
		return io.ErrShortBuffer
	}

	pos := int64(d.fileHeader.Offset) + int64(d.height-row-1)*int64(d.stride)
	if d.pos == pos {
		// The stream may have been moved since the last read
		if cur, err := d.r.Seek(0, io.SeekCurrent); err != nil || cur != pos {
			d.pos = -1
		}
	}
	if d.pos != pos {
		if _, err := d.r.Seek(pos, io.SeekStart); err != nil {
			d.pos = -1
			return err
		}
	}

	if err := readFull(d.r, b[:d.stride]); err != nil {
		d.pos = -1
		return truncated(err, fmt.Sprintf("row %d", row))
	}
	d.pos = pos + int64(d.stride)

	return nil
}

// Width returns the image width in pixels, or zero if the decoder is not
// open.
func (d *Decoder) Width() int { return d.width }

// Height returns the image height in pixels, or zero if the decoder is not
// open.
func (d *Decoder) Height() int { return d.height }

// Stride returns the length in bytes of each padded row.
func (d *Decoder) Stride() int { return d.stride }

// FileHeader returns the parsed file header.
func (d *Decoder) FileHeader() FileHeader { return d.fileHeader }

// InfoHeader returns the parsed info header.
func (d *Decoder) InfoHeader() InfoHeader { return d.infoHeader }

// Palette returns the palette of an indexed image.
func (d *Decoder) Palette() []PaletteEntry {
	return append([]PaletteEntry(nil), d.palette[:d.paletteSize]...)
}

// Background returns the color translucent pixels are blended against.
func (d *Decoder) Background() uint16 { return d.background }

// SetBackground changes the color translucent pixels are blended against.
func (d *Decoder) SetBackground(c uint16) { d.background = c }

// Image draws the open bitmap into a new image.
func (d *Decoder) Image() (*rgb565.Image, error) {
	m := rgb565.NewImage(rectangle(d.width, d.height))
	if err := d.Draw(m, 0, 0); err != nil {
		return nil, err
	}
	return m, nil
}
