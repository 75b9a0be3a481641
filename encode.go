package bmp565

import (
	"fmt"
	"image/gif"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/bodgit/bmp565/rgb565"
	"github.com/ericpauley/go-quantize/quantize"
)

type Format int

const (
	// Little-endian RGB565 pixels with no header
	FormatRaw Format = iota
	FormatPNG
	FormatGIF
)

func (f Format) String() string {
	switch f {
	case FormatRaw:
		return "raw"
	case FormatPNG:
		return "png"
	case FormatGIF:
		return "gif"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// FormatFromFilename picks the format based on the file extension, falling
// back to FormatRaw.
func FormatFromFilename(file string) Format {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".png":
		return FormatPNG
	case ".gif":
		return FormatGIF
	default:
		return FormatRaw
	}
}

func Encode(w io.Writer, m *rgb565.Image, format Format) error {
	switch format {
	case FormatRaw:
		_, err := m.WriteTo(w)
		return err
	case FormatPNG:
		return png.Encode(w, m)
	case FormatGIF:
		return gif.Encode(w, m, &gif.Options{
			NumColors: 256,
			Quantizer: &quantize.MedianCutQuantizer{},
		})
	default:
		return fmt.Errorf("bmp565: unknown format %v", format)
	}
}
