/*
Package bmp565 maintains a library of bitmaps decoded for an RGB565 display.

Bitmaps are decoded with package bmp and stored in a SQLite database as raw
RGB565 frames so they can later be streamed to a display without decoding
again.
*/
package bmp565

import (
	"crypto/sha1"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/bmp565/bmp"
	"github.com/bodgit/bmp565/rgb565"
)

type Library struct {
	db         *AssetDB
	background uint16
	logger     *log.Logger
}

// New opens the library database at file. Translucent pixels in any
// imported bitmap are blended against background.
func New(file string, background uint16, logger *log.Logger) (*Library, error) {
	db, err := NewAssetDB(file)
	if err != nil {
		return nil, err
	}
	return &Library{
		db:         db,
		background: background,
		logger:     logger,
	}, nil
}

func (l *Library) Close() error {
	return l.db.Close()
}

// frame is a decoded bitmap on its way to the database. image is nil when
// the database already holds a frame for the same source and background.
type frame struct {
	name  string
	sha   string
	image *rgb565.Image
}

func assetName(file string) string {
	return strings.TrimSuffix(filepath.ToSlash(file), filepath.Ext(file))
}

func isFormatError(err error) bool {
	return errors.Is(err, bmp.ErrInvalidFormat) ||
		errors.Is(err, bmp.ErrTruncatedData) ||
		errors.Is(err, bmp.ErrUnsupportedFormat) ||
		errors.Is(err, bmp.ErrOutOfRangeIndex)
}

func (l *Library) decodeFile(file, name string) (frame, error) {
	f, err := os.Open(file)
	if err != nil {
		return frame{}, err
	}
	defer f.Close()

	h := sha1.New()
	if _, err := io.Copy(h, f); err != nil {
		return frame{}, err
	}
	fr := frame{
		name: name,
		sha:  fmt.Sprintf("%X", h.Sum(nil)),
	}

	exists, err := l.db.HasFrame(fr.sha, l.background)
	if err != nil {
		return frame{}, err
	}
	if exists {
		return fr, nil
	}

	// Open seeks back to the start itself
	d := bmp.NewDecoder(l.background)
	if err := d.Open(f); err != nil {
		return frame{}, fmt.Errorf("%s: %w", file, err)
	}
	if fr.image, err = d.Image(); err != nil {
		return frame{}, fmt.Errorf("%s: %w", file, err)
	}

	return fr, nil
}

// Import decodes the bitmap at path and stores it. If path is a directory
// every bitmap beneath it is imported with a name relative to path.
func (l *Library) Import(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return l.Scan(path)
	}

	fr, err := l.decodeFile(path, assetName(filepath.Base(path)))
	if err != nil {
		return err
	}
	if err := l.db.Add(fr.name, fr.sha, l.background, fr.image); err != nil {
		return err
	}
	l.logger.Printf("Imported \"%s\" as \"%s\"\n", path, fr.name)

	return nil
}

// Export writes the named asset to w.
func (l *Library) Export(name string, w io.Writer, format Format) error {
	m, err := l.db.Find(name)
	if err != nil {
		return err
	}
	if m == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return Encode(w, m, format)
}

func (l *Library) Assets() ([]Asset, error) {
	return l.db.Assets()
}

func (l *Library) Remove(name string) error {
	if err := l.db.Remove(name); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%w: %s", err, name)
		}
		return err
	}
	return nil
}
