package bmp565

import (
	"database/sql"
	"errors"
	"fmt"
	"image"

	"github.com/bodgit/bmp565/rgb565"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when an asset does not exist in the database.
var ErrNotFound = errors.New("bmp565: asset not found")

type Asset struct {
	Name       string
	SHA1       string
	Background uint16
	Width      int
	Height     int
}

// Frames are keyed by the SHA-1 of the source bitmap and the background it
// was blended against
type AssetDB struct {
	db *sql.DB
}

func NewAssetDB(file string) (*AssetDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on&_busy_timeout=5000", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS frame (id INTEGER PRIMARY KEY NOT NULL, sha1 TEXT NOT NULL, background INTEGER NOT NULL, width INTEGER NOT NULL, height INTEGER NOT NULL, pixels BLOB NOT NULL, UNIQUE(sha1, background))"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS asset (id INTEGER PRIMARY KEY NOT NULL, name TEXT NOT NULL UNIQUE, frame_id INTEGER NOT NULL, FOREIGN KEY(frame_id) REFERENCES frame(id))"); err != nil {
		db.Close()
		return nil, err
	}

	return &AssetDB{
		db: db,
	}, nil
}

func (db *AssetDB) Close() error {
	return db.db.Close()
}

func (db *AssetDB) HasFrame(sha string, background uint16) (bool, error) {
	var id int64
	switch err := db.db.QueryRow("SELECT id FROM frame WHERE sha1 = ? AND background = ?", sha, background).Scan(&id); err {
	case sql.ErrNoRows:
		return false, nil
	case nil:
		return true, nil
	default:
		return false, err
	}
}

func (db *AssetDB) addFrame(sha string, background uint16, m *rgb565.Image) (int64, error) {
	var id int64
	switch err := db.db.QueryRow("SELECT id FROM frame WHERE sha1 = ? AND background = ?", sha, background).Scan(&id); err {
	case sql.ErrNoRows:
		if m == nil {
			return 0, fmt.Errorf("bmp565: no frame for %s", sha)
		}
		b := m.Bounds()
		pixels := make([]byte, 0, 2*b.Dx()*b.Dy())
		for y := b.Min.Y; y < b.Max.Y; y++ {
			i := m.PixOffset(b.Min.X, y)
			pixels = append(pixels, m.Pix[i:i+2*b.Dx()]...)
		}
		result, err := db.db.Exec("INSERT INTO frame (sha1, background, width, height, pixels) VALUES (?, ?, ?, ?, ?)", sha, background, b.Dx(), b.Dy(), pixels)
		if err != nil {
			return 0, err
		}
		return result.LastInsertId()
	case nil:
		return id, nil
	default:
		return 0, err
	}
}

// Add stores m under name, replacing any existing asset with that name. If
// a frame for sha and background already exists m may be nil.
func (db *AssetDB) Add(name, sha string, background uint16, m *rgb565.Image) error {
	frame, err := db.addFrame(sha, background, m)
	if err != nil {
		return err
	}
	if _, err := db.db.Exec("INSERT OR REPLACE INTO asset (name, frame_id) VALUES (?, ?)", name, frame); err != nil {
		return err
	}
	return nil
}

// Find returns the frame stored under name, or nil if there is none.
func (db *AssetDB) Find(name string) (*rgb565.Image, error) {
	var width, height int
	var pixels []byte
	switch err := db.db.QueryRow("SELECT f.width, f.height, f.pixels FROM asset AS a JOIN frame AS f ON a.frame_id = f.id WHERE a.name = ?", name).Scan(&width, &height, &pixels); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		if len(pixels) != 2*width*height {
			return nil, fmt.Errorf("bmp565: frame for %q is %d bytes, expected %d", name, len(pixels), 2*width*height)
		}
		return &rgb565.Image{
			Pix:    pixels,
			Stride: 2 * width,
			Rect:   image.Rect(0, 0, width, height),
		}, nil
	default:
		return nil, err
	}
}

func (db *AssetDB) Assets() ([]Asset, error) {
	rows, err := db.db.Query("SELECT a.name, f.sha1, f.background, f.width, f.height FROM asset AS a JOIN frame AS f ON a.frame_id = f.id ORDER BY a.name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []Asset
	for rows.Next() {
		var a Asset
		if err := rows.Scan(&a.Name, &a.SHA1, &a.Background, &a.Width, &a.Height); err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

func (db *AssetDB) Remove(name string) error {
	result, err := db.db.Exec("DELETE FROM asset WHERE name = ?", name)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	if _, err := db.db.Exec("DELETE FROM frame WHERE id NOT IN (SELECT frame_id FROM asset)"); err != nil {
		return err
	}
	return nil
}
