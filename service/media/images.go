// Package media stores part photos. Uploads are decoded, bounded to a
// maximum edge, and re-encoded as webp so the media directory holds a
// single predictable format.
package media

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	"partstrack/core/fault"
)

const maxEdge = 1024

type Store struct {
	Dir string
}

func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

// SavePartImage decodes an uploaded image, shrinks it to fit maxEdge and
// writes <partID>.webp under the media directory. Returns the stored
// filename relative to the directory.
func (s *Store) SavePartImage(partID uint, r io.Reader) (string, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return "", fault.Invalidf("unsupported or corrupt image: %v", err)
	}
	img = imaging.Fit(img, maxEdge, maxEdge, imaging.Lanczos)

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("%d.webp", partID)
	f, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := webp.Encode(f, img, &webp.Options{Quality: 85}); err != nil {
		return "", err
	}
	return name, nil
}

// Remove deletes a stored image. Missing files are not an error.
func (s *Store) Remove(name string) error {
	if name == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.Dir, filepath.Base(name)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Path returns the absolute location of a stored image.
func (s *Store) Path(name string) string {
	return filepath.Join(s.Dir, filepath.Base(name))
}
