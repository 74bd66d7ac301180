// Package upload stores item photos on the local filesystem.
package upload

import (
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/harusame/merchandise-manager/internal/clock"
)

// allowedExts is the image extension allow-list. Anything else is skipped
// silently: the record is saved without a photo rather than the whole write
// failing.
var allowedExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true,
}

var unsafeRunes = regexp.MustCompile(`[^a-zA-Z0-9._\-ぁ-んァ-ン一-龯]`)

type Store struct {
	dir string
	clk clock.Clock
}

func NewStore(dir string, clk clock.Clock) *Store {
	return &Store{dir: dir, clk: clk}
}

// Dir returns the storage directory.
func (s *Store) Dir() string { return s.dir }

// Allowed reports whether filename carries an accepted image extension.
func Allowed(filename string) bool {
	return allowedExts[strings.ToLower(filepath.Ext(filename))]
}

// sanitize strips path separators and unsafe runes from an uploaded filename.
func sanitize(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	return unsafeRunes.ReplaceAllString(base, "_")
}

// FromRequest extracts the named multipart file from r and stores it.
// It returns "" (and no error) when the field is absent, empty, or the
// extension is not allowed; a non-nil error means a genuine I/O failure.
func (s *Store) FromRequest(r *http.Request, field string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		// no file in the form is not an error
		return "", nil
	}
	defer file.Close()
	if header.Filename == "" || !Allowed(header.Filename) {
		return "", nil
	}
	return s.save(file, header)
}

func (s *Store) save(file multipart.File, header *multipart.FileHeader) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}
	name := s.clk.Now().Format("20060102_150405") + "_" + sanitize(header.Filename)
	path := filepath.Join(s.dir, name)
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}
