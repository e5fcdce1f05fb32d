package uploads

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrTypeNotAllowed = errors.New("attachment_type_not_allowed")

// allowedExtensions is the attachment allow-list for ticket uploads.
var allowedExtensions = map[string]bool{
	".pdf":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".doc":  true,
	".docx": true,
	".xls":  true,
	".xlsx": true,
}

// Store saves ticket attachments on local disk under a single directory.
type Store struct {
	dir string
}

// NewStore creates the upload directory if needed and returns a Store.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Allowed reports whether the filename carries an accepted extension.
func Allowed(filename string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Save writes the content to disk under a unique sanitized name and returns
// the stored filename. Returns ErrTypeNotAllowed for disallowed extensions.
func (s *Store) Save(originalName string, content io.Reader) (string, error) {
	if !Allowed(originalName) {
		return "", ErrTypeNotAllowed
	}

	// Prefix with a uuid so concurrent uploads of the same file never collide,
	// and strip any path components a hostile client supplied.
	name := fmt.Sprintf("%s_%s", uuid.NewString(), sanitize(filepath.Base(originalName)))

	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, content); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return name, nil
}

// Path resolves a stored filename to its on-disk path, rejecting names that
// escape the upload directory.
func (s *Store) Path(storedName string) (string, error) {
	if storedName != filepath.Base(storedName) {
		return "", errors.New("invalid attachment name")
	}
	path := filepath.Join(s.dir, storedName)
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	return path, nil
}

// sanitize keeps letters, digits, dots, dashes and underscores.
func sanitize(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
