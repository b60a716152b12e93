// Package uploads stores receipt files on local disk under generated
// unique names, keeping the original filename only as metadata.
package uploads

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store writes and removes files under a single root directory.
type Store struct {
	root string
}

// NewStore ensures the root directory exists and returns a store over it.
func NewStore(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &Store{root: root}, nil
}

// Root returns the directory files are stored under.
func (s *Store) Root() string {
	return s.root
}

// Save writes the content to a freshly generated unique filename,
// preserving a sanitized lowercase extension of the original name.
// It returns the stored filename.
func (s *Store) Save(r io.Reader, originalName string) (string, error) {
	name := uuid.NewString()
	if ext := sanitizeExt(originalName); ext != "" {
		name += "." + ext
	}

	f, err := os.OpenFile(filepath.Join(s.root, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("write upload file: %w", err)
	}
	return name, nil
}

// Remove deletes a stored file. A missing file is not an error.
func (s *Store) Remove(name string) error {
	path, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove upload file: %w", err)
	}
	return nil
}

// Open opens a stored file for reading.
func (s *Store) Open(name string) (*os.File, error) {
	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open upload file: %w", err)
	}
	return f, nil
}

// resolve rejects names that would escape the root directory.
func (s *Store) resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid stored filename %q", name)
	}
	return filepath.Join(s.root, name), nil
}

// sanitizeExt extracts a safe lowercase extension from a client-supplied
// filename. Anything but short alphanumeric extensions is discarded.
func sanitizeExt(originalName string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filepath.Base(originalName)), "."))
	if ext == "" || len(ext) > 10 {
		return ""
	}
	for _, r := range ext {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
