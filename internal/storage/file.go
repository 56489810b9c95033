package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultExt is the file extension used for uncompressed sitemap documents.
const DefaultExt = ".xml"

// FileStore keeps each document in its own file, <dir>/<name><ext>.
type FileStore struct {
	dir string
	ext string
}

// NewFileStore creates dir if needed and returns a store rooted there.
// An empty ext defaults to DefaultExt.
func NewFileStore(dir, ext string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage directory is required")
	}
	if ext == "" {
		ext = DefaultExt
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileStore{dir: dir, ext: ext}, nil
}

// Dir returns the directory the store writes to.
func (s *FileStore) Dir() string {
	return s.dir
}

// Path returns the file path backing name.
func (s *FileStore) Path(name string) string {
	return filepath.Join(s.dir, name+s.ext)
}

// Write replaces the document atomically through a temporary file in the same directory.
func (s *FileStore) Write(name string, data []byte) error {
	if err := checkName("write", name); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+"-*.tmp")
	if err != nil {
		return &Error{Op: "write", Name: name, Cause: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return &Error{Op: "write", Name: name, Cause: err}
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return &Error{Op: "write", Name: name, Cause: err}
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return &Error{Op: "write", Name: name, Cause: err}
	}
	if err := os.Rename(tmpName, s.Path(name)); err != nil {
		_ = os.Remove(tmpName)
		return &Error{Op: "write", Name: name, Cause: err}
	}
	return nil
}

// Exists reports whether a document is stored under name.
func (s *FileStore) Exists(name string) (bool, error) {
	if err := checkName("stat", name); err != nil {
		return false, err
	}
	_, err := os.Stat(s.Path(name))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, &Error{Op: "stat", Name: name, Cause: err}
}

// Read returns the stored document, or ErrNotFound.
func (s *FileStore) Read(name string) ([]byte, error) {
	if err := checkName("read", name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &Error{Op: "read", Name: name, Cause: ErrNotFound}
	}
	if err != nil {
		return nil, &Error{Op: "read", Name: name, Cause: err}
	}
	return data, nil
}

// Remove deletes the document stored under name.
func (s *FileStore) Remove(name string) error {
	if err := checkName("remove", name); err != nil {
		return err
	}
	err := os.Remove(s.Path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return &Error{Op: "remove", Name: name, Cause: ErrNotFound}
	}
	if err != nil {
		return &Error{Op: "remove", Name: name, Cause: err}
	}
	return nil
}

// List returns the names of stored documents in lexical order.
func (s *FileStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, &Error{Op: "list", Name: s.dir, Cause: err}
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if name, ok := strings.CutSuffix(e.Name(), s.ext); ok && name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}
