// Package storage persists generated sitemap documents by name.
package storage

import (
	"errors"
	"fmt"
	"strings"
)

// Store persists whole documents under short names such as "1" or "index".
// Implementations must be safe for concurrent use.
type Store interface {
	Write(name string, data []byte) error
	Exists(name string) (bool, error)
	Read(name string) ([]byte, error)
}

// Remover is implemented by stores that can enumerate and delete documents.
type Remover interface {
	Remove(name string) error
	List() ([]string, error)
}

var (
	// ErrNotFound is returned by Read and Remove for a name with no document.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidName is returned for names that are empty or contain path elements.
	ErrInvalidName = errors.New("invalid document name")
)

// Error describes a failed storage operation on one document.
type Error struct {
	Op    string
	Name  string
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Name, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func checkName(op, name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return &Error{Op: op, Name: name, Cause: ErrInvalidName}
	}
	return nil
}

// RemoveAll deletes every document held by r and returns how many were removed.
func RemoveAll(r Remover) (int, error) {
	names, err := r.List()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, name := range names {
		if err := r.Remove(name); err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return removed, err
		}
		removed++
	}
	return removed, nil
}
