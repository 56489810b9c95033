package storage

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
)

// GzipExt is the file extension used for compressed sitemap documents.
const GzipExt = ".xml.gz"

// GzipStore compresses every document before handing it to the wrapped store, and
// decompresses on Read. Names pass through unchanged.
type GzipStore struct {
	inner Store
}

// NewGzipStore wraps inner.
func NewGzipStore(inner Store) *GzipStore {
	return &GzipStore{inner: inner}
}

func (s *GzipStore) Write(name string, data []byte) error {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Name = name
	if _, err := zw.Write(data); err != nil {
		return &Error{Op: "compress", Name: name, Cause: err}
	}
	if err := zw.Close(); err != nil {
		return &Error{Op: "compress", Name: name, Cause: err}
	}
	return s.inner.Write(name, buf.Bytes())
}

func (s *GzipStore) Exists(name string) (bool, error) {
	return s.inner.Exists(name)
}

func (s *GzipStore) Read(name string) ([]byte, error) {
	raw, err := s.inner.Read(name)
	if err != nil {
		return nil, err
	}
	return Decompress(raw)
}

// Remove deletes name when the wrapped store supports removal.
func (s *GzipStore) Remove(name string) error {
	r, ok := s.inner.(Remover)
	if !ok {
		return &Error{Op: "remove", Name: name, Cause: fmt.Errorf("store does not support removal")}
	}
	return r.Remove(name)
}

// List lists the wrapped store when it supports enumeration.
func (s *GzipStore) List() ([]string, error) {
	r, ok := s.inner.(Remover)
	if !ok {
		return nil, &Error{Op: "list", Cause: fmt.Errorf("store does not support listing")}
	}
	return r.List()
}

// Decompress inflates a gzip stream held in memory.
func Decompress(raw []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to open gzip stream: %w", err)
	}
	defer func() { _ = zr.Close() }()

	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress: %w", err)
	}
	return data, nil
}
