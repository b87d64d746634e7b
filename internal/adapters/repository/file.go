package repository

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
)

// FileStore keeps one file per key under a base directory. Keys are
// path-escaped so they can never leave the directory.
type FileStore struct {
	base string
}

// NewFileStore creates the base directory if needed.
func NewFileStore(base string) (*FileStore, error) {
	if base == "" {
		base = defaultFilePath
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{base: base}, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.base, url.PathEscape(key)+".json")
}

// Get implements Store.
func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	b, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return b, err
}

// Put writes to a temp file and renames it over the target.
func (s *FileStore) Put(_ context.Context, key string, value []byte) error {
	if key == "" {
		return ErrEmptyKey
	}
	f, err := os.CreateTemp(s.base, ".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(value); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, s.path(key)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", key, err)
	}
	return nil
}

// Delete implements Store.
func (s *FileStore) Delete(_ context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	err := os.Remove(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Close implements Store.
func (s *FileStore) Close() error { return nil }
