package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DiskBackend stores each document as a JSON file in a directory
type DiskBackend struct {
	dir string
}

// NewDiskBackend creates a disk backend rooted at dir
func NewDiskBackend(dir string) *DiskBackend {
	return &DiskBackend{dir: dir}
}

// Load reads a document file
func (d *DiskBackend) Load(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(d.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, wrap("load", key, err)
}

// Save writes the document atomically via a temp file and rename
func (d *DiskBackend) Save(_ context.Context, key string, value []byte) error {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return wrap("save", key, fmt.Errorf("create data dir: %w", err))
	}

	tmp, err := os.CreateTemp(d.dir, key+".*.tmp")
	if err != nil {
		return wrap("save", key, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		return wrap("save", key, err)
	}
	if err := tmp.Close(); err != nil {
		return wrap("save", key, err)
	}
	return wrap("save", key, os.Rename(tmpName, d.path(key)))
}

// Delete removes a document file. Missing files are not an error.
func (d *DiskBackend) Delete(_ context.Context, key string) error {
	err := os.Remove(d.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return wrap("delete", key, err)
}

// Close is a no-op
func (d *DiskBackend) Close() error { return nil }

func (d *DiskBackend) path(key string) string {
	return filepath.Join(d.dir, key+".json")
}
