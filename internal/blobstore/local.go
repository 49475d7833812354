package blobstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalBackend keeps blobs in a directory on disk.
type LocalBackend struct {
	dir string
}

// NewLocalBackend creates the directory if needed.
func NewLocalBackend(dir string) (*LocalBackend, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}
	return &LocalBackend{dir: dir}, nil
}

// Put writes data under key through a temp file and an atomic rename.
func (b *LocalBackend) Put(_ context.Context, key, _ string, data []byte) error {
	path := b.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(path), "blob_tmp_")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath) // no-op after a successful rename
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// Delete removes key. A missing file is not an error.
func (b *LocalBackend) Delete(_ context.Context, key string) error {
	if err := os.Remove(b.path(key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (b *LocalBackend) Exists(_ context.Context, key string) (bool, error) {
	_, err := os.Stat(b.path(key))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Dir returns the root directory.
func (b *LocalBackend) Dir() string {
	return b.dir
}

func (b *LocalBackend) path(key string) string {
	return filepath.Join(b.dir, filepath.FromSlash(key))
}
