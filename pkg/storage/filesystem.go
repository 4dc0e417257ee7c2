package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileBackend keeps one JSON file per key under a base directory.
type FileBackend struct {
	baseDir string
}

// NewFileBackend ensures the base directory exists and returns a handle.
func NewFileBackend(baseDir string) (*FileBackend, error) {
	if baseDir == "" {
		baseDir = "./data"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &FileBackend{baseDir: baseDir}, nil
}

// Get reads the file stored for key.
func (b *FileBackend) Get(_ context.Context, key string) ([]byte, error) {
	path, err := b.resolve(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

// Set replaces the file for key. The write goes to a temp file that is
// renamed into place so readers never see a half-written snapshot.
func (b *FileBackend) Set(_ context.Context, key string, value []byte) error {
	path, err := b.resolve(key)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(b.baseDir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", key, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()        //nolint:errcheck
		os.Remove(tmpName) //nolint:errcheck
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName) //nolint:errcheck
		return fmt.Errorf("close %s: %w", key, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName) //nolint:errcheck
		return fmt.Errorf("replace %s: %w", key, err)
	}
	return nil
}

// Remove deletes the file for key if present.
func (b *FileBackend) Remove(_ context.Context, key string) error {
	path, err := b.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// Path exposes the file backing key (useful for debugging).
func (b *FileBackend) Path(key string) string {
	path, _ := b.resolve(key)
	return path
}

func (b *FileBackend) resolve(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(b.baseDir, key+".json"), nil
}
