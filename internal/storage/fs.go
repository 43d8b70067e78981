package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FSProvider stores objects as files under a base directory.
type FSProvider struct {
	baseDir string
}

// NewFSProvider creates the base directory when missing.
func NewFSProvider(baseDir string) (*FSProvider, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create base dir: %w", err)
	}
	return &FSProvider{baseDir: baseDir}, nil
}

// Put writes the object, creating intermediate shard directories.
func (p *FSProvider) Put(_ context.Context, key string, reader io.Reader) error {
	path, err := p.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create shard dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create object: %w", err)
	}
	if _, err := io.Copy(f, reader); err != nil {
		f.Close()
		return fmt.Errorf("write object: %w", err)
	}
	return f.Close()
}

// Open returns a reader for the stored object, or fs.ErrNotExist.
func (p *FSProvider) Open(_ context.Context, key string) (io.ReadCloser, error) {
	path, err := p.resolve(key)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

// Exists reports whether the object is on disk.
func (p *FSProvider) Exists(_ context.Context, key string) (bool, error) {
	path, err := p.resolve(key)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// resolve joins key under the base directory and rejects traversal outside it.
func (p *FSProvider) resolve(key string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(key))
	if cleaned == "." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid storage key: %q", key)
	}
	return filepath.Join(p.baseDir, cleaned), nil
}
