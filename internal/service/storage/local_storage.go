package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage reads submission files from the shared uploads directory.
type LocalStorage struct {
	baseDir string
}

func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base dir: %w", err)
	}

	return &LocalStorage{baseDir: abs}, nil
}

func (s *LocalStorage) Fetch(ctx context.Context, key string) ([]byte, error) {
	path := filepath.Join(s.baseDir, filepath.FromSlash(key))

	// Keys come from another service; never follow them outside the
	// uploads directory.
	if !strings.HasPrefix(path, s.baseDir+string(filepath.Separator)) {
		return nil, fmt.Errorf("path escapes storage root: %s", key)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}

	return data, nil
}
