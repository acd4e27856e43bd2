// Package storage persists rendered creatives into the deterministic output
// hierarchy {product}/{ratio}/creative_{ratio}.{ext}.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pipeline/internal/domain"
)

// FileStore writes creatives onto the local filesystem under a fixed root.
type FileStore struct {
	basePath string
}

// NewFileStore initializes a FileStore rooted at basePath.
func NewFileStore(basePath string) (*FileStore, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("storage: base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure base path: %w", err)
	}
	return &FileStore{basePath: basePath}, nil
}

// BasePath returns the configured root directory.
func (s *FileStore) BasePath() string {
	if s == nil {
		return ""
	}
	return s.basePath
}

// CreativeKey derives the output location for a creative as a pure function
// of its identity. Two runs over the same brief and config always produce the
// same key, independent of traversal order.
func CreativeKey(productID, ratioName, ext string) string {
	return fmt.Sprintf("%s/%s/creative_%s.%s", productID, ratioName, ratioName, ext)
}

// Persist writes the creative at its derived key, creating intermediate
// directories and overwriting any previous file (last-write-wins on re-run).
// The write goes through a temp file and rename so a creative on disk is
// never partial. Filesystem errors wrap domain.ErrPersistFailed.
func (s *FileStore) Persist(ctx context.Context, creative domain.Creative) (string, error) {
	if s == nil {
		return "", fmt.Errorf("%w: no store configured", domain.ErrPersistFailed)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key := CreativeKey(creative.ProductID, creative.Ratio.Name, creative.Format)
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrPersistFailed, err)
	}

	fullPath := filepath.Join(s.basePath, filepath.FromSlash(cleanKey))
	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: ensure directory: %v", domain.ErrPersistFailed, err)
	}

	tmp, err := os.CreateTemp(dir, ".creative-*")
	if err != nil {
		return "", fmt.Errorf("%w: create temp file: %v", domain.ErrPersistFailed, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(creative.Data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("%w: write file: %v", domain.ErrPersistFailed, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("%w: close file: %v", domain.ErrPersistFailed, err)
	}
	if err := os.Rename(tmpName, fullPath); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("%w: place file: %v", domain.ErrPersistFailed, err)
	}
	return fullPath, nil
}

// sanitizeKey normalizes a key and prevents escaping the storage root.
func sanitizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("key is required")
	}
	key = strings.ReplaceAll(key, "\\", "/")
	key = strings.TrimPrefix(key, "./")
	key = strings.TrimLeft(key, "/")
	cleaned := filepath.Clean(key)
	cleaned = strings.ReplaceAll(cleaned, "\\", "/")
	if cleaned == "." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return cleaned, nil
}
