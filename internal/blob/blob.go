// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package blob archives raw per-trial artifacts (JSON aggregates, HTML,
// extracted report text) on the local filesystem, one directory per
// trial ID.
package blob

import (
	"fmt"
	"os"
	"path/filepath"
)

// Store writes objects under a base directory.
type Store struct {
	baseDir string
}

// NewStore returns a Store rooted at baseDir. The directory is created
// lazily on first write.
func NewStore(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// Put writes data to <baseDir>/<prefix>/<name>, creating directories as
// needed. The write goes to a temp file first and is renamed into place
// on success, so readers never observe a partial object.
func (s *Store) Put(prefix, name string, data []byte) error {
	dir := filepath.Join(s.baseDir, prefix)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, ".blob-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, writeErr := tmpFile.Write(data)
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing object: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	destPath := filepath.Join(dir, name)
	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
