// Package store persists the air unit's TX profile table.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gsweb/internal/models"
)

// ErrUnknownBackend is returned by Open for an unsupported store type.
var ErrUnknownBackend = errors.New("unknown store backend")

// Store loads and replaces the whole profile table. Save is an atomic replace;
// there is no per-profile update.
type Store interface {
	// Load returns the stored profiles in stored order. A store that has never
	// been written returns an empty list and no error.
	Load(ctx context.Context) ([]models.TxProfile, error)

	// Save replaces the stored profiles.
	Save(ctx context.Context, profiles []models.TxProfile) error

	// Close releases any resources held by the store.
	Close() error
}

// Open creates the store backend named by kind. path is a file path for the
// file backends and a DSN for sqlite.
func Open(kind, path string) (Store, error) {
	switch kind {
	case "conf", "":
		return NewConfStore(path), nil
	case "yaml":
		return NewYAMLStore(path), nil
	case "sqlite":
		return NewSQLStore("sqlite", path)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, kind)
	}
}

// writeFileAtomic writes data to a uniquely named temp file next to path and
// renames it over path, so readers never see a half-written table and
// concurrent writers never share a temp file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
