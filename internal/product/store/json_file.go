package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// jsonFile implements ProductStore on top of a single JSON file.
type jsonFile struct {
	path string
}

// NewJSONFileStore creates a ProductStore persisting the collection to the file at path.
// The file and its parent directory are created on the first Save.
func NewJSONFileStore(path string) ProductStore {
	return &jsonFile{path: path}
}

// Load reads and decodes the whole file. A missing file is an empty collection.
func (s *jsonFile) Load(ctx context.Context) ([]Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Product{}, nil
		}
		return nil, fmt.Errorf("failed to read products file %s: %w", s.path, err)
	}
	return decodeSnapshot(data)
}

// Save writes the collection to a temporary file in the same directory and renames it over
// the target, so readers never observe a partially written snapshot.
func (s *jsonFile) Save(ctx context.Context, products []Product) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encodeSnapshot(products)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create products directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary products file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write products file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync products file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close products file: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to set products file mode: %w", err)
	}
	if err = os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace products file %s: %w", s.path, err)
	}
	return nil
}

// Ping checks that the parent directory is usable. A missing directory is fine, Save creates it.
func (s *jsonFile) Ping(_ context.Context) error {
	dir := filepath.Dir(s.path)
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to stat products directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("products directory %s is not a directory", dir)
	}
	return nil
}
