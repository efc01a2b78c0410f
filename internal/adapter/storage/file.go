// Package storage provides dataset.Store implementations for local disk and
// S3-compatible object storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/couchcryptid/birdflu-tracker/internal/dataset"
)

// FileStore reads objects from a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates a store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Open opens dir/name. A missing file yields an error wrapping dataset.ErrDatasetNotFound.
func (s *FileStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := filepath.Join(s.dir, filepath.Clean("/"+name))
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, dataset.ErrDatasetNotFound)
		}
		return nil, err
	}
	return f, nil
}

// String describes the store for logs.
func (s *FileStore) String() string {
	return "file://" + s.dir
}
