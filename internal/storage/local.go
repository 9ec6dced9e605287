package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"

	apperrors "github.com/rustwasm/twiggy-sub000/pkg/errors"
)

// LocalStorage implements Storage for the local filesystem, rooted at a
// base directory.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a LocalStorage rooted at basePath.
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if basePath == "" {
		basePath = "."
	}
	info, err := os.Stat(basePath)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorageError, "storage base path", err)
	}
	if !info.IsDir() {
		return nil, apperrors.Newf(apperrors.CodeStorageError, "storage base path %s is not a directory", basePath)
	}
	return &LocalStorage{basePath: basePath}, nil
}

func (s *LocalStorage) resolve(key string) string {
	if filepath.IsAbs(key) {
		return key
	}
	return filepath.Join(s.basePath, key)
}

// Download opens the file at the key for reading.
func (s *LocalStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(s.resolve(key))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorageError, "opening "+key, err)
	}
	return f, nil
}

// Fetch reads the whole file at the key.
func (s *LocalStorage) Fetch(ctx context.Context, key string) ([]byte, error) {
	return fetchAll(ctx, s, key)
}

// Exists checks if the file exists.
func (s *LocalStorage) Exists(ctx context.Context, key string) (bool, error) {
	_, err := os.Stat(s.resolve(key))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, apperrors.Wrap(apperrors.CodeStorageError, "stat "+key, err)
}
