// Package storage abstracts where input binaries are fetched from: the
// local filesystem or a COS bucket.
package storage

import (
	"context"
	"io"

	apperrors "github.com/rustwasm/twiggy-sub000/pkg/errors"

	"github.com/rustwasm/twiggy-sub000/pkg/config"
)

// Storage defines the interface for retrieving input binaries.
type Storage interface {
	// Download opens the object at the specified key for reading.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Fetch reads the whole object at the specified key.
	Fetch(ctx context.Context, key string) ([]byte, error)

	// Exists checks if an object exists at the specified key.
	Exists(ctx context.Context, key string) (bool, error)
}

// Type represents the type of storage backend.
type Type string

const (
	// TypeLocal reads from the local filesystem.
	TypeLocal Type = "local"
	// TypeCOS reads from a Tencent Cloud COS bucket.
	TypeCOS Type = "cos"
)

// New creates a Storage instance based on the configuration.
func New(cfg *config.StorageConfig) (Storage, error) {
	switch Type(cfg.Type) {
	case TypeLocal:
		return NewLocalStorage(cfg.LocalPath)
	case TypeCOS:
		return NewCOSStorage(&COSConfig{
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			SecretID:  cfg.SecretID,
			SecretKey: cfg.SecretKey,
			Domain:    cfg.Domain,
			Scheme:    cfg.Scheme,
		})
	default:
		return nil, apperrors.Newf(apperrors.CodeStorageError, "unsupported storage type: %s", cfg.Type)
	}
}

// fetchAll reads a download to completion.
func fetchAll(ctx context.Context, s Storage, key string) ([]byte, error) {
	rc, err := s.Download(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
