package storage

import (
	"context"
	"fmt"
	"io"

	"sqlgate/internal/config"
)

// Provider stores exported files.
type Provider interface {
	// StreamToFile returns a WriteCloser whose data is streamed to key.
	// The returned channel receives a single error (or nil) once the stored
	// object is complete, which is after the writer is closed. When the
	// destination cannot be opened the writer is nil and the channel
	// already holds the error.
	StreamToFile(ctx context.Context, key string) (io.WriteCloser, <-chan error)

	// OpenFile opens the stored file for reading.
	OpenFile(ctx context.Context, key string) (io.ReadCloser, error)

	// GetDownloadURL returns a URL locating the stored item.
	GetDownloadURL(key string) string
}

// Open returns the provider selected by cfg.StorageType.
func Open(cfg *config.Config) (Provider, error) {
	switch cfg.StorageType {
	case "local":
		return NewLocalProvider(cfg.LocalStoragePath), nil
	case "s3":
		return NewS3Provider(NewS3Client(cfg), cfg.S3Bucket), nil
	default:
		return nil, fmt.Errorf("unsupported storage type %q", cfg.StorageType)
	}
}
