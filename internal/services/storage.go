package services

import (
	"context"
	"io"
)

// StorageService defines the interface for file storage operations
type StorageService interface {
	// Upload uploads a file to storage and returns the public URL
	Upload(ctx context.Context, key string, reader io.Reader, contentType string, size int64) (string, error)

	// Delete removes a file from storage
	Delete(ctx context.Context, key string) error

	// Exists checks if a file exists in storage
	Exists(ctx context.Context, key string) (bool, error)
}
