package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// FallbackStorageService stores files on local disk when R2 is unavailable
type FallbackStorageService struct {
	basePath string
	baseURL  string
	logger   zerolog.Logger
}

// NewFallbackStorageService creates a new fallback storage service rooted at basePath.
// Files are served back under baseURL.
func NewFallbackStorageService(basePath, baseURL string, logger zerolog.Logger) *FallbackStorageService {
	logger = logger.With().Str("component", "local_storage").Logger()
	if err := os.MkdirAll(basePath, 0755); err != nil {
		logger.Warn().Err(err).Str("path", basePath).Msg("failed to create storage directory")
	}

	return &FallbackStorageService{
		basePath: basePath,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		logger:   logger,
	}
}

// Upload saves a file to local storage
func (f *FallbackStorageService) Upload(ctx context.Context, key string, reader io.Reader, contentType string, size int64) (string, error) {
	fullPath, err := f.path(key)
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file %s: %w", fullPath, err)
	}
	defer file.Close()

	written, err := io.Copy(file, reader)
	if err != nil {
		return "", fmt.Errorf("failed to write file %s: %w", fullPath, err)
	}

	if written != size {
		os.Remove(fullPath)
		return "", fmt.Errorf("size mismatch: expected %d bytes, wrote %d bytes", size, written)
	}

	f.logger.Info().Str("key", key).Str("path", fullPath).Msg("saved file")
	return f.GetURL(key), nil
}

// Delete removes a file from local storage
func (f *FallbackStorageService) Delete(ctx context.Context, key string) error {
	fullPath, err := f.path(key)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file %s: %w", fullPath, err)
	}

	f.cleanupEmptyDirs(filepath.Dir(fullPath))
	return nil
}

// GetURL returns the public URL for a file
func (f *FallbackStorageService) GetURL(key string) string {
	key = strings.TrimPrefix(key, "/")
	return fmt.Sprintf("%s/%s", f.baseURL, key)
}

// Exists checks if a file exists in local storage
func (f *FallbackStorageService) Exists(ctx context.Context, key string) (bool, error) {
	fullPath, err := f.path(key)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(fullPath); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check if file exists: %w", err)
	}

	return true, nil
}

// path resolves key inside basePath, rejecting keys that escape it
func (f *FallbackStorageService) path(key string) (string, error) {
	key = strings.TrimPrefix(key, "/")
	fullPath := filepath.Join(f.basePath, filepath.FromSlash(key))

	rel, err := filepath.Rel(f.basePath, fullPath)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return fullPath, nil
}

// cleanupEmptyDirs removes empty directories up to the base path
func (f *FallbackStorageService) cleanupEmptyDirs(dir string) {
	if dir == filepath.Clean(f.basePath) || dir == "." || dir == "/" {
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) > 0 {
		return
	}

	if err := os.Remove(dir); err == nil {
		f.cleanupEmptyDirs(filepath.Dir(dir))
	}
}

// StorageServiceWithFallback wraps a primary storage service with a fallback
type StorageServiceWithFallback struct {
	primary  StorageService
	fallback StorageService
	logger   zerolog.Logger
}

// NewStorageServiceWithFallback creates a storage service with fallback capability
func NewStorageServiceWithFallback(primary, fallback StorageService, logger zerolog.Logger) *StorageServiceWithFallback {
	return &StorageServiceWithFallback{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// Upload tries primary storage first, falls back to fallback storage on error.
// The reader must be an io.Seeker for the fallback attempt.
func (s *StorageServiceWithFallback) Upload(ctx context.Context, key string, reader io.Reader, contentType string, size int64) (string, error) {
	url, err := s.primary.Upload(ctx, key, reader, contentType, size)
	if err == nil {
		return url, nil
	}

	s.logger.Warn().Err(err).Str("key", key).Msg("primary storage failed, using fallback")

	seeker, ok := reader.(io.Seeker)
	if !ok {
		return "", fmt.Errorf("primary storage failed and cannot reset reader for fallback: %w", err)
	}
	if _, seekErr := seeker.Seek(0, io.SeekStart); seekErr != nil {
		return "", fmt.Errorf("primary storage failed and cannot reset reader for fallback: %w", err)
	}

	return s.fallback.Upload(ctx, key, reader, contentType, size)
}

// Delete tries to delete from both storages
func (s *StorageServiceWithFallback) Delete(ctx context.Context, key string) error {
	primaryErr := s.primary.Delete(ctx, key)
	fallbackErr := s.fallback.Delete(ctx, key)

	// Return error only if both failed
	if primaryErr != nil && fallbackErr != nil {
		return fmt.Errorf("both storages failed - primary: %v, fallback: %v", primaryErr, fallbackErr)
	}

	return nil
}

var (
	_ StorageService = (*FallbackStorageService)(nil)
	_ StorageService = (*StorageServiceWithFallback)(nil)
	_ StorageService = (*R2Service)(nil)
)

// Exists checks both storages
func (s *StorageServiceWithFallback) Exists(ctx context.Context, key string) (bool, error) {
	exists, err := s.primary.Exists(ctx, key)
	if err == nil && exists {
		return true, nil
	}

	return s.fallback.Exists(ctx, key)
}
