package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"rifas-storefront/internal/config"
)

// StorageFactory creates storage services with proper fallback configuration
type StorageFactory struct {
	config *config.Config
	logger zerolog.Logger
}

// NewStorageFactory creates a new storage factory
func NewStorageFactory(cfg *config.Config, logger zerolog.Logger) *StorageFactory {
	return &StorageFactory{config: cfg, logger: logger}
}

// CreateStorageService creates a storage service with R2 primary and local fallback.
// Local disk alone is used when R2 is not configured or unreachable.
func (f *StorageFactory) CreateStorageService(ctx context.Context) StorageService {
	fallback := NewFallbackStorageService(f.config.Server.UploadsPath, "/uploads", f.logger)

	if !f.config.R2.Enabled() {
		f.logger.Info().Msg("R2 not configured, storing payment proofs on local disk")
		return fallback
	}

	r2Service, err := NewR2Service(ctx, f.config.R2, f.logger)
	if err != nil {
		f.logger.Warn().Err(err).Msg("R2 service unavailable, using fallback storage only")
		return fallback
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := r2Service.HealthCheck(checkCtx); err != nil {
		f.logger.Warn().Err(err).Msg("R2 health check failed, using fallback storage only")
		return fallback
	}

	f.logger.Info().Str("bucket", f.config.R2.BucketName).Msg("R2 storage service initialized")
	return NewStorageServiceWithFallback(r2Service, fallback, f.logger)
}

// ValidateR2Configuration reports the R2 settings that are missing
func (f *StorageFactory) ValidateR2Configuration() error {
	r2 := f.config.R2
	var missing []string
	if r2.AccountID == "" && r2.Endpoint == "" {
		missing = append(missing, "R2_ACCOUNT_ID or R2_ENDPOINT")
	}
	if r2.AccessKeyID == "" {
		missing = append(missing, "R2_ACCESS_KEY_ID")
	}
	if r2.SecretAccessKey == "" {
		missing = append(missing, "R2_SECRET_ACCESS_KEY")
	}
	if r2.BucketName == "" {
		missing = append(missing, "R2_BUCKET_NAME")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing R2 settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

// StorageInfo summarizes the storage configuration for operators
func (f *StorageFactory) StorageInfo() map[string]interface{} {
	return map[string]interface{}{
		"r2_configured": f.config.R2.Enabled(),
		"bucket_name":   f.config.R2.BucketName,
		"public_url":    f.config.R2.PublicURL,
		"fallback_path": f.config.Server.UploadsPath,
	}
}

// VerifyR2Write uploads, looks up and removes a test object in the R2 bucket.
func (f *StorageFactory) VerifyR2Write(ctx context.Context) error {
	if err := f.ValidateR2Configuration(); err != nil {
		return err
	}

	r2Service, err := NewR2Service(ctx, f.config.R2, f.logger)
	if err != nil {
		return err
	}
	return verifyWrite(ctx, r2Service)
}

// VerifyWrite runs the write check against the storage the server would use
func (f *StorageFactory) VerifyWrite(ctx context.Context) error {
	return verifyWrite(ctx, f.CreateStorageService(ctx))
}

// verifyWrite uploads a small object, checks it landed and removes it
func verifyWrite(ctx context.Context, storage StorageService) error {
	key := fmt.Sprintf("healthcheck/check-%d.txt", time.Now().UnixNano())
	payload := []byte("ok")
	if _, err := storage.Upload(ctx, key, bytes.NewReader(payload), "text/plain", int64(len(payload))); err != nil {
		return fmt.Errorf("test upload failed: %w", err)
	}

	exists, err := storage.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("test object lookup failed: %w", err)
	}
	if !exists {
		return fmt.Errorf("test object %s not found after upload", key)
	}

	if err := storage.Delete(ctx, key); err != nil {
		return fmt.Errorf("test delete failed: %w", err)
	}
	return nil
}
