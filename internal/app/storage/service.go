/*
Package storage stores pattern PDFs in S3-compatible object storage and hands
out time-limited download links for them.
*/
package storage

import (
	"context"
	"errors"
	"io"
	"time"

	"freequilt/internal/configs"
)

// DownloadLinkExpiration is how long a presigned pattern link stays valid.
const DownloadLinkExpiration = 15 * time.Minute

// ErrObjectNotFound is returned when the key does not exist in the bucket.
var ErrObjectNotFound = errors.New("storage: object not found")

// ServiceConfig holds the configuration required to connect to the storage service.
type ServiceConfig struct {
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// ConfigFrom extracts the storage settings of cfg.
func ConfigFrom(cfg *configs.AppConfig) ServiceConfig {
	return ServiceConfig{
		S3BucketName:      cfg.S3BucketName,
		S3Endpoint:        cfg.S3Endpoint,
		S3AccessKeyID:     cfg.S3AccessKeyID,
		S3SecretAccessKey: cfg.S3SecretAccessKey,
	}
}

// ObjectInfo is the metadata of a stored file.
type ObjectInfo struct {
	Key           string
	ContentType   string
	ContentLength int64
	LastModified  time.Time
}

// StorageService defines the public interface for the pattern file storage.
type StorageService interface {
	// PresignDownload generates a pre-signed URL for downloading a file.
	PresignDownload(ctx context.Context, key string, duration time.Duration) (string, error)

	// Upload streams body to key.
	Upload(ctx context.Context, key, contentType string, body io.Reader) error

	// Delete removes the file specified by the given key.
	Delete(ctx context.Context, key string) error

	// Stat retrieves the object's metadata.
	Stat(ctx context.Context, key string) (ObjectInfo, error)
}

// NewStorageService is the factory function for StorageService.
func NewStorageService(ctx context.Context, cfg ServiceConfig) (StorageService, error) {
	if cfg.S3BucketName == "" {
		return nil, errors.New("storage: bucket name is required")
	}
	// Currently, only S3 compatible implementations are supported.
	return newS3Client(ctx, cfg)
}

// PatternKey is the object key of a pattern's PDF.
func PatternKey(patternID string) string {
	return "patterns/" + patternID + ".pdf"
}
