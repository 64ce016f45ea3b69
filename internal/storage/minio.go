package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// downloadURLTTL is the expiration time for presigned avatar URLs.
const downloadURLTTL = 15 * time.Minute

// MinIOAvatarStore implements AvatarStore using MinIO.
type MinIOAvatarStore struct {
	client      *minio.Client
	bucket      string
	maxFileSize int64
}

// NewMinIOAvatarStore creates the avatar store and ensures its bucket exists.
func NewMinIOAvatarStore(ctx context.Context, cfg Config) (*MinIOAvatarStore, error) {
	if !cfg.IsMinIOEnabled() {
		return nil, fmt.Errorf("MinIO is not configured")
	}

	client, err := minio.New(cfg.GetMinIOEndpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetMinIOAccessKey(), cfg.GetMinIOSecretKey(), ""),
		Secure: cfg.GetMinIOUseSSL(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	store := &MinIOAvatarStore{
		client:      client,
		bucket:      cfg.GetMinioBucketAvatars(),
		maxFileSize: cfg.GetMinIOMaxFileSize(),
	}
	if err := store.ensureBucketExists(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *MinIOAvatarStore) ensureBucketExists(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
		}
	}
	return nil
}

// UploadAvatar stores the image under avatars/{userID}/ with a random suffix
// so concurrent uploads never overwrite each other, then removes the previous
// object. A failed cleanup is not fatal.
func (s *MinIOAvatarStore) UploadAvatar(ctx context.Context, userID, fileName, contentType string, reader io.Reader, size int64, previousKey string) (string, error) {
	if err := s.ValidateAvatar(contentType, size); err != nil {
		return "", err
	}

	ext := path.Ext(fileName)
	fileKey := fmt.Sprintf("avatars/%s/%s%s", userID, uuid.New().String()[:8], ext)

	_, err := s.client.PutObject(ctx, s.bucket, fileKey, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload avatar %s: %w", fileKey, err)
	}

	if previousKey != "" && previousKey != fileKey {
		_ = s.client.RemoveObject(ctx, s.bucket, previousKey, minio.RemoveObjectOptions{})
	}

	return fileKey, nil
}

// AvatarURL generates a presigned download URL for the stored avatar.
func (s *MinIOAvatarStore) AvatarURL(ctx context.Context, fileKey string) (string, error) {
	presigned, err := s.client.PresignedGetObject(ctx, s.bucket, fileKey, downloadURLTTL, url.Values{})
	if err != nil {
		return "", fmt.Errorf("failed to generate avatar URL: %w", err)
	}
	return presigned.String(), nil
}

// DeleteAvatar removes an avatar object from the bucket.
func (s *MinIOAvatarStore) DeleteAvatar(ctx context.Context, fileKey string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, fileKey, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete avatar %s: %w", fileKey, err)
	}
	return nil
}

// ValidateAvatar checks the content type and size limits for an avatar upload.
func (s *MinIOAvatarStore) ValidateAvatar(contentType string, sizeBytes int64) error {
	normalized := strings.TrimSpace(strings.ToLower(strings.Split(contentType, ";")[0]))
	if !allowedAvatarTypes[normalized] {
		return fmt.Errorf("content type %q is not allowed for avatars", contentType)
	}
	if sizeBytes <= 0 {
		return fmt.Errorf("file size must be greater than 0")
	}
	if sizeBytes > s.maxFileSize {
		return fmt.Errorf("file size %d bytes exceeds maximum allowed size of %d bytes", sizeBytes, s.maxFileSize)
	}
	return nil
}

// allowedAvatarTypes lists the image MIME types accepted for profile avatars.
var allowedAvatarTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}
