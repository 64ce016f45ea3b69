// Package storage provides S3-compatible object storage for user-uploaded files.
// The platform currently stores only profile avatars, so the interface is
// deliberately narrow.
package storage

import (
	"context"
	"io"
)

// AvatarStore persists profile avatar images and resolves their public URLs.
type AvatarStore interface {
	// UploadAvatar stores the image and returns the object key.
	// The previous avatar (if any) is removed on success.
	UploadAvatar(ctx context.Context, userID, fileName, contentType string, reader io.Reader, size int64, previousKey string) (string, error)

	// AvatarURL resolves an object key to a time-limited download URL.
	AvatarURL(ctx context.Context, fileKey string) (string, error)

	// DeleteAvatar removes a stored avatar object.
	DeleteAvatar(ctx context.Context, fileKey string) error

	// ValidateAvatar checks content type and size before upload.
	ValidateAvatar(contentType string, sizeBytes int64) error
}

// Config defines the configuration interface for storage.
type Config interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	GetMinioBucketAvatars() string
	IsMinIOEnabled() bool
}
