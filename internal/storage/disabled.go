package storage

import (
	"context"
	"errors"
	"io"
)

// ErrDisabled is returned by DisabledAvatarStore for every operation.
var ErrDisabled = errors.New("object storage is not configured")

// DisabledAvatarStore stands in when MinIO is not configured. Avatar
// endpoints stay mounted but report the storage as unavailable.
type DisabledAvatarStore struct{}

func (DisabledAvatarStore) UploadAvatar(ctx context.Context, userID, fileName, contentType string, reader io.Reader, size int64, previousKey string) (string, error) {
	return "", ErrDisabled
}

func (DisabledAvatarStore) AvatarURL(ctx context.Context, fileKey string) (string, error) {
	return "", ErrDisabled
}

func (DisabledAvatarStore) DeleteAvatar(ctx context.Context, fileKey string) error {
	return ErrDisabled
}

func (DisabledAvatarStore) ValidateAvatar(contentType string, sizeBytes int64) error {
	return ErrDisabled
}
