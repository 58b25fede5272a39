package storage

import (
	"context"
	"time"
)

// DefaultPresignedURLExpiry bounds how long a photo upload or download
// link stays usable once handed to a client.
const DefaultPresignedURLExpiry = 15 * time.Minute

// FileStorage is the object-store surface the photo flows need: clients
// upload and fetch directly against presigned URLs, the API never proxies
// image bytes.
type FileStorage interface {
	// GeneratePresignedUploadURL returns a temporary PUT URL for writing
	// one object, locked to the given content type.
	GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error)

	// GeneratePresignedDownloadURL returns a temporary GET URL for one object.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// DeleteObject removes an object.
	DeleteObject(ctx context.Context, objectKey string) error
}
