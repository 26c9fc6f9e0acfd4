package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader stores public objects such as player avatars.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)
	Delete(ctx context.Context, key string) error
	GetPublicURL(key string) string
}

var avatarExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// AvatarExtension reports the file extension for an accepted avatar content
// type.
func AvatarExtension(contentType string) (string, bool) {
	mediaType := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	ext, ok := avatarExtensions[mediaType]
	return ext, ok
}

// AvatarKey builds a fresh object key under avatars/<playerID>/. Keys never
// repeat, so CDN caches need no invalidation after an upload.
func AvatarKey(playerID, ext string) string {
	return path.Join("avatars", playerID, fmt.Sprintf("%s%s", uuid.NewString(), ext))
}
