package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"github.com/gymbro/gymbro-api/internal/domain/entity"
)

// NewGCSClient creates a Google Cloud Storage client. If credsPath is empty, ADC is used.
func NewGCSClient(ctx context.Context, credsPath string) (*storage.Client, error) {
	if credsPath == "" {
		return storage.NewClient(ctx)
	}
	return storage.NewClient(ctx, option.WithCredentialsFile(credsPath))
}

// GCSStore implements Store on a Google Cloud Storage bucket. The object
// path doubles as the asset's public id.
type GCSStore struct {
	client *storage.Client
	bucket string
	prefix string
}

func NewGCSStore(client *storage.Client, bucket, prefix string) *GCSStore {
	return &GCSStore{client: client, bucket: bucket, prefix: prefix}
}

var extByContentType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

func (s *GCSStore) Upload(ctx context.Context, data []byte, contentType string) (entity.ImageAsset, error) {
	ext := extByContentType[contentType]
	objectPath := path.Join(s.prefix, uuid.NewString()+ext)

	wc := s.client.Bucket(s.bucket).Object(objectPath).NewWriter(ctx)
	wc.ContentType = contentType
	wc.ChunkSize = 0 // disable chunking for small files
	if _, err := io.Copy(wc, bytes.NewReader(data)); err != nil {
		_ = wc.Close()
		return entity.ImageAsset{}, err
	}
	if err := wc.Close(); err != nil {
		return entity.ImageAsset{}, err
	}
	return entity.ImageAsset{
		PublicID: objectPath,
		URL:      PublicURL(s.bucket, objectPath),
	}, nil
}

func (s *GCSStore) Destroy(ctx context.Context, publicID string) error {
	return s.client.Bucket(s.bucket).Object(publicID).Delete(ctx)
}

// PublicURL builds a public URL for an object (assuming public read access or signed URLs)
func PublicURL(bucket, objectPath string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, objectPath)
}

var _ Store = (*GCSStore)(nil)
