package mentors

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/mentoverse/mentoverse-platform/pkg/logging"
)

// S3API is the subset of the S3 client used by ImageStore.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ImageStore uploads mentor profile photos to S3.
type ImageStore struct {
	bucket string
	client S3API
	logger *logging.Logger
}

// NewImageStore creates an ImageStore. With no bucket, uploads are skipped.
func NewImageStore(client S3API, bucket string, logger *logging.Logger) *ImageStore {
	if logger == nil {
		logger = logging.Default()
	}
	return &ImageStore{bucket: bucket, client: client, logger: logger}
}

// Enabled reports whether uploads go anywhere.
func (s *ImageStore) Enabled() bool {
	return s != nil && s.bucket != "" && s.client != nil
}

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Upload stores a photo and returns its image reference, an s3:// URI.
func (s *ImageStore) Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	if !s.Enabled() {
		return "", nil
	}
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return "", fmt.Errorf("mentors: unsupported image type %q", contentType)
	}
	key := fmt.Sprintf("mentors/profile/%s%s", uuid.NewString(), ext)

	if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	}); err != nil {
		return "", fmt.Errorf("mentors: s3 put %s: %w", key, err)
	}
	s.logger.Info("uploaded mentor image", "bucket", s.bucket, "s3_key", key, "filename", filename)
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}
