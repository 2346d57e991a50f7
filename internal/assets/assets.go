// Package assets validates uploaded images and stores them in an
// S3-compatible bucket, returning the public URL saved on the resume.
package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/jonathan/flower-resume/internal/logging"
	"go.uber.org/zap"
)

// DefaultMaxBytes is the upload size limit when none is configured.
const DefaultMaxBytes = 5 << 20

var (
	// ErrTooLarge is returned when an upload exceeds the size limit.
	ErrTooLarge = errors.New("image exceeds the upload size limit")
	// ErrUnsupportedType is returned for anything but jpeg, png, webp or gif.
	ErrUnsupportedType = errors.New("unsupported image type")
	// ErrEmpty is returned for a zero-byte upload.
	ErrEmpty = errors.New("image is empty")
	// ErrDisabled is returned when no bucket is configured.
	ErrDisabled = errors.New("image uploads are not configured")
)

// allowedTypes maps the accepted MIME types to the stored file extension.
var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Uploader stores an object and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
}

// UploadError wraps a failure from the storage backend.
type UploadError struct {
	Key   string
	Cause error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("failed to upload %s: %v", e.Key, e.Cause)
}

func (e *UploadError) Unwrap() error {
	return e.Cause
}

// DetectImage sniffs data and returns its MIME type and extension, or
// ErrUnsupportedType.
func DetectImage(data []byte) (string, string, error) {
	mtype := mimetype.Detect(data)
	for m := mtype; m != nil; m = m.Parent() {
		if ext, ok := allowedTypes[m.String()]; ok {
			return m.String(), ext, nil
		}
	}
	return "", "", fmt.Errorf("%w: %s", ErrUnsupportedType, mtype.String())
}

// ImageKey builds the object key for a user's image.
func ImageKey(userID uuid.UUID, ext string) string {
	return fmt.Sprintf("users/%s/images/%s%s", userID, uuid.NewString(), ext)
}

// Service validates images and hands them to an Uploader.
type Service struct {
	uploader Uploader
	maxBytes int64
	logger   *zap.Logger
}

// NewService creates a Service. A nil uploader disables uploads.
func NewService(uploader Uploader, maxBytes int64, logger *zap.Logger) *Service {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	logger = logging.OrNop(logger)
	return &Service{uploader: uploader, maxBytes: maxBytes, logger: logger}
}

// MaxBytes returns the configured size limit.
func (s *Service) MaxBytes() int64 {
	return s.maxBytes
}

// UploadImage reads at most the size limit from r, checks the content type
// and stores the image under the user's prefix.
func (s *Service) UploadImage(ctx context.Context, userID uuid.UUID, r io.Reader) (string, error) {
	if s.uploader == nil {
		return "", ErrDisabled
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) == 0 {
		return "", ErrEmpty
	}
	if int64(len(data)) > s.maxBytes {
		return "", ErrTooLarge
	}

	contentType, ext, err := DetectImage(data)
	if err != nil {
		return "", err
	}

	key := ImageKey(userID, ext)
	start := time.Now()
	url, err := s.uploader.Upload(ctx, key, contentType, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		s.logger.Error("image upload failed", zap.String("key", key), zap.Error(err))
		return "", &UploadError{Key: key, Cause: err}
	}

	s.logger.Info("image uploaded",
		zap.String("key", key),
		zap.String("content_type", contentType),
		zap.Int("bytes", len(data)),
		zap.Duration("duration", time.Since(start)),
	)
	return url, nil
}
