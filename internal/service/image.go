package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/pulsefeed/backend/config"
)

var (
	ErrImageTooLarge       = errors.New("image exceeds the maximum size")
	ErrImageTypeNotAllowed = errors.New("image type is not allowed")
)

// MaxImageSize is the upload limit in bytes.
const MaxImageSize = 5 << 20

var allowedImageExts = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// ImageService stores post images on S3 when configured, otherwise on
// the local media directory.
type ImageService struct {
	s3Config  *config.S3Config
	mediaRoot string
	mediaURL  string
}

func NewImageService(s3Config *config.S3Config, mediaRoot, mediaURL string) *ImageService {
	return &ImageService{
		s3Config:  s3Config,
		mediaRoot: mediaRoot,
		mediaURL:  mediaURL,
	}
}

// ValidateUpload checks the file extension and declared size.
func (s *ImageService) ValidateUpload(filename string, size int64) error {
	if size > MaxImageSize {
		return ErrImageTooLarge
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedImageExts[ext]; !ok {
		return ErrImageTypeNotAllowed
	}
	return nil
}

// Upload stores the image under a fresh name and returns its public URL.
func (s *ImageService) Upload(ctx context.Context, data []byte, filename string) (string, error) {
	if err := s.ValidateUpload(filename, int64(len(data))); err != nil {
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(filename))
	key := fmt.Sprintf("post-images/%s%s", uuid.New().String(), ext)

	if s.s3Config != nil && s.s3Config.Client != nil {
		return s.uploadToS3(ctx, data, key, allowedImageExts[ext])
	}
	return s.uploadToDisk(data, key)
}

func (s *ImageService) uploadToS3(ctx context.Context, data []byte, key, contentType string) (string, error) {
	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	publicURL := fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, key)
	log.Printf("[ImageService] Uploaded image to S3: %s", publicURL)
	return publicURL, nil
}

func (s *ImageService) uploadToDisk(data []byte, key string) (string, error) {
	path := filepath.Join(s.mediaRoot, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return strings.TrimSuffix(s.mediaURL, "/") + "/" + key, nil
}
