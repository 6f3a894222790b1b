package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	aws_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/muthii-lawrence/nyumba-hub.backend/internal/config"
)

// IObjectStorage defines the object-store capability consumed by the image
// asset manager: blob put/remove by key plus public URL computation.
type IObjectStorage interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
	PublicURL(key string) string
	Remove(ctx context.Context, keys []string) error
}

// s3Storage implements IObjectStorage.
type s3Storage struct {
	cfg      *config.Config
	s3Client *s3.Client
	uploader *manager.Uploader
}

// NewS3Storage creates a new S3 storage service.
func NewS3Storage(cfg *config.Config) (IObjectStorage, error) {
	awsCfg, err := aws_config.LoadDefaultConfig(context.TODO(),
		aws_config.WithRegion(cfg.AwsRegion),
		// Static credentials from config for simplicity; prefer IAM roles
		// in production deployments.
		aws_config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AwsAccessKeyID,
			cfg.AwsSecretAccessKey,
			"", // session token
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg)

	return &s3Storage{
		cfg:      cfg,
		s3Client: s3Client,
		uploader: manager.NewUploader(s3Client),
	}, nil
}

// Put uploads one blob under the given key.
func (s *s3Storage) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.AwsS3Bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload object %s to bucket %s: %w", key, s.cfg.AwsS3Bucket, err)
	}
	return nil
}

// PublicURL computes the public reference for a stored key.
func (s *s3Storage) PublicURL(key string) string {
	base := strings.TrimRight(s.cfg.ImageBaseURL, "/")
	if base == "" {
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", s.cfg.AwsS3Bucket, s.cfg.AwsRegion)
	}
	return base + "/" + key
}

// Remove deletes the given keys in one batch call. A nil/empty key set is a
// no-op.
func (s *s3Storage) Remove(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	objects := make([]types.ObjectIdentifier, 0, len(keys))
	for _, key := range keys {
		objects = append(objects, types.ObjectIdentifier{Key: aws.String(key)})
	}

	_, err := s.s3Client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(s.cfg.AwsS3Bucket),
		Delete: &types.Delete{
			Objects: objects,
			Quiet:   aws.Bool(true),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete %d objects from bucket %s: %w", len(keys), s.cfg.AwsS3Bucket, err)
	}
	return nil
}
