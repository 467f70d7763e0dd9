package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"go-parish-admin/internal/model"
)

const defaultGCSPublicBase = "https://storage.googleapis.com"

// GCSStore maps buckets one-to-one onto Google Cloud Storage buckets.
type GCSStore struct {
	client *gcs.Client
	layout urlLayout
}

func NewGCSStore(ctx context.Context, credentialsFile string, publicBase string) (*GCSStore, error) {
	opts := make([]option.ClientOption, 0, 1)
	if strings.TrimSpace(credentialsFile) != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}

	if strings.TrimSpace(publicBase) == "" {
		publicBase = defaultGCSPublicBase
	}

	return &GCSStore{client: client, layout: newURLLayout(publicBase)}, nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}

func (s *GCSStore) Upload(ctx context.Context, bucket string, objectPath string, body io.Reader, contentType string) (string, error) {
	if !validBucket(bucket) || !validObjectPath(objectPath) {
		return "", fmt.Errorf("%w: invalid object %q in bucket %q", model.ErrInvalidInput, objectPath, bucket)
	}

	writer := s.client.Bucket(bucket).Object(objectPath).NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := io.Copy(writer, body); err != nil {
		_ = writer.Close()
		return "", fmt.Errorf("%w: upload %s/%s: %w", model.ErrStorage, bucket, objectPath, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("%w: finalize %s/%s: %w", model.ErrStorage, bucket, objectPath, err)
	}

	return s.PublicURL(bucket, objectPath), nil
}

func (s *GCSStore) Remove(ctx context.Context, bucket string, paths []string) error {
	handle := s.client.Bucket(bucket)

	var errs []error
	for _, objectPath := range paths {
		err := handle.Object(objectPath).Delete(ctx)
		if err == nil || errors.Is(err, gcs.ErrObjectNotExist) {
			continue
		}
		errs = append(errs, fmt.Errorf("delete %s/%s: %w", bucket, objectPath, err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", model.ErrStorage, errors.Join(errs...))
	}
	return nil
}

func (s *GCSStore) PublicURL(bucket string, objectPath string) string {
	return s.layout.publicURL(bucket, objectPath)
}

func (s *GCSStore) ParsePublicURL(raw string) (model.StorageRef, bool) {
	return s.layout.parse(raw)
}
