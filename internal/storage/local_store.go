package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"go-parish-admin/internal/model"
)

// LocalStore keeps objects under <root>/<bucket>/<path> on the local filesystem.
type LocalStore struct {
	validator *PathValidator
	layout    urlLayout
}

func NewLocalStore(root string, publicBase string) (*LocalStore, error) {
	validator, err := NewPathValidator(root)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(validator.RootAbs(), 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}

	return &LocalStore{validator: validator, layout: newURLLayout(publicBase)}, nil
}

func (s *LocalStore) RootAbs() string {
	return s.validator.RootAbs()
}

func (s *LocalStore) resolve(bucket string, objectPath string) (string, error) {
	if !validBucket(bucket) {
		return "", fmt.Errorf("%w: invalid bucket %q", model.ErrInvalidInput, bucket)
	}
	if !validObjectPath(objectPath) {
		return "", fmt.Errorf("%w: invalid object path %q", model.ErrInvalidInput, objectPath)
	}
	return s.validator.ResolvePath(path.Join(bucket, objectPath))
}

func (s *LocalStore) Upload(ctx context.Context, bucket string, objectPath string, body io.Reader, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	resolved, err := s.resolve(bucket, objectPath)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return "", fmt.Errorf("%w: create parent directory: %w", model.ErrStorage, err)
	}

	file, err := os.OpenFile(resolved, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("%w: open %s/%s: %w", model.ErrStorage, bucket, objectPath, err)
	}

	if _, err := io.Copy(file, body); err != nil {
		_ = file.Close()
		_ = os.Remove(resolved)
		return "", fmt.Errorf("%w: write %s/%s: %w", model.ErrStorage, bucket, objectPath, err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("%w: close %s/%s: %w", model.ErrStorage, bucket, objectPath, err)
	}

	return s.PublicURL(bucket, objectPath), nil
}

func (s *LocalStore) Remove(ctx context.Context, bucket string, paths []string) error {
	var errs []error
	for _, objectPath := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}

		resolved, err := s.resolve(bucket, objectPath)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		if err := os.Remove(resolved); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, fmt.Errorf("remove %s/%s: %w", bucket, objectPath, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", model.ErrStorage, errors.Join(errs...))
	}
	return nil
}

// Open returns the stored object for serving. Callers close the file.
func (s *LocalStore) Open(bucket string, objectPath string) (*os.File, fs.FileInfo, error) {
	resolved, err := s.resolve(bucket, objectPath)
	if err != nil {
		return nil, nil, err
	}

	file, err := os.Open(resolved)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, fmt.Errorf("object %w: %s/%s", model.ErrNotFound, bucket, objectPath)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: open %s/%s: %w", model.ErrStorage, bucket, objectPath, err)
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, nil, fmt.Errorf("%w: stat %s/%s: %w", model.ErrStorage, bucket, objectPath, err)
	}
	if info.IsDir() {
		_ = file.Close()
		return nil, nil, fmt.Errorf("object %w: %s/%s", model.ErrNotFound, bucket, objectPath)
	}

	return file, info, nil
}

func (s *LocalStore) PublicURL(bucket string, objectPath string) string {
	return s.layout.publicURL(bucket, objectPath)
}

func (s *LocalStore) ParsePublicURL(raw string) (model.StorageRef, bool) {
	return s.layout.parse(raw)
}
