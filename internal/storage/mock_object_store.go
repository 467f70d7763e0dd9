package storage

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"go-parish-admin/internal/model"
)

type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) Upload(ctx context.Context, bucket string, objectPath string, body io.Reader, contentType string) (string, error) {
	args := m.Called(ctx, bucket, objectPath, body, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStore) Remove(ctx context.Context, bucket string, paths []string) error {
	args := m.Called(ctx, bucket, paths)
	return args.Error(0)
}

func (m *MockObjectStore) PublicURL(bucket string, objectPath string) string {
	args := m.Called(bucket, objectPath)
	return args.String(0)
}

// ParsePublicURL is not recorded: it delegates to the same layout the real stores use.
func (m *MockObjectStore) ParsePublicURL(raw string) (model.StorageRef, bool) {
	return newURLLayout(MockPublicBase).parse(raw)
}

const MockPublicBase = "https://files.test/storage"
