package services

import (
	"context"
	"io"
	"mime/multipart"

	"github.com/stretchr/testify/mock"
)

// --- Mocks ---

// MockObjectStorage implements storage.IObjectStorage
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	args := m.Called(ctx, key, body, contentType)
	return args.Error(0)
}

func (m *MockObjectStorage) PublicURL(key string) string {
	args := m.Called(key)
	return args.String(0)
}

func (m *MockObjectStorage) Remove(ctx context.Context, keys []string) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

// MockImageService implements IImageService
type MockImageService struct {
	mock.Mock
}

func (m *MockImageService) ValidateUploads(files []*multipart.FileHeader) error {
	args := m.Called(files)
	return args.Error(0)
}

func (m *MockImageService) UploadImages(ctx context.Context, files []*multipart.FileHeader) ([]string, error) {
	args := m.Called(ctx, files)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockImageService) RemoveImages(ctx context.Context, keys []string) {
	m.Called(ctx, keys)
}

func (m *MockImageService) PublicURL(key string) string {
	args := m.Called(key)
	return args.String(0)
}
