package services_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"testing"

	"guidebolt/internal/domain/models"
	services "guidebolt/internal/services/media_service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockFileStorage struct {
	mock.Mock
}

func (m *MockFileStorage) Save(ctx context.Context, file *multipart.FileHeader) (*models.UploadedFile, error) {
	args := m.Called(ctx, file)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UploadedFile), args.Error(1)
}

func (m *MockFileStorage) Delete(ctx context.Context, storedName string) error {
	args := m.Called(ctx, storedName)
	return args.Error(0)
}

func (m *MockFileStorage) FileURL(storedName string) string {
	args := m.Called(storedName)
	return args.String(0)
}

func (m *MockFileStorage) StoredName(urlOrName string) string {
	args := m.Called(urlOrName)
	return args.String(0)
}

func (m *MockFileStorage) BaseURL() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockFileStorage) GetBaseDir() string {
	args := m.Called()
	return args.String(0)
}

func createTestFile(t *testing.T, filename, content string) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)

	_, err = part.Write([]byte(content))
	require.NoError(t, err)

	err = writer.Close()
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	file, header, err := req.FormFile("file")
	require.NoError(t, err)
	file.Close()

	return header
}

func TestMediaService_UploadFile(t *testing.T) {
	ctx := context.Background()
	mockStorage := new(MockFileStorage)
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{}))
	service := services.NewMediaService(log, mockStorage)

	testFile := createTestFile(t, "photo.png", "png bytes")

	t.Run("successful upload", func(t *testing.T) {
		uploaded := &models.UploadedFile{
			URL:          "http://localhost:8080/uploads/1712-abc.png",
			StoredName:   "1712-abc.png",
			OriginalName: "photo.png",
			Size:         9,
			MimeType:     "image/png",
		}
		mockStorage.On("Save", ctx, testFile).Return(uploaded, nil).Once()

		got, err := service.UploadFile(ctx, testFile)
		require.NoError(t, err)
		assert.Equal(t, "1712-abc.png", got.StoredName)
		assert.Equal(t, "photo.png", got.OriginalName)
		mockStorage.AssertExpectations(t)
	})

	t.Run("storage failure", func(t *testing.T) {
		mockStorage.On("Save", ctx, testFile).Return(nil, errors.New("disk full")).Once()

		_, err := service.UploadFile(ctx, testFile)
		assert.Error(t, err)
		mockStorage.AssertExpectations(t)
	})
}

func TestMediaService_DeleteFile(t *testing.T) {
	ctx := context.Background()
	mockStorage := new(MockFileStorage)
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{}))
	service := services.NewMediaService(log, mockStorage)

	t.Run("deletes by full url", func(t *testing.T) {
		mockStorage.On("StoredName", "http://localhost:8080/uploads/1712-abc.png").Return("1712-abc.png").Once()
		mockStorage.On("Delete", ctx, "1712-abc.png").Return(nil).Once()

		err := service.DeleteFile(ctx, "http://localhost:8080/uploads/1712-abc.png")
		assert.NoError(t, err)
		mockStorage.AssertExpectations(t)
	})

	t.Run("propagates storage error", func(t *testing.T) {
		mockStorage.On("StoredName", "gone.png").Return("gone.png").Once()
		mockStorage.On("Delete", ctx, "gone.png").Return(errors.New("not found")).Once()

		err := service.DeleteFile(ctx, "gone.png")
		assert.Error(t, err)
		mockStorage.AssertExpectations(t)
	})
}
