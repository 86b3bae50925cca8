package filestorage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"guidebolt/internal/domain/models"
	"guidebolt/internal/storage"
)

// DefaultMaxFileSize максимальный размер загружаемого файла (10MB)
const DefaultMaxFileSize = 10 << 20

// DefaultAllowedTypes MIME-типы, разрешённые к загрузке
var DefaultAllowedTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"application/pdf",
	"text/plain",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.ms-excel",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"application/zip",
	"application/x-zip-compressed",
}

// FileStorage интерфейс для работы с файловым хранилищем
type FileStorage interface {
	Save(ctx context.Context, file *multipart.FileHeader) (*models.UploadedFile, error)
	Delete(ctx context.Context, storedName string) error
	FileURL(storedName string) string
	StoredName(urlOrName string) string
	BaseURL() string
	GetBaseDir() string
}

// LocalFileStorage реализация для локальной файловой системы.
// Каждому файлу присваивается уникальное хранимое имя
// <timestamp>-<random>.<ext>, исходное имя не используется в пути.
type LocalFileStorage struct {
	baseDir      string // Базовый каталог для хранения (например: "./uploads")
	baseURL      string // Базовый URL для доступа к файлам (например: "http://localhost:8080/uploads")
	maxFileSize  int64
	allowedTypes map[string]struct{}
}

func NewLocalFileStorage(baseDir, baseURL string, maxFileSize int64, allowedTypes []string) (*LocalFileStorage, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}

	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	if len(allowedTypes) == 0 {
		allowedTypes = DefaultAllowedTypes
	}

	allowed := make(map[string]struct{}, len(allowedTypes))
	for _, t := range allowedTypes {
		allowed[t] = struct{}{}
	}

	return &LocalFileStorage{
		baseDir:      baseDir,
		baseURL:      strings.TrimRight(baseURL, "/"),
		maxFileSize:  maxFileSize,
		allowedTypes: allowed,
	}, nil
}

func (s *LocalFileStorage) Save(ctx context.Context, file *multipart.FileHeader) (*models.UploadedFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if file.Size > s.maxFileSize {
		return nil, storage.ErrFileTooLarge
	}

	mimeType := file.Header.Get("Content-Type")
	if _, ok := s.allowedTypes[mimeType]; !ok {
		return nil, storage.ErrInvalidFileType
	}

	storedName, err := uniqueFilename(file.Filename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate filename: %w", err)
	}

	filePath := filepath.Join(s.baseDir, storedName)

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open source file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	done := make(chan struct{})
	var size int64
	var copyErr error

	go func() {
		size, copyErr = io.Copy(dst, src)
		close(done)
	}()

	select {
	case <-done:
		if copyErr != nil {
			_ = os.Remove(filePath)
			return nil, fmt.Errorf("failed to copy file: %w", copyErr)
		}
	case <-ctx.Done():
		_ = os.Remove(filePath)
		return nil, ctx.Err()
	}

	return &models.UploadedFile{
		URL:          s.FileURL(storedName),
		StoredName:   storedName,
		OriginalName: file.Filename,
		Size:         size,
		MimeType:     mimeType,
	}, nil
}

// Delete удаляет файл из хранилища по хранимому имени
func (s *LocalFileStorage) Delete(ctx context.Context, storedName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fullPath := filepath.Join(s.baseDir, filepath.Base(storedName))
	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return storage.ErrFileNotFound
		}
		return err
	}
	return nil
}

// FileURL возвращает публичный URL файла
func (s *LocalFileStorage) FileURL(storedName string) string {
	return s.baseURL + "/" + storedName
}

// StoredName извлекает хранимое имя из полного URL или возвращает имя как есть
func (s *LocalFileStorage) StoredName(urlOrName string) string {
	if i := strings.LastIndex(urlOrName, "/"); i >= 0 {
		return urlOrName[i+1:]
	}
	return urlOrName
}

// BaseURL возвращает базовый URL для доступа к файлам
func (s *LocalFileStorage) BaseURL() string {
	return s.baseURL
}

func (s *LocalFileStorage) GetBaseDir() string {
	return s.baseDir
}

func uniqueFilename(originalName string) (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	ext := filepath.Ext(originalName)
	return fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), hex.EncodeToString(buf), ext), nil
}
