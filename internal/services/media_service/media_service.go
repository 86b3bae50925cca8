package services

import (
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"

	"guidebolt/internal/domain/models"
	"guidebolt/internal/lib/logger/sl"
	storage "guidebolt/internal/storage/filestorage"
)

type MediaService struct {
	log         *slog.Logger
	fileStorage storage.FileStorage
}

func NewMediaService(log *slog.Logger, fileStorage storage.FileStorage) *MediaService {
	return &MediaService{
		log:         log,
		fileStorage: fileStorage,
	}
}

// UploadFile сохраняет файл под уникальным хранимым именем.
// Политика (размер, MIME) применяется хранилищем.
func (s *MediaService) UploadFile(ctx context.Context, file *multipart.FileHeader) (*models.UploadedFile, error) {
	const op = "media_service.UploadFile"

	log := s.log.With(
		slog.String("op", op),
		slog.String("filename", file.Filename),
	)

	log.Info("upload file")

	uploaded, err := s.fileStorage.Save(ctx, file)
	if err != nil {
		log.Error("failed to save file", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("file saved", slog.String("stored_name", uploaded.StoredName))

	return uploaded, nil
}

// DeleteFile удаляет объект по хранимому имени или полному URL
func (s *MediaService) DeleteFile(ctx context.Context, urlOrName string) error {
	const op = "media_service.DeleteFile"

	log := s.log.With(slog.String("op", op))

	storedName := s.fileStorage.StoredName(urlOrName)
	if storedName == "" {
		return fmt.Errorf("%s: empty filename", op)
	}

	if err := s.fileStorage.Delete(ctx, storedName); err != nil {
		log.Error("failed to delete file", sl.Err(err), slog.String("stored_name", storedName))

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *MediaService) FileURL(storedName string) string {
	return s.fileStorage.FileURL(storedName)
}
