package models

import (
	"time"

	"github.com/google/uuid"
)

// UserResponse представляет ответ зрителя на интерактивный блок.
// Хранится одна строка на пару (block_id, user_identifier).
type UserResponse struct {
	ID             uuid.UUID `json:"id" db:"id"`
	GuideID        uuid.UUID `json:"guide_id" db:"guide_id"`
	SlideID        uuid.UUID `json:"slide_id" db:"slide_id"`
	BlockID        uuid.UUID `json:"block_id" db:"block_id"`
	UserIdentifier string    `json:"user_identifier" db:"user_identifier"`
	Question       string    `json:"question" db:"question"`
	Answer         *string   `json:"answer,omitempty" db:"answer"`
	FileURL        *string   `json:"file_url,omitempty" db:"file_url"`
	FileName       *string   `json:"file_name,omitempty" db:"file_name"`
	FileSize       *int64    `json:"file_size,omitempty" db:"file_size"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// ResponseFilter задает фильтры выборки ответов. Нулевое поле не фильтрует.
type ResponseFilter struct {
	GuideID        uuid.UUID
	SlideID        uuid.UUID
	BlockID        uuid.UUID
	UserIdentifier string
}

// UploadedFile описывает сохраненный в объектном хранилище файл
type UploadedFile struct {
	URL          string `json:"url"`
	StoredName   string `json:"filename"`
	OriginalName string `json:"original_name"`
	Size         int64  `json:"size"`
	MimeType     string `json:"type"`
}
