package dto

import (
	"time"

	"github.com/google/uuid"
)

// SubmitResponseItem — один ответ зрителя на интерактивный блок слайда
type SubmitResponseItem struct {
	GuideID        uuid.UUID `json:"guide_id" validate:"required" swaggertype:"string" format:"uuid"`
	SlideID        uuid.UUID `json:"slide_id" validate:"required" swaggertype:"string" format:"uuid"`
	BlockID        uuid.UUID `json:"block_id" validate:"required" swaggertype:"string" format:"uuid"`
	UserIdentifier string    `json:"user_identifier" validate:"required"`
	Question       string    `json:"question" validate:"required"`
	Answer         *string   `json:"answer,omitempty"`
	FileURL        *string   `json:"file_url,omitempty"`
	FileName       *string   `json:"file_name,omitempty"`
	FileSize       *int64    `json:"file_size,omitempty"`
}

type SubmitResponsesRequest struct {
	Responses []SubmitResponseItem `json:"responses" validate:"required,min=1,dive"`
}

type ResponseItem struct {
	ID             uuid.UUID `json:"id" swaggertype:"string" format:"uuid"`
	GuideID        uuid.UUID `json:"guide_id" swaggertype:"string" format:"uuid"`
	SlideID        uuid.UUID `json:"slide_id" swaggertype:"string" format:"uuid"`
	BlockID        uuid.UUID `json:"block_id" swaggertype:"string" format:"uuid"`
	UserIdentifier string    `json:"user_identifier"`
	Question       string    `json:"question"`
	Answer         *string   `json:"answer,omitempty"`
	FileURL        *string   `json:"file_url,omitempty"`
	FileName       *string   `json:"file_name,omitempty"`
	FileSize       *int64    `json:"file_size,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
