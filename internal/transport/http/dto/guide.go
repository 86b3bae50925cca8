package dto

import (
	"time"

	"guidebolt/internal/domain/models"

	"github.com/google/uuid"
)

type CreateGuideRequest struct {
	UserID      uuid.UUID `json:"user_id" validate:"required" swaggertype:"string" format:"uuid"`
	Title       string    `json:"title" validate:"required,min=1,max=200"`
	Description string    `json:"description,omitempty" validate:"omitempty,max=1000"`
	Type        string    `json:"type" validate:"required,min=1,max=50"`
	Tags        []string  `json:"tags,omitempty" validate:"omitempty,max=10,unique"`
}

type CreateGuideResponse struct {
	ID        uuid.UUID `json:"id" swaggertype:"string" format:"uuid"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type UpdateGuideRequest struct {
	Title       *string  `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=1000"`
	Type        *string  `json:"type,omitempty" validate:"omitempty,min=1,max=50"`
	Tags        []string `json:"tags,omitempty" validate:"omitempty,max=10,unique"`
}

// SaveGuideRequest несет полный снимок документа редактора
type SaveGuideRequest struct {
	Title  string         `json:"title" validate:"required,min=1,max=200"`
	Tags   []string       `json:"tags,omitempty" validate:"omitempty,max=10,unique"`
	Slides []models.Slide `json:"slides" validate:"required,min=1"`
}

type PublishGuideRequest struct {
	CustomURL *string `json:"custom_url,omitempty" validate:"omitempty,min=3,max=100"`
}

type GuideListResponse struct {
	Guides []models.GuideSummary `json:"guides"`
	Total  int                   `json:"total"`
}

type ViewsResponse struct {
	GuideID uuid.UUID `json:"guide_id" swaggertype:"string" format:"uuid"`
	Views   int64     `json:"views"`
}

// RenderableBlock — блок, подготовленный к показу: очищенная разметка
// и разрешенные стили
type RenderableBlock struct {
	ID        uuid.UUID        `json:"id" swaggertype:"string" format:"uuid"`
	Type      models.BlockType `json:"type"`
	HTML      string           `json:"html,omitempty"`
	LeftHTML  string           `json:"left_html,omitempty"`
	RightHTML string           `json:"right_html,omitempty"`
	LeftType  models.BlockType `json:"left_type,omitempty"`
	RightType models.BlockType `json:"right_type,omitempty"`
	SourceURL string           `json:"source_url,omitempty"`
	Styles    models.StyleMap  `json:"styles"`
	Position  int              `json:"position"`
}

type RenderableSlide struct {
	ID       uuid.UUID         `json:"id" swaggertype:"string" format:"uuid"`
	Title    string            `json:"title"`
	Position int               `json:"position"`
	Blocks   []RenderableBlock `json:"blocks"`
}

type RenderableGuide struct {
	ID     uuid.UUID         `json:"id" swaggertype:"string" format:"uuid"`
	Title  string            `json:"title"`
	Tags   []string          `json:"tags"`
	Slides []RenderableSlide `json:"slides"`
}
