package repository

import (
	"context"
	"time"

	"guidebolt/internal/domain/models"

	"github.com/google/uuid"
)

type GuideRepository interface {
	CreateGuide(ctx context.Context, guide models.Guide) (uuid.UUID, error)
	SaveGuide(ctx context.Context, guide models.Guide) error
	GetGuide(ctx context.Context, guideID uuid.UUID) (*models.Guide, error)
	GetGuideByCustomURL(ctx context.Context, customURL string) (*models.Guide, error)
	GetAllGuides(ctx context.Context, userID uuid.UUID) ([]models.GuideSummary, error)
	DeleteGuide(ctx context.Context, guideID uuid.UUID) error
	UpdateGuideFields(ctx context.Context, guideID uuid.UUID, updates map[string]interface{}) error
	IncrementViews(ctx context.Context, guideID uuid.UUID) (int64, error)
}

type ResponseRepository interface {
	UpsertResponse(ctx context.Context, response models.UserResponse) (uuid.UUID, error)
	GetResponses(ctx context.Context, filter models.ResponseFilter) ([]models.UserResponse, error)
	DeleteGuideResponses(ctx context.Context, guideID uuid.UUID) error
}

type DraftRepository interface {
	SaveDraft(ctx context.Context, draft models.EditorDraft, ttl time.Duration) error
	GetDraft(ctx context.Context, guideID uuid.UUID) (*models.EditorDraft, error)
	DeleteDraft(ctx context.Context, guideID uuid.UUID) error
}
