package repository

import (
	"context"
	"fmt"
	"time"

	"guidebolt/internal/domain/models"
	"guidebolt/internal/storage"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

// MemoryDraftRepo хранит черновики в памяти процесса. Используется, когда
// redis не сконфигурирован (local окружение и юнит-тесты).
type MemoryDraftRepo struct {
	cache *gocache.Cache
}

func NewMemoryDraftRepo(defaultTTL time.Duration) *MemoryDraftRepo {
	return &MemoryDraftRepo{
		cache: gocache.New(defaultTTL, 10*time.Minute),
	}
}

func (r *MemoryDraftRepo) SaveDraft(_ context.Context, draft models.EditorDraft, ttl time.Duration) error {
	r.cache.Set(draftKey(draft.GuideID), &draft, ttl)
	return nil
}

func (r *MemoryDraftRepo) GetDraft(_ context.Context, guideID uuid.UUID) (*models.EditorDraft, error) {
	const op = "repository.memory_draft_repository.GetDraft"

	v, ok := r.cache.Get(draftKey(guideID))
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrorNoSuchKey)
	}

	return v.(*models.EditorDraft), nil
}

func (r *MemoryDraftRepo) DeleteDraft(_ context.Context, guideID uuid.UUID) error {
	r.cache.Delete(draftKey(guideID))
	return nil
}
