package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"guidebolt/internal/domain/models"
	"guidebolt/internal/storage"
	redisapp "guidebolt/internal/storage/redis"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisDraftRepo хранит черновики редактора в redis: один ключ на гайд,
// последняя запись побеждает, TTL отсекает брошенные черновики.
type RedisDraftRepo struct {
	Client *redisapp.Client
}

func NewRedisDraftRepo(client *redisapp.Client) *RedisDraftRepo {
	return &RedisDraftRepo{Client: client}
}

func (r *RedisDraftRepo) SaveDraft(ctx context.Context, draft models.EditorDraft, ttl time.Duration) error {
	const op = "repository.draft_repository.SaveDraft"

	payload, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return r.Client.Set(ctx, draftKey(draft.GuideID), payload, ttl).Err()
}

func (r *RedisDraftRepo) GetDraft(ctx context.Context, guideID uuid.UUID) (*models.EditorDraft, error) {
	const op = "repository.draft_repository.GetDraft"

	payload, err := r.Client.Get(ctx, draftKey(guideID)).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrorNoSuchKey)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var draft models.EditorDraft
	if err := json.Unmarshal(payload, &draft); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &draft, nil
}

func (r *RedisDraftRepo) DeleteDraft(ctx context.Context, guideID uuid.UUID) error {
	return r.Client.Del(ctx, draftKey(guideID)).Err()
}

func draftKey(guideID uuid.UUID) string {
	return "draft:" + guideID.String()
}
