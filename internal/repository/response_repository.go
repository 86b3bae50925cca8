package repository

import (
	"context"
	"fmt"

	"guidebolt/internal/domain/models"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"
)

type ResponseRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewResponseRepository(db *pgxpool.Pool) *ResponseRepo {
	return &ResponseRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// UpsertResponse записывает ответ зрителя. Повторная отправка той же пары
// (block_id, user_identifier) обновляет существующую строку, а не плодит дубли.
func (r *ResponseRepo) UpsertResponse(ctx context.Context, response models.UserResponse) (uuid.UUID, error) {
	const op = "repository.response_repository.UpsertResponse"

	if response.ID == uuid.Nil {
		response.ID = uuid.New()
	}

	query, args, err := r.sb.Insert("user_responses").
		Columns("id", "guide_id", "slide_id", "block_id", "user_identifier", "question", "answer", "file_url", "file_name", "file_size").
		Values(response.ID, response.GuideID, response.SlideID, response.BlockID, response.UserIdentifier,
			response.Question, response.Answer, response.FileURL, response.FileName, response.FileSize).
		Suffix(`ON CONFLICT (block_id, user_identifier) DO UPDATE SET
			question = EXCLUDED.question,
			answer = EXCLUDED.answer,
			file_url = EXCLUDED.file_url,
			file_name = EXCLUDED.file_name,
			file_size = EXCLUDED.file_size
			RETURNING id`).
		ToSql()
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	var id uuid.UUID
	if err := r.db.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

// GetResponses возвращает ответы, отфильтрованные по гайду, слайду, блоку
// и/или идентификатору сессии зрителя
func (r *ResponseRepo) GetResponses(ctx context.Context, filter models.ResponseFilter) ([]models.UserResponse, error) {
	const op = "repository.response_repository.GetResponses"

	builder := r.sb.Select("id", "guide_id", "slide_id", "block_id", "user_identifier", "question", "answer", "file_url", "file_name", "file_size", "created_at").
		From("user_responses").
		OrderBy("created_at ASC")

	if filter.GuideID != uuid.Nil {
		builder = builder.Where(sq.Eq{"guide_id": filter.GuideID})
	}
	if filter.SlideID != uuid.Nil {
		builder = builder.Where(sq.Eq{"slide_id": filter.SlideID})
	}
	if filter.BlockID != uuid.Nil {
		builder = builder.Where(sq.Eq{"block_id": filter.BlockID})
	}
	if filter.UserIdentifier != "" {
		builder = builder.Where(sq.Eq{"user_identifier": filter.UserIdentifier})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []models.UserResponse
	for rows.Next() {
		var resp models.UserResponse
		if err := rows.Scan(&resp.ID, &resp.GuideID, &resp.SlideID, &resp.BlockID, &resp.UserIdentifier,
			&resp.Question, &resp.Answer, &resp.FileURL, &resp.FileName, &resp.FileSize, &resp.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, resp)
	}

	return out, rows.Err()
}

func (r *ResponseRepo) DeleteGuideResponses(ctx context.Context, guideID uuid.UUID) error {
	const op = "repository.response_repository.DeleteGuideResponses"

	query, args, err := r.sb.Delete("user_responses").Where(sq.Eq{"guide_id": guideID}).ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
