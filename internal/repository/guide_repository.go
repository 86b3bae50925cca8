package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"guidebolt/internal/domain/models"
	"guidebolt/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

type GuideRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewGuideRepository(db *pgxpool.Pool) *GuideRepo {
	return &GuideRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *GuideRepo) CreateGuide(ctx context.Context, guide models.Guide) (uuid.UUID, error) {
	const op = "repository.guide_repository.CreateGuide"

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback(ctx)

	query, args, err := r.sb.Insert("guides").
		Columns("id", "user_id", "title", "description", "type", "tags", "status", "custom_url", "created_at", "updated_at").
		Values(guide.ID, guide.UserID, guide.Title, guide.Description, guide.Type, guide.Tags, guide.Status, guide.CustomURL, guide.CreatedAt, guide.UpdatedAt).
		ToSql()
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, translateUniqueViolation(err))
	}

	if err := r.upsertSlides(ctx, tx, guide); err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	return guide.ID, nil
}

// SaveGuide записывает документ целиком: метаданные гайда, слайды и блоки.
// Слайды и блоки, отсутствующие в переданном документе, удаляются.
func (r *GuideRepo) SaveGuide(ctx context.Context, guide models.Guide) error {
	const op = "repository.guide_repository.SaveGuide"

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback(ctx)

	query, args, err := r.sb.Update("guides").
		Set("title", guide.Title).
		Set("description", guide.Description).
		Set("type", guide.Type).
		Set("tags", guide.Tags).
		Set("status", guide.Status).
		Set("custom_url", guide.CustomURL).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": guide.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, translateUniqueViolation(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrGuideNotFound)
	}

	if err := r.purgeOrphans(ctx, tx, guide); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := r.upsertSlides(ctx, tx, guide); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return tx.Commit(ctx)
}

func (r *GuideRepo) purgeOrphans(ctx context.Context, tx pgx.Tx, guide models.Guide) error {
	slideIDs := make([]string, 0, len(guide.Slides))
	blockIDs := make([]string, 0)
	for _, s := range guide.Slides {
		slideIDs = append(slideIDs, s.ID.String())
		for _, b := range s.Blocks {
			blockIDs = append(blockIDs, b.ID.String())
		}
	}

	_, err := tx.Exec(ctx,
		`DELETE FROM slides WHERE guide_id = $1 AND NOT (id = ANY($2::uuid[]))`,
		guide.ID, slideIDs)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx,
		`DELETE FROM content_blocks WHERE slide_id = ANY($1::uuid[]) AND NOT (id = ANY($2::uuid[]))`,
		slideIDs, blockIDs)
	return err
}

func (r *GuideRepo) upsertSlides(ctx context.Context, tx pgx.Tx, guide models.Guide) error {
	for _, slide := range guide.Slides {
		query, args, err := r.sb.Insert("slides").
			Columns("id", "guide_id", "title", "position", "created_at", "updated_at").
			Values(slide.ID, guide.ID, slide.Title, slide.Position, slide.CreatedAt, time.Now().UTC()).
			Suffix("ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title, position = EXCLUDED.position, updated_at = EXCLUDED.updated_at").
			ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return err
		}

		for _, block := range slide.Blocks {
			query, args, err := r.sb.Insert("content_blocks").
				Columns("id", "slide_id", "type", "content", "left_content", "right_content", "left_type", "right_type", "styles", "position", "created_at", "updated_at").
				Values(block.ID, slide.ID, block.Type, block.Content, block.LeftContent, block.RightContent, block.LeftType, block.RightType, block.Styles, block.Position, block.CreatedAt, time.Now().UTC()).
				Suffix(`ON CONFLICT (id) DO UPDATE SET
					slide_id = EXCLUDED.slide_id,
					type = EXCLUDED.type,
					content = EXCLUDED.content,
					left_content = EXCLUDED.left_content,
					right_content = EXCLUDED.right_content,
					left_type = EXCLUDED.left_type,
					right_type = EXCLUDED.right_type,
					styles = EXCLUDED.styles,
					position = EXCLUDED.position,
					updated_at = EXCLUDED.updated_at`).
				ToSql()
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, query, args...); err != nil {
				return err
			}
		}
	}
	return nil
}

// GetGuide возвращает гайд со слайдами и блоками, упорядоченными по позиции
func (r *GuideRepo) GetGuide(ctx context.Context, guideID uuid.UUID) (*models.Guide, error) {
	const op = "repository.guide_repository.GetGuide"

	query, args, err := r.sb.Select("id", "user_id", "title", "description", "type", "tags", "status", "custom_url", "views", "created_at", "updated_at").
		From("guides").
		Where(sq.Eq{"id": guideID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var g models.Guide
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&g.ID, &g.UserID, &g.Title, &g.Description, &g.Type, &g.Tags,
		&g.Status, &g.CustomURL, &g.Views, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrGuideNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := r.loadSlides(ctx, &g); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &g, nil
}

func (r *GuideRepo) GetGuideByCustomURL(ctx context.Context, customURL string) (*models.Guide, error) {
	const op = "repository.guide_repository.GetGuideByCustomURL"

	query, args, err := r.sb.Select("id").
		From("guides").
		Where(sq.Eq{"custom_url": customURL}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var id uuid.UUID
	if err := r.db.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrGuideNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return r.GetGuide(ctx, id)
}

func (r *GuideRepo) loadSlides(ctx context.Context, g *models.Guide) error {
	query, args, err := r.sb.Select("id", "guide_id", "title", "position", "created_at", "updated_at").
		From("slides").
		Where(sq.Eq{"guide_id": g.ID}).
		OrderBy("position ASC").
		ToSql()
	if err != nil {
		return err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	g.Slides = g.Slides[:0]
	slideIndex := make(map[uuid.UUID]int)
	for rows.Next() {
		var s models.Slide
		if err := rows.Scan(&s.ID, &s.GuideID, &s.Title, &s.Position, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return err
		}
		s.Blocks = []models.ContentBlock{}
		slideIndex[s.ID] = len(g.Slides)
		g.Slides = append(g.Slides, s)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if len(g.Slides) == 0 {
		return nil
	}

	slideIDs := make([]string, 0, len(g.Slides))
	for _, s := range g.Slides {
		slideIDs = append(slideIDs, s.ID.String())
	}

	blockRows, err := r.db.Query(ctx,
		`SELECT id, slide_id, type, content, left_content, right_content, left_type, right_type, styles, position, created_at, updated_at
		 FROM content_blocks WHERE slide_id = ANY($1::uuid[]) ORDER BY position ASC`,
		slideIDs)
	if err != nil {
		return err
	}
	defer blockRows.Close()

	for blockRows.Next() {
		var b models.ContentBlock
		if err := blockRows.Scan(&b.ID, &b.SlideID, &b.Type, &b.Content, &b.LeftContent, &b.RightContent,
			&b.LeftType, &b.RightType, &b.Styles, &b.Position, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return err
		}
		if i, ok := slideIndex[b.SlideID]; ok {
			g.Slides[i].Blocks = append(g.Slides[i].Blocks, b)
		}
	}

	return blockRows.Err()
}

// GetAllGuides возвращает список гайдов пользователя с количеством слайдов.
// Нулевой userID означает список всех гайдов.
func (r *GuideRepo) GetAllGuides(ctx context.Context, userID uuid.UUID) ([]models.GuideSummary, error) {
	const op = "repository.guide_repository.GetAllGuides"

	builder := r.sb.Select(
		"g.id", "g.user_id", "g.title", "g.description", "g.type", "g.tags",
		"g.status", "g.custom_url", "g.views", "g.created_at", "g.updated_at",
		"COUNT(s.id) AS slide_count",
	).
		From("guides g").
		LeftJoin("slides s ON s.guide_id = g.id").
		GroupBy("g.id").
		OrderBy("g.updated_at DESC")

	if userID != uuid.Nil {
		builder = builder.Where(sq.Eq{"g.user_id": userID})
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

	var out []models.GuideSummary
	for rows.Next() {
		var s models.GuideSummary
		if err := rows.Scan(&s.ID, &s.UserID, &s.Title, &s.Description, &s.Type, &s.Tags,
			&s.Status, &s.CustomURL, &s.Views, &s.CreatedAt, &s.UpdatedAt, &s.SlideCount); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, s)
	}

	return out, rows.Err()
}

func (r *GuideRepo) DeleteGuide(ctx context.Context, guideID uuid.UUID) error {
	const op = "repository.guide_repository.DeleteGuide"

	query, args, err := r.sb.Delete("guides").Where(sq.Eq{"id": guideID}).ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrGuideNotFound)
	}

	return nil
}

func (r *GuideRepo) UpdateGuideFields(ctx context.Context, guideID uuid.UUID, updates map[string]interface{}) error {
	const op = "repository.guide_repository.UpdateGuideFields"

	allowedFields := map[string]bool{
		"title":       true,
		"description": true,
		"type":        true,
		"tags":        true,
		"status":      true,
		"custom_url":  true,
	}

	if len(updates) == 0 {
		return fmt.Errorf("%s: no fields to update", op)
	}

	updateBuilder := r.sb.Update("guides").
		Set("updated_at", time.Now().UTC())

	for field, value := range updates {
		if !allowedFields[field] {
			return fmt.Errorf("%s: field '%s' is not allowed for update", op, field)
		}

		updateBuilder = updateBuilder.Set(field, value)
	}

	updateBuilder = updateBuilder.Where(sq.Eq{"id": guideID})

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, translateUniqueViolation(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrGuideNotFound)
	}

	return nil
}

// IncrementViews атомарно увеличивает счетчик просмотров
func (r *GuideRepo) IncrementViews(ctx context.Context, guideID uuid.UUID) (int64, error) {
	const op = "repository.guide_repository.IncrementViews"

	var views int64
	err := r.db.QueryRow(ctx,
		`UPDATE guides SET views = views + 1 WHERE id = $1 RETURNING views`,
		guideID).Scan(&views)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%s: %w", op, storage.ErrGuideNotFound)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return views, nil
}

func translateUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "guides_custom_url_key" {
		return storage.ErrCustomURLTaken
	}
	return err
}
