package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"guidebolt/internal/domain/models"
	"guidebolt/internal/lib/logger/sl"
	"guidebolt/internal/lib/sanitize"
	"guidebolt/internal/lib/styles"
	"guidebolt/internal/metrics"
	"guidebolt/internal/repository"
	"guidebolt/internal/transport/http/dto"

	"github.com/google/uuid"
)

var (
	ErrInvalidSlug = errors.New("custom url must contain only lowercase letters, digits and dashes")
)

type GuideService struct {
	log       *slog.Logger
	repo      repository.GuideRepository
	responses repository.ResponseRepository
	drafts    repository.DraftRepository
	sanitizer *sanitize.Sanitizer
	styles    *styles.Resolver
}

func NewGuideService(
	log *slog.Logger,
	repo repository.GuideRepository,
	responses repository.ResponseRepository,
	drafts repository.DraftRepository,
) *GuideService {
	return &GuideService{
		log:       log,
		repo:      repo,
		responses: responses,
		drafts:    drafts,
		sanitizer: sanitize.New(log),
		styles:    styles.NewResolver(log),
	}
}

// CreateGuide создает гайд с документом по умолчанию: один слайд
// "Introduction" с приветственным заголовком и абзацем.
func (s *GuideService) CreateGuide(ctx context.Context, req dto.CreateGuideRequest) (*models.Guide, error) {
	const op = "guide_service.CreateGuide"

	log := s.log.With(
		slog.String("op", op),
		slog.String("title", req.Title),
	)

	log.Info("creating guide")

	if req.Title == "" {
		return nil, fmt.Errorf("%s: title is required", op)
	}
	if req.Type == "" {
		return nil, fmt.Errorf("%s: type is required", op)
	}

	guide := models.NewDefaultGuide(uuid.New(), req.UserID, req.Title)
	guide.Description = req.Description
	guide.Type = req.Type

	for _, tag := range req.Tags {
		if err := guide.AddTag(tag); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	guide.Renumber()

	if err := guide.Validate(); err != nil {
		log.Error("guide validation failed", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.repo.CreateGuide(ctx, *guide); err != nil {
		log.Error("failed to create guide", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("guide created", slog.String("guide_id", guide.ID.String()))

	return guide, nil
}

func (s *GuideService) GetGuide(ctx context.Context, guideID uuid.UUID) (*models.Guide, error) {
	const op = "guide_service.GetGuide"

	guide, err := s.repo.GetGuide(ctx, guideID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return guide, nil
}

// GetGuideByIdentifier находит гайд по UUID либо по custom URL
func (s *GuideService) GetGuideByIdentifier(ctx context.Context, identifier string) (*models.Guide, error) {
	const op = "guide_service.GetGuideByIdentifier"

	if id, err := uuid.Parse(identifier); err == nil {
		return s.GetGuide(ctx, id)
	}

	guide, err := s.repo.GetGuideByCustomURL(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return guide, nil
}

func (s *GuideService) ListGuides(ctx context.Context, userID uuid.UUID) ([]models.GuideSummary, error) {
	const op = "guide_service.ListGuides"

	summaries, err := s.repo.GetAllGuides(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return summaries, nil
}

// SaveGuide сохраняет полный документ: позиции уплотняются, осиротевшие
// слайды и блоки вычищаются, черновик редактора удаляется.
func (s *GuideService) SaveGuide(ctx context.Context, guide *models.Guide) error {
	const op = "guide_service.SaveGuide"

	log := s.log.With(
		slog.String("op", op),
		slog.String("guide_id", guide.ID.String()),
	)

	guide.Renumber()

	if err := guide.Validate(); err != nil {
		log.Error("guide validation failed", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.SaveGuide(ctx, *guide); err != nil {
		log.Error("failed to save guide", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	// Сохраненный документ делает черновик неактуальным
	if err := s.drafts.DeleteDraft(ctx, guide.ID); err != nil {
		log.Warn("failed to drop editor draft", sl.Err(err))
	}

	metrics.GuideSavesTotal.Inc()

	log.Info("guide saved")

	return nil
}

func (s *GuideService) UpdateGuide(ctx context.Context, guideID uuid.UUID, req dto.UpdateGuideRequest) error {
	const op = "guide_service.UpdateGuide"

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Type != nil {
		updates["type"] = *req.Type
	}
	if req.Tags != nil {
		if len(req.Tags) > models.MaxTags {
			return fmt.Errorf("%s: %w", op, models.ErrTagLimit)
		}
		updates["tags"] = req.Tags
	}

	if err := s.repo.UpdateGuideFields(ctx, guideID, updates); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// PublishGuide переводит гайд в статус published, опционально присваивая
// custom URL. Пустой customURL оставляет прежний слаг.
func (s *GuideService) PublishGuide(ctx context.Context, guideID uuid.UUID, customURL *string) error {
	const op = "guide_service.PublishGuide"

	log := s.log.With(
		slog.String("op", op),
		slog.String("guide_id", guideID.String()),
	)

	updates := map[string]interface{}{
		"status": models.StatusPublished,
	}

	if customURL != nil {
		slug := MakeSlug(*customURL)
		if !ValidSlug(slug) {
			return fmt.Errorf("%s: %w", op, ErrInvalidSlug)
		}
		updates["custom_url"] = slug
	}

	if err := s.repo.UpdateGuideFields(ctx, guideID, updates); err != nil {
		log.Error("failed to publish guide", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("guide published")

	return nil
}

func (s *GuideService) UnpublishGuide(ctx context.Context, guideID uuid.UUID) error {
	const op = "guide_service.UnpublishGuide"

	err := s.repo.UpdateGuideFields(ctx, guideID, map[string]interface{}{
		"status": models.StatusDraft,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// DeleteGuide удаляет гайд вместе с собранными ответами и черновиком
func (s *GuideService) DeleteGuide(ctx context.Context, guideID uuid.UUID) error {
	const op = "guide_service.DeleteGuide"

	log := s.log.With(
		slog.String("op", op),
		slog.String("guide_id", guideID.String()),
	)

	if err := s.repo.DeleteGuide(ctx, guideID); err != nil {
		log.Error("failed to delete guide", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.responses.DeleteGuideResponses(ctx, guideID); err != nil {
		log.Warn("failed to delete guide responses", sl.Err(err))
	}
	if err := s.drafts.DeleteDraft(ctx, guideID); err != nil {
		log.Warn("failed to delete editor draft", sl.Err(err))
	}

	log.Info("guide deleted")

	return nil
}

func (s *GuideService) IncrementViews(ctx context.Context, guideID uuid.UUID) (int64, error) {
	const op = "guide_service.IncrementViews"

	views, err := s.repo.IncrementViews(ctx, guideID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return views, nil
}

// RenderGuide готовит гайд к показу: очищенная разметка и разрешенные
// стили для каждого блока
func (s *GuideService) RenderGuide(guide *models.Guide) dto.RenderableGuide {
	out := dto.RenderableGuide{
		ID:    guide.ID,
		Title: guide.Title,
		Tags:  append([]string(nil), guide.Tags...),
	}

	for _, slide := range guide.Slides {
		rs := dto.RenderableSlide{
			ID:       slide.ID,
			Title:    slide.Title,
			Position: slide.Position,
		}
		for i := range slide.Blocks {
			rs.Blocks = append(rs.Blocks, s.renderBlock(&slide.Blocks[i]))
		}
		out.Slides = append(out.Slides, rs)
	}

	return out
}

func (s *GuideService) renderBlock(b *models.ContentBlock) dto.RenderableBlock {
	out := dto.RenderableBlock{
		ID:       b.ID,
		Type:     b.Type,
		Styles:   s.styles.Resolve(b.Type, b.Styles),
		Position: b.Position,
	}

	content := ""
	if b.Content != nil {
		content = *b.Content
	}

	switch b.Type {
	case models.BlockImage, models.BlockVideo, models.BlockGif:
		out.SourceURL = content
	case models.BlockEmbed:
		out.SourceURL = sanitize.ConvertToEmbedURL(content)
	case models.BlockTwoColumn:
		leftType, rightType := models.BlockParagraph, models.BlockParagraph
		if b.LeftType != nil {
			leftType = *b.LeftType
		}
		if b.RightType != nil {
			rightType = *b.RightType
		}
		left, right := "", ""
		if b.LeftContent != nil {
			left = *b.LeftContent
		}
		if b.RightContent != nil {
			right = *b.RightContent
		}
		out.LeftType = leftType
		out.RightType = rightType
		out.LeftHTML = s.sanitizer.CleanColumn(leftType, left, "left")
		out.RightHTML = s.sanitizer.CleanColumn(rightType, right, "right")
	default:
		out.HTML = s.sanitizer.CleanBlock(b.Type, content)
	}

	return out
}
