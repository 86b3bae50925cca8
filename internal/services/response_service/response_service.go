package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"guidebolt/internal/domain/models"
	"guidebolt/internal/lib/logger/sl"
	"guidebolt/internal/metrics"
	"guidebolt/internal/repository"
	"guidebolt/internal/transport/http/dto"
)

var ErrEmptyResponse = errors.New("response must carry an answer or an uploaded file")

// ResponseService принимает пакеты ответов зрителей и отдает их
// создателю гайда с фильтрацией
type ResponseService struct {
	log       *slog.Logger
	responses repository.ResponseRepository
}

func NewResponseService(log *slog.Logger, responses repository.ResponseRepository) *ResponseService {
	return &ResponseService{
		log:       log,
		responses: responses,
	}
}

// SubmitResponses сохраняет пакет ответов одного слайда. Повторная
// отправка той же пары (block_id, user_identifier) перезаписывает ответ.
// Возвращает количество сохраненных ответов.
func (s *ResponseService) SubmitResponses(ctx context.Context, req dto.SubmitResponsesRequest) (int, error) {
	const op = "response_service.SubmitResponses"

	log := s.log.With(
		slog.String("op", op),
	)

	for _, item := range req.Responses {
		hasAnswer := item.Answer != nil && *item.Answer != ""
		hasFile := item.FileURL != nil && *item.FileURL != ""
		if !hasAnswer && !hasFile {
			return 0, fmt.Errorf("%s: %w", op, ErrEmptyResponse)
		}
	}

	saved := 0
	for _, item := range req.Responses {
		resp := models.UserResponse{
			GuideID:        item.GuideID,
			SlideID:        item.SlideID,
			BlockID:        item.BlockID,
			UserIdentifier: item.UserIdentifier,
			Question:       item.Question,
			Answer:         item.Answer,
			FileURL:        item.FileURL,
			FileName:       item.FileName,
			FileSize:       item.FileSize,
		}

		if _, err := s.responses.UpsertResponse(ctx, resp); err != nil {
			log.Error("failed to save response", sl.Err(err),
				slog.String("block_id", item.BlockID.String()),
			)
			return saved, fmt.Errorf("%s: %w", op, err)
		}
		saved++
	}

	metrics.ResponsesSubmittedTotal.Add(float64(saved))

	log.Info("responses saved", slog.Int("count", saved))

	return saved, nil
}

func (s *ResponseService) ListResponses(ctx context.Context, filter models.ResponseFilter) ([]models.UserResponse, error) {
	const op = "response_service.ListResponses"

	items, err := s.responses.GetResponses(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return items, nil
}
