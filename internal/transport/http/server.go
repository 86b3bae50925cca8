package http

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"guidebolt/internal/domain/models"
	"guidebolt/internal/lib/logger/sl"
	"guidebolt/internal/storage"
	"guidebolt/internal/transport/http/dto"
	"guidebolt/internal/transport/http/dto/response"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	_ "guidebolt/docs"
)

type GuideService interface {
	CreateGuide(ctx context.Context, req dto.CreateGuideRequest) (*models.Guide, error)
	GetGuide(ctx context.Context, guideID uuid.UUID) (*models.Guide, error)
	GetGuideByIdentifier(ctx context.Context, identifier string) (*models.Guide, error)
	ListGuides(ctx context.Context, userID uuid.UUID) ([]models.GuideSummary, error)
	SaveGuide(ctx context.Context, guide *models.Guide) error
	UpdateGuide(ctx context.Context, guideID uuid.UUID, req dto.UpdateGuideRequest) error
	PublishGuide(ctx context.Context, guideID uuid.UUID, customURL *string) error
	UnpublishGuide(ctx context.Context, guideID uuid.UUID) error
	DeleteGuide(ctx context.Context, guideID uuid.UUID) error
	IncrementViews(ctx context.Context, guideID uuid.UUID) (int64, error)
	RenderGuide(guide *models.Guide) dto.RenderableGuide
}

type MediaService interface {
	UploadFile(ctx context.Context, file *multipart.FileHeader) (*models.UploadedFile, error)
	DeleteFile(ctx context.Context, urlOrName string) error
}

type ResponseService interface {
	SubmitResponses(ctx context.Context, req dto.SubmitResponsesRequest) (int, error)
	ListResponses(ctx context.Context, filter models.ResponseFilter) ([]models.UserResponse, error)
}

type Routers struct {
	log             *slog.Logger
	GuideService    GuideService
	MediaService    MediaService
	ResponseService ResponseService
}

func NewRouter(log *slog.Logger, guideService GuideService, mediaService MediaService, responseService ResponseService) *Routers {
	return &Routers{
		log:             log,
		GuideService:    guideService,
		MediaService:    mediaService,
		ResponseService: responseService,
	}
}

var ErrInvalidUUID = errors.New("not valid UUID")

// viewerSessionKey — имя cookie-сессии зрителя, в ней живет его
// анонимный идентификатор
const viewerSessionKey = "viewer"

// CreateGuide godoc
// @Summary Создать новый гайд
// @Description Создает гайд со стартовым слайдом (заголовок + параграф) в статусе draft
// @Tags Гайды
// @Accept json
// @Produce json
// @Param request body dto.CreateGuideRequest true "Данные гайда"
// @Success 201 {object} response.Response{data=dto.CreateGuideResponse}
// @Failure 400 {object} response.ErrorResponse "Неверный формат запроса"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Security ApiKeyAuth
// @Router /api/v1/guides [post]
func (r *Routers) CreateGuide(c echo.Context) error {
	const op = "http.routers.CreateGuide"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.CreateGuideRequest

	if err := c.Bind(&req); err != nil {
		log.Error("failed to bind request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		resp := response.ErrInvalidRequestFormat
		resp.Details = err.Error()
		log.Warn("invalid format request", slog.String("title", req.Title))
		return c.JSON(http.StatusBadRequest, resp)
	}

	guide, err := r.GuideService.CreateGuide(c.Request().Context(), req)
	if err != nil {
		log.Error("failed to create guide", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("create_failed", err.Error()))
	}

	log.Info("guide created", slog.String("guide_id", guide.ID.String()))

	return c.JSON(http.StatusCreated, response.SuccessResponse(dto.CreateGuideResponse{
		ID:        guide.ID,
		Title:     guide.Title,
		Status:    string(guide.Status),
		CreatedAt: guide.CreatedAt,
	}))
}

// ListGuides godoc
// @Summary Список гайдов
// @Description Возвращает гайды с количеством слайдов. Фильтр по владельцу через user_id.
// @Tags Гайды
// @Produce json
// @Param user_id query string false "UUID владельца" format(uuid)
// @Success 200 {object} response.Response{data=dto.GuideListResponse}
// @Failure 400 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/guides [get]
func (r *Routers) ListGuides(c echo.Context) error {
	const op = "http.routers.ListGuides"

	log := r.log.With(
		slog.String("op", op),
	)

	userID := uuid.Nil
	if raw := c.QueryParam("user_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			log.Error("error parse uuid", sl.Err(err))
			return c.JSON(http.StatusBadRequest, response.ErrorResponse{
				Error: "invalid user ID format",
			})
		}
		userID = parsed
	}

	guides, err := r.GuideService.ListGuides(c.Request().Context(), userID)
	if err != nil {
		log.Error("failed to list guides", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Error: "failed to list guides",
		})
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(dto.GuideListResponse{
		Guides: guides,
		Total:  len(guides),
	}))
}

// GetGuide godoc
// @Summary Получить гайд
// @Description Возвращает гайд целиком (слайды и блоки) по UUID или custom URL
// @Tags Гайды
// @Produce json
// @Param id path string true "UUID гайда или custom URL"
// @Success 200 {object} response.Response{data=models.Guide}
// @Failure 404 {object} response.ErrorResponse "Гайд не найден"
// @Failure 500 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/guides/{id} [get]
func (r *Routers) GetGuide(c echo.Context) error {
	const op = "http.routers.GetGuide"

	log := r.log.With(
		slog.String("op", op),
	)

	guide, err := r.GuideService.GetGuideByIdentifier(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrGuideNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrGuideNotFound)
		}
		log.Error("failed to get guide", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Error: "failed to get guide",
		})
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(guide))
}

// SaveGuide godoc
// @Summary Сохранить гайд
// @Description Принимает полный снимок документа редактора и атомарно заменяет слайды и блоки
// @Tags Гайды
// @Accept json
// @Produce json
// @Param id path string true "UUID гайда" format(uuid)
// @Param request body dto.SaveGuideRequest true "Снимок документа"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse "Гайд не найден"
// @Failure 500 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/guides/{id} [put]
func (r *Routers) SaveGuide(c echo.Context) error {
	const op = "http.routers.SaveGuide"

	log := r.log.With(
		slog.String("op", op),
	)

	guideID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		log.Error("invalid guide ID format", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "invalid guide ID format"})
	}

	var req dto.SaveGuideRequest

	if err := c.Bind(&req); err != nil {
		log.Error("failed to bind request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		resp := response.ErrInvalidRequestFormat
		resp.Details = err.Error()
		return c.JSON(http.StatusBadRequest, resp)
	}

	guide, err := r.GuideService.GetGuide(c.Request().Context(), guideID)
	if err != nil {
		if errors.Is(err, storage.ErrGuideNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrGuideNotFound)
		}
		log.Error("failed to load guide", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{Error: "failed to load guide"})
	}

	guide.Title = req.Title
	guide.Tags = req.Tags
	guide.Slides = req.Slides

	if err := r.GuideService.SaveGuide(c.Request().Context(), guide); err != nil {
		log.Error("failed to save guide", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("save_failed", err.Error()))
	}

	log.Info("guide saved", slog.String("guide_id", guideID.String()), slog.Int("slides", len(req.Slides)))

	return c.JSON(http.StatusOK, response.SuccessMessage("guide saved"))
}

// UpdateGuide godoc
// @Summary Обновить метаданные гайда
// @Description Частично обновляет название, описание, тип и теги
// @Tags Гайды
// @Accept json
// @Produce json
// @Param id path string true "UUID гайда" format(uuid)
// @Param request body dto.UpdateGuideRequest true "Поля для обновления"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse "Гайд не найден"
// @Security ApiKeyAuth
// @Router /api/v1/guides/{id} [patch]
func (r *Routers) UpdateGuide(c echo.Context) error {
	const op = "http.routers.UpdateGuide"

	log := r.log.With(
		slog.String("op", op),
	)

	guideID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		log.Error("invalid guide ID format", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "invalid guide ID format"})
	}

	req := new(dto.UpdateGuideRequest)
	if err := c.Bind(req); err != nil {
		log.Error("failed to bind request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		resp := response.ErrInvalidRequestFormat
		resp.Details = err.Error()
		return c.JSON(http.StatusBadRequest, resp)
	}

	if err := r.GuideService.UpdateGuide(c.Request().Context(), guideID, *req); err != nil {
		if errors.Is(err, storage.ErrGuideNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrGuideNotFound)
		}
		log.Error("failed to update guide", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("update_failed", err.Error()))
	}

	return c.JSON(http.StatusOK, response.SuccessMessage("guide updated"))
}

// DeleteGuide godoc
// @Summary Удалить гайд
// @Description Удаляет гайд со слайдами, блоками и ответами зрителей
// @Tags Гайды
// @Param id path string true "UUID гайда" format(uuid)
// @Success 204
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse "Гайд не найден"
// @Security ApiKeyAuth
// @Router /api/v1/guides/{id} [delete]
func (r *Routers) DeleteGuide(c echo.Context) error {
	const op = "http.routers.DeleteGuide"

	log := r.log.With(
		slog.String("op", op),
	)

	guideID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		log.Error("invalid guide ID format", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "invalid guide ID format"})
	}

	if err := r.GuideService.DeleteGuide(c.Request().Context(), guideID); err != nil {
		if errors.Is(err, storage.ErrGuideNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrGuideNotFound)
		}
		log.Error("failed to delete guide", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{Error: "failed to delete guide"})
	}

	log.Info("guide deleted", slog.String("guide_id", guideID.String()))

	return c.NoContent(http.StatusNoContent)
}

// PublishGuide godoc
// @Summary Опубликовать гайд
// @Description Переводит гайд в статус published. Custom URL нормализуется в слаг; без него слаг строится из названия.
// @Tags Гайды
// @Accept json
// @Produce json
// @Param id path string true "UUID гайда" format(uuid)
// @Param request body dto.PublishGuideRequest false "Кастомный URL"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse "Гайд не найден"
// @Failure 409 {object} response.ErrorResponse "Custom URL уже занят"
// @Security ApiKeyAuth
// @Router /api/v1/guides/{id}/publish [patch]
func (r *Routers) PublishGuide(c echo.Context) error {
	const op = "http.routers.PublishGuide"

	log := r.log.With(
		slog.String("op", op),
	)

	guideID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		log.Error("invalid guide ID format", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "invalid guide ID format"})
	}

	req := new(dto.PublishGuideRequest)
	if err := c.Bind(req); err != nil {
		log.Error("failed to bind request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := r.GuideService.PublishGuide(c.Request().Context(), guideID, req.CustomURL); err != nil {
		switch {
		case errors.Is(err, storage.ErrGuideNotFound):
			return c.JSON(http.StatusNotFound, response.ErrGuideNotFound)
		case errors.Is(err, storage.ErrCustomURLTaken):
			log.Warn("custom url already taken", slog.String("guide_id", guideID.String()))
			return c.JSON(http.StatusConflict, response.ErrCustomURLTaken)
		default:
			log.Error("failed to publish guide", sl.Err(err))
			return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("publish_failed", err.Error()))
		}
	}

	log.Info("guide published", slog.String("guide_id", guideID.String()))

	return c.JSON(http.StatusOK, response.SuccessMessage("guide published"))
}

// UnpublishGuide godoc
// @Summary Снять гайд с публикации
// @Description Возвращает гайд в статус draft, custom URL освобождается
// @Tags Гайды
// @Param id path string true "UUID гайда" format(uuid)
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse "Гайд не найден"
// @Security ApiKeyAuth
// @Router /api/v1/guides/{id}/unpublish [patch]
func (r *Routers) UnpublishGuide(c echo.Context) error {
	const op = "http.routers.UnpublishGuide"

	log := r.log.With(
		slog.String("op", op),
	)

	guideID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		log.Error("invalid guide ID format", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "invalid guide ID format"})
	}

	if err := r.GuideService.UnpublishGuide(c.Request().Context(), guideID); err != nil {
		if errors.Is(err, storage.ErrGuideNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrGuideNotFound)
		}
		log.Error("failed to unpublish guide", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("unpublish_failed", err.Error()))
	}

	return c.JSON(http.StatusOK, response.SuccessMessage("guide unpublished"))
}

// IncrementViews godoc
// @Summary Засчитать просмотр
// @Description Атомарно увеличивает счетчик просмотров и возвращает новое значение
// @Tags Просмотр
// @Produce json
// @Param id path string true "UUID гайда" format(uuid)
// @Success 200 {object} response.Response{data=dto.ViewsResponse}
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse "Гайд не найден"
// @Router /api/v1/guides/{id}/views [post]
func (r *Routers) IncrementViews(c echo.Context) error {
	const op = "http.routers.IncrementViews"

	log := r.log.With(
		slog.String("op", op),
	)

	guideID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		log.Error("invalid guide ID format", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "invalid guide ID format"})
	}

	views, err := r.GuideService.IncrementViews(c.Request().Context(), guideID)
	if err != nil {
		if errors.Is(err, storage.ErrGuideNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrGuideNotFound)
		}
		log.Error("failed to increment views", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{Error: "failed to increment views"})
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(dto.ViewsResponse{
		GuideID: guideID,
		Views:   views,
	}))
}

// ViewGuide godoc
// @Summary Гайд для зрителя
// @Description Возвращает гайд, подготовленный к показу: контент очищен, embed-ссылки нормализованы, стили разрешены. Черновик доступен только по UUID.
// @Tags Просмотр
// @Produce json
// @Param identifier path string true "UUID гайда или custom URL"
// @Success 200 {object} response.Response{data=dto.RenderableGuide}
// @Failure 404 {object} response.ErrorResponse "Гайд не найден"
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/view/{identifier} [get]
func (r *Routers) ViewGuide(c echo.Context) error {
	const op = "http.routers.ViewGuide"

	log := r.log.With(
		slog.String("op", op),
	)

	identifier := c.Param("identifier")

	guide, err := r.GuideService.GetGuideByIdentifier(c.Request().Context(), identifier)
	if err != nil {
		if errors.Is(err, storage.ErrGuideNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrGuideNotFound)
		}
		log.Error("failed to get guide", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Error: "failed to get guide",
		})
	}

	// По custom URL отдаем только опубликованные, по UUID владелец
	// может смотреть превью черновика
	if guide.Status != models.StatusPublished {
		if _, parseErr := uuid.Parse(identifier); parseErr != nil {
			return c.JSON(http.StatusNotFound, response.ErrGuideNotFound)
		}
	}

	r.ensureViewerIdentity(c)

	return c.JSON(http.StatusOK, response.SuccessResponse(r.GuideService.RenderGuide(guide)))
}

// ensureViewerIdentity кладет в cookie-сессию анонимный идентификатор
// зрителя, под которым сохраняются его ответы
func (r *Routers) ensureViewerIdentity(c echo.Context) string {
	sess, err := session.Get(viewerSessionKey, c)
	if err != nil {
		return uuid.NewString()
	}

	if raw, ok := sess.Values["viewer_id"].(string); ok && raw != "" {
		return raw
	}

	viewerID := uuid.NewString()
	sess.Values["viewer_id"] = viewerID
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		r.log.Warn("failed to persist viewer session", sl.Err(err))
	}

	return viewerID
}

// UploadFile godoc
// @Summary Загрузить файл
// @Description Сохраняет файл зрителя или медиа гайда. Максимум 10MB, тип из списка разрешенных.
// @Tags Файлы
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Файл для загрузки (макс. 10MB)"
// @Success 201 {object} response.Response{data=dto.UploadFileResponse}
// @Failure 400 {object} response.ErrorResponse "Файл отсутствует в запросе"
// @Failure 413 {object} response.ErrorResponse "Превышен максимальный размер файла"
// @Failure 415 {object} response.ErrorResponse "Неподдерживаемый тип файла"
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/uploads [post]
func (r *Routers) UploadFile(c echo.Context) error {
	const op = "http.routers.UploadFile"

	log := r.log.With(
		slog.String("op", op),
	)

	startTime := time.Now()
	defer func() {
		log.Info("Request completed",
			"duration", time.Since(startTime))
	}()

	file, err := c.FormFile("file")
	if err != nil {
		log.Warn("Empty file in request",
			"error", err.Error())
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "No file provided"})
	}

	log.Debug("Got file for upload",
		"filename", file.Filename,
		"size", file.Size,
		"mime_type", file.Header.Get("Content-Type"))

	uploaded, err := r.MediaService.UploadFile(c.Request().Context(), file)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrFileTooLarge):
			return c.JSON(http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
		case errors.Is(err, storage.ErrInvalidFileType):
			return c.JSON(http.StatusUnsupportedMediaType, response.ErrInvalidFileType)
		default:
			log.Error("Error upload file",
				"error", err.Error(),
				"filename", file.Filename)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to upload file"})
		}
	}

	log.Info("Upload successfull",
		"stored_name", uploaded.StoredName,
		"file_size", uploaded.Size,
		"duration", time.Since(startTime))

	return c.JSON(http.StatusCreated, response.SuccessResponse(dto.UploadFileResponse{
		URL:          uploaded.URL,
		Filename:     uploaded.StoredName,
		OriginalName: uploaded.OriginalName,
		Size:         uploaded.Size,
		Type:         uploaded.MimeType,
	}))
}

// DeleteFile godoc
// @Summary Удалить файл
// @Description Удаляет загруженный файл по имени или полному URL
// @Tags Файлы
// @Accept json
// @Produce json
// @Param request body dto.DeleteFileRequest true "Имя файла"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse "Файл не найден"
// @Router /api/v1/uploads [delete]
func (r *Routers) DeleteFile(c echo.Context) error {
	const op = "http.routers.DeleteFile"

	log := r.log.With(
		slog.String("op", op),
	)

	req := new(dto.DeleteFileRequest)
	if err := c.Bind(req); err != nil {
		log.Error("failed to bind request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		resp := response.ErrInvalidRequestFormat
		resp.Details = err.Error()
		return c.JSON(http.StatusBadRequest, resp)
	}

	if err := r.MediaService.DeleteFile(c.Request().Context(), req.Filename); err != nil {
		if errors.Is(err, storage.ErrFileNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrorResponse{
				Status: "error",
				Error:  "file_not_found",
			})
		}
		log.Error("failed to delete file", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{Error: "failed to delete file"})
	}

	return c.JSON(http.StatusOK, response.SuccessMessage("file deleted"))
}

// SubmitResponses godoc
// @Summary Отправить ответы слайда
// @Description Сохраняет пакет ответов зрителя. Повторная отправка того же блока перезаписывает прежний ответ.
// @Tags Ответы
// @Accept json
// @Produce json
// @Param request body dto.SubmitResponsesRequest true "Ответы на интерактивные блоки"
// @Success 200 {object} response.Response{data=object{saved=int}}
// @Failure 400 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/responses [post]
func (r *Routers) SubmitResponses(c echo.Context) error {
	const op = "http.routers.SubmitResponses"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.SubmitResponsesRequest

	if err := c.Bind(&req); err != nil {
		log.Error("failed to bind request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		resp := response.ErrInvalidRequestFormat
		resp.Details = err.Error()
		return c.JSON(http.StatusBadRequest, resp)
	}

	saved, err := r.ResponseService.SubmitResponses(c.Request().Context(), req)
	if err != nil {
		log.Error("failed to submit responses", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("submit_failed", err.Error()))
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(map[string]int{"saved": saved}))
}

// ListResponses godoc
// @Summary Ответы зрителей
// @Description Возвращает ответы с фильтрацией по гайду, слайду, блоку и зрителю
// @Tags Ответы
// @Produce json
// @Param guide_id query string false "UUID гайда" format(uuid)
// @Param slide_id query string false "UUID слайда" format(uuid)
// @Param block_id query string false "UUID блока" format(uuid)
// @Param user_identifier query string false "Идентификатор зрителя"
// @Success 200 {object} response.Response{data=[]dto.ResponseItem}
// @Failure 400 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/responses [get]
func (r *Routers) ListResponses(c echo.Context) error {
	const op = "http.routers.ListResponses"

	log := r.log.With(
		slog.String("op", op),
	)

	filter, err := parseResponseFilter(c)
	if err != nil {
		log.Error("invalid query parameters", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Error: "Invalid query parameters",
		})
	}

	rows, err := r.ResponseService.ListResponses(c.Request().Context(), filter)
	if err != nil {
		log.Error("failed to list responses", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{Error: "failed to list responses"})
	}

	items := make([]dto.ResponseItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, dto.ResponseItem{
			ID:             row.ID,
			GuideID:        row.GuideID,
			SlideID:        row.SlideID,
			BlockID:        row.BlockID,
			UserIdentifier: row.UserIdentifier,
			Question:       row.Question,
			Answer:         row.Answer,
			FileURL:        row.FileURL,
			FileName:       row.FileName,
			FileSize:       row.FileSize,
			CreatedAt:      row.CreatedAt,
		})
	}

	resp := map[string]interface{}{
		"data": items,
		"meta": map[string]interface{}{
			"count": len(items),
		},
	}

	return c.JSON(http.StatusOK, resp)
}

func parseResponseFilter(c echo.Context) (models.ResponseFilter, error) {
	var filter models.ResponseFilter

	for param, dst := range map[string]*uuid.UUID{
		"guide_id": &filter.GuideID,
		"slide_id": &filter.SlideID,
		"block_id": &filter.BlockID,
	} {
		raw := c.QueryParam(param)
		if raw == "" {
			continue
		}
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return models.ResponseFilter{}, ErrInvalidUUID
		}
		*dst = parsed
	}

	filter.UserIdentifier = c.QueryParam("user_identifier")

	return filter, nil
}
