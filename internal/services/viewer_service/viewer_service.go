package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"sync"
	"time"

	"guidebolt/internal/domain/models"
	"guidebolt/internal/lib/logger/sl"
	"guidebolt/internal/repository"

	"github.com/google/uuid"
)

// CompletionAnimationDuration — длительность анимации прогресса перед
// показом диалога завершения
const CompletionAnimationDuration = 1500 * time.Millisecond

type ViewerState string

const (
	StateNotStarted ViewerState = "not-started"
	StateInProgress ViewerState = "in-progress"
	StateCompleted  ViewerState = "completed"
)

type UploadStatus string

const (
	UploadIdle      UploadStatus = "idle"
	UploadInFlight  UploadStatus = "uploading"
	UploadSucceeded UploadStatus = "success"
	UploadFailed    UploadStatus = "error"
)

var (
	ErrNotStarted       = errors.New("viewing session not started")
	ErrAlreadySubmitted = errors.New("slide already submitted in this session")
	ErrUploadInFlight   = errors.New("file upload still in progress")
	ErrMissingResponse  = errors.New("all questions on this slide must be answered")
)

// MediaUploader — файловые операции, нужные зрителю
type MediaUploader interface {
	UploadFile(ctx context.Context, file *multipart.FileHeader) (*models.UploadedFile, error)
	DeleteFile(ctx context.Context, urlOrName string) error
}

type ViewerService struct {
	log       *slog.Logger
	guides    repository.GuideRepository
	responses repository.ResponseRepository
	media     MediaUploader
}

func NewViewerService(
	log *slog.Logger,
	guides repository.GuideRepository,
	responses repository.ResponseRepository,
	media MediaUploader,
) *ViewerService {
	return &ViewerService{
		log:       log,
		guides:    guides,
		responses: responses,
		media:     media,
	}
}

// Open создает сессию просмотра гайда. Пустой userIdentifier заменяется
// свежесгенерированным: один идентификатор на все ответы сессии.
func (s *ViewerService) Open(ctx context.Context, guideID uuid.UUID, userIdentifier string) (*ViewerSession, error) {
	const op = "viewer_service.Open"

	guide, err := s.guides.GetGuide(ctx, guideID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if userIdentifier == "" {
		userIdentifier = uuid.NewString()
	}

	return &ViewerSession{
		svc:          s,
		log:          s.log,
		guide:        guide,
		userID:       userIdentifier,
		state:        StateNotStarted,
		answers:      map[uuid.UUID]string{},
		files:        map[uuid.UUID]models.UploadedFile{},
		uploadStatus: map[uuid.UUID]UploadStatus{},
		uploadErr:    map[uuid.UUID]string{},
		submitted:    map[uuid.UUID]struct{}{},
	}, nil
}

// ViewerSession ведет прохождение одного гайда одним зрителем:
// навигацию по слайдам, детект завершения и сбор ответов.
type ViewerSession struct {
	mu  sync.Mutex
	svc *ViewerService
	log *slog.Logger

	guide  *models.Guide
	userID string

	state      ViewerState
	slideIndex int

	// Завершение детектится на последнем слайде, но флаг "показано"
	// коммитится только после фактического показа диалога
	completionArmed     bool
	completionShown     bool
	completionStartedAt time.Time

	answers      map[uuid.UUID]string
	files        map[uuid.UUID]models.UploadedFile
	uploadStatus map[uuid.UUID]UploadStatus
	uploadErr    map[uuid.UUID]string
	submitted    map[uuid.UUID]struct{}
}

func (v *ViewerSession) Guide() *models.Guide {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.guide.Clone()
}

func (v *ViewerSession) UserIdentifier() string {
	return v.userID
}

func (v *ViewerSession) State() ViewerState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

func (v *ViewerSession) SlideIndex() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.slideIndex
}

// Progress возвращает процент пройденных слайдов
func (v *ViewerSession) Progress() int {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state == StateNotStarted || len(v.guide.Slides) == 0 {
		return 0
	}
	return (v.slideIndex + 1) * 100 / len(v.guide.Slides)
}

// Start переводит сессию из not-started на первый слайд
func (v *ViewerSession) Start() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state != StateNotStarted {
		return
	}
	v.state = StateInProgress
	v.slideIndex = 0
	v.armCompletionLocked()
}

func (v *ViewerSession) Next() error {
	return v.GoTo(v.SlideIndex() + 1)
}

func (v *ViewerSession) Prev() error {
	return v.GoTo(v.SlideIndex() - 1)
}

// GoTo переходит на слайд по индексу, зажимая его в [0, last]
func (v *ViewerSession) GoTo(index int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state == StateNotStarted {
		return ErrNotStarted
	}

	last := len(v.guide.Slides) - 1
	if index < 0 {
		index = 0
	}
	if index > last {
		index = last
	}

	v.slideIndex = index
	v.armCompletionLocked()
	return nil
}

func (v *ViewerSession) armCompletionLocked() {
	if v.slideIndex == len(v.guide.Slides)-1 {
		v.state = StateCompleted
		if !v.completionArmed {
			v.completionArmed = true
			v.completionStartedAt = time.Now()
		}
	} else if v.state == StateCompleted {
		v.state = StateInProgress
	}
}

// CompletionProgress — значение анимации завершения: после выхода на
// последний слайд растет от 0 до 100 за CompletionAnimationDuration
func (v *ViewerSession) CompletionProgress() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.completionProgressLocked()
}

func (v *ViewerSession) completionProgressLocked() int {
	if !v.completionArmed {
		return 0
	}

	elapsed := time.Since(v.completionStartedAt)
	if elapsed >= CompletionAnimationDuration {
		return 100
	}
	return int(elapsed * 100 / CompletionAnimationDuration)
}

// ShowCompletionDialog сообщает, пора ли показать диалог завершения:
// анимация прогресса дошла до 100, а диалог еще не показывался.
// Возвращает true ровно один раз за визит: флаг "показано" коммитится
// здесь, после показа, а не в момент детекта завершения.
func (v *ViewerSession) ShowCompletionDialog() bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.completionArmed || v.completionShown {
		return false
	}
	if v.completionProgressLocked() < 100 {
		return false
	}
	v.completionShown = true
	return true
}

// StartOver возвращает зрителя на первый слайд и сбрасывает флаги
// завершения вместе с анимацией прогресса. Отправленные ответы при
// этом остаются отправленными.
func (v *ViewerSession) StartOver() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.state = StateInProgress
	v.slideIndex = 0
	v.completionArmed = false
	v.completionShown = false
	v.completionStartedAt = time.Time{}
	v.armCompletionLocked()
}

// SetAnswer накапливает текстовый ответ интерактивного блока
func (v *ViewerSession) SetAnswer(blockID uuid.UUID, answer string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.answers[blockID] = answer
}

func (v *ViewerSession) Answer(blockID uuid.UUID) string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.answers[blockID]
}

func (v *ViewerSession) UploadState(blockID uuid.UUID) (UploadStatus, string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	status, ok := v.uploadStatus[blockID]
	if !ok {
		return UploadIdle, ""
	}
	return status, v.uploadErr[blockID]
}

// AttachFile загружает файл для file-upload блока. Замена файла сперва
// удаляет прежний объект (best-effort: неудача логируется, не фатальна).
func (v *ViewerSession) AttachFile(ctx context.Context, blockID uuid.UUID, file *multipart.FileHeader) (*models.UploadedFile, error) {
	const op = "viewer_service.AttachFile"

	v.mu.Lock()
	previous, hadPrevious := v.files[blockID]
	v.uploadStatus[blockID] = UploadInFlight
	delete(v.uploadErr, blockID)
	v.mu.Unlock()

	if hadPrevious {
		if err := v.svc.media.DeleteFile(ctx, previous.URL); err != nil {
			v.log.Warn("failed to delete replaced file", sl.Err(err),
				slog.String("stored_name", previous.StoredName),
			)
		}
	}

	uploaded, err := v.svc.media.UploadFile(ctx, file)

	v.mu.Lock()
	defer v.mu.Unlock()

	if err != nil {
		v.uploadStatus[blockID] = UploadFailed
		v.uploadErr[blockID] = err.Error()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	v.files[blockID] = *uploaded
	v.uploadStatus[blockID] = UploadSucceeded
	return uploaded, nil
}

// RemoveFile удаляет загруженный файл блока и чистит его состояние.
// Удаление объекта в хранилище best-effort.
func (v *ViewerSession) RemoveFile(ctx context.Context, blockID uuid.UUID) {
	v.mu.Lock()
	file, ok := v.files[blockID]
	delete(v.files, blockID)
	delete(v.uploadStatus, blockID)
	delete(v.uploadErr, blockID)
	v.mu.Unlock()

	if !ok {
		return
	}

	if err := v.svc.media.DeleteFile(ctx, file.URL); err != nil {
		v.log.Warn("failed to delete removed file", sl.Err(err),
			slog.String("stored_name", file.StoredName),
		)
	}
}

func (v *ViewerSession) Submitted(slideID uuid.UUID) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.submitted[slideID]
	return ok
}

// CanSubmit проверяет локальную готовность текущего слайда: на каждый
// интерактивный блок есть непустой ответ или успешно загруженный файл,
// и ни одна загрузка не висит в полете
func (v *ViewerSession) CanSubmit() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.validateCurrentSlideLocked() == nil
}

func (v *ViewerSession) validateCurrentSlideLocked() error {
	slide := &v.guide.Slides[v.slideIndex]

	for _, b := range slide.InteractiveBlocks() {
		if v.uploadStatus[b.ID] == UploadInFlight {
			return ErrUploadInFlight
		}

		switch b.Type {
		case models.BlockInputField:
			if v.answers[b.ID] == "" {
				return ErrMissingResponse
			}
		case models.BlockFileUpload:
			if _, ok := v.files[b.ID]; !ok || v.uploadStatus[b.ID] != UploadSucceeded {
				return ErrMissingResponse
			}
		}
	}

	return nil
}

// SubmitSlide отправляет ответы текущего слайда. Отправка идемпотентна
// на уровне стора (upsert по block_id + user_identifier) и разовая на
// уровне сессии: успешно отправленный слайд отправить повторно нельзя.
func (v *ViewerSession) SubmitSlide(ctx context.Context) error {
	const op = "viewer_service.SubmitSlide"

	v.mu.Lock()

	if v.state == StateNotStarted {
		v.mu.Unlock()
		return ErrNotStarted
	}

	slide := &v.guide.Slides[v.slideIndex]
	if _, done := v.submitted[slide.ID]; done {
		v.mu.Unlock()
		return ErrAlreadySubmitted
	}

	if err := v.validateCurrentSlideLocked(); err != nil {
		v.mu.Unlock()
		return err
	}

	payload := make([]models.UserResponse, 0, len(slide.Blocks))
	for _, b := range slide.InteractiveBlocks() {
		resp := models.UserResponse{
			GuideID:        v.guide.ID,
			SlideID:        slide.ID,
			BlockID:        b.ID,
			UserIdentifier: v.userID,
			Question:       b.Question(),
		}
		switch b.Type {
		case models.BlockInputField:
			answer := v.answers[b.ID]
			resp.Answer = &answer
		case models.BlockFileUpload:
			file := v.files[b.ID]
			resp.FileURL = &file.URL
			resp.FileName = &file.OriginalName
			resp.FileSize = &file.Size
		}
		payload = append(payload, resp)
	}
	slideID := slide.ID
	v.mu.Unlock()

	if len(payload) == 0 {
		return nil
	}

	for _, resp := range payload {
		if _, err := v.svc.responses.UpsertResponse(ctx, resp); err != nil {
			// Локальное состояние не трогаем: зритель может повторить
			v.log.Error("failed to submit response", sl.Err(err),
				slog.String("block_id", resp.BlockID.String()),
			)
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	v.mu.Lock()
	v.submitted[slideID] = struct{}{}
	v.mu.Unlock()

	return nil
}
