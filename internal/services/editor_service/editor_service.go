package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"guidebolt/internal/domain/models"
	"guidebolt/internal/lib/logger/sl"
	"guidebolt/internal/lib/sanitize"
	"guidebolt/internal/lib/styles"
	"guidebolt/internal/metrics"
	"guidebolt/internal/repository"
	"guidebolt/internal/storage"

	"github.com/bep/debounce"
	"github.com/google/uuid"
)

const (
	DefaultAutosaveDebounce = time.Second
	DefaultDraftTTL         = 7 * 24 * time.Hour
)

type DragPosition string

const (
	DragAbove DragPosition = "above"
	DragBelow DragPosition = "below"
)

type EditorService struct {
	log      *slog.Logger
	guides   repository.GuideRepository
	drafts   repository.DraftRepository
	styles   *styles.Resolver
	debounce time.Duration
	draftTTL time.Duration
}

func NewEditorService(
	log *slog.Logger,
	guides repository.GuideRepository,
	drafts repository.DraftRepository,
	debounceAfter time.Duration,
	draftTTL time.Duration,
) *EditorService {
	if debounceAfter <= 0 {
		debounceAfter = DefaultAutosaveDebounce
	}
	if draftTTL <= 0 {
		draftTTL = DefaultDraftTTL
	}

	return &EditorService{
		log:      log,
		guides:   guides,
		drafts:   drafts,
		styles:   styles.NewResolver(log),
		debounce: debounceAfter,
		draftTTL: draftTTL,
	}
}

// Open монтирует сессию редактора. Если для гайда существует черновик,
// рабочий документ собирается из черновика (черновик всегда побеждает)
// и сессия сразу помечается как несохраненная.
func (s *EditorService) Open(ctx context.Context, guideID uuid.UUID) (*EditorSession, error) {
	const op = "editor_service.Open"

	log := s.log.With(
		slog.String("op", op),
		slog.String("guide_id", guideID.String()),
	)

	guide, err := s.guides.GetGuide(ctx, guideID)
	if err != nil {
		if !errors.Is(err, storage.ErrGuideNotFound) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		// Персистентного документа еще нет — начинаем с дефолтного
		guide = models.NewDefaultGuide(guideID, uuid.Nil, "Untitled Guide")
		guide.Renumber()
	}

	session := &EditorSession{
		svc:         s,
		log:         s.log,
		guide:       guide,
		activeSlide: 0,
		debounced:   debounce.New(s.debounce),
	}

	draft, err := s.drafts.GetDraft(ctx, guideID)
	switch {
	case err == nil:
		session.guide = draft.Apply(guide)
		session.unsaved = true
		log.Info("editor mounted from draft",
			slog.Time("draft_modified", draft.LastModified),
		)
	case errors.Is(err, storage.ErrorNoSuchKey):
		log.Info("editor mounted from persisted document")
	default:
		// Недоступный стор черновиков не блокирует редактор
		log.Warn("failed to read editor draft", sl.Err(err))
	}

	return session, nil
}

// BlockPatch описывает частичное обновление блока
type BlockPatch struct {
	Content      *string
	Type         *models.BlockType
	LeftContent  *string
	RightContent *string
	LeftType     *models.BlockType
	RightType    *models.BlockType
}

// EditorSession владеет рабочим документом одного гайда. Все мутации
// сериализуются мьютексом, контейнеры заменяются целиком (copy-on-write),
// чтобы автосохранение надежно видело каждое изменение.
type EditorSession struct {
	mu  sync.Mutex
	svc *EditorService
	log *slog.Logger

	guide       *models.Guide
	activeSlide int
	selected    uuid.UUID
	unsaved     bool

	dragged  uuid.UUID
	dragOver uuid.UUID
	dragPos  DragPosition

	debounced func(func())
}

// Guide возвращает копию рабочего документа
func (e *EditorSession) Guide() *models.Guide {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.guide.Clone()
}

func (e *EditorSession) Unsaved() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.unsaved
}

func (e *EditorSession) ActiveSlide() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.activeSlide
}

func (e *EditorSession) SelectedBlock() uuid.UUID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selected
}

func (e *EditorSession) SetTitle(title string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	g := e.guide.Clone()
	g.Title = title
	e.guide = g
	e.markDirty()
}

func (e *EditorSession) AddTag(tag string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	g := e.guide.Clone()
	if err := g.AddTag(tag); err != nil {
		return err
	}
	e.guide = g
	e.markDirty()
	return nil
}

func (e *EditorSession) RemoveTag(tag string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	g := e.guide.Clone()
	g.RemoveTag(tag)
	e.guide = g
	e.markDirty()
}

// SelectSlide делает слайд активным, индекс зажимается в границы
func (e *EditorSession) SelectSlide(index int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if index < 0 {
		index = 0
	}
	if index > len(e.guide.Slides)-1 {
		index = len(e.guide.Slides) - 1
	}
	e.activeSlide = index
}

// AddSlide добавляет пустой слайд в конец и делает его активным
func (e *EditorSession) AddSlide(title string) uuid.UUID {
	e.mu.Lock()
	defer e.mu.Unlock()

	if title == "" {
		title = fmt.Sprintf("Slide %d", len(e.guide.Slides)+1)
	}

	g := e.guide.Clone()
	slide := models.NewSlide(g.ID, title, len(g.Slides)+1)
	g.Slides = append(g.Slides, slide)
	g.Renumber()

	e.guide = g
	e.activeSlide = len(g.Slides) - 1
	e.markDirty()

	return slide.ID
}

// DeleteSlide удаляет слайд по индексу. Последний слайд удалить нельзя.
func (e *EditorSession) DeleteSlide(index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.guide.Slides) <= 1 {
		return models.ErrLastSlide
	}
	if index < 0 || index >= len(e.guide.Slides) {
		return models.ErrSlideNotFound
	}

	g := e.guide.Clone()
	g.Slides = append(g.Slides[:index], g.Slides[index+1:]...)
	g.Renumber()
	e.guide = g

	// Активный индекс сдвигается так, чтобы остаться валидным
	if index <= e.activeSlide && e.activeSlide > 0 {
		e.activeSlide--
	}

	e.markDirty()
	return nil
}

func (e *EditorSession) UpdateSlideTitle(index int, title string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if index < 0 || index >= len(e.guide.Slides) {
		return models.ErrSlideNotFound
	}

	g := e.guide.Clone()
	g.Slides[index].Title = title
	e.guide = g
	e.markDirty()
	return nil
}

// AddBlock вставляет блок после выделенного (или в конец активного слайда)
// с типовым содержимым и стилями, и выделяет его
func (e *EditorSession) AddBlock(t models.BlockType) (uuid.UUID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !t.Valid() {
		return uuid.Nil, fmt.Errorf("%w: %q", models.ErrUnknownBlockType, t)
	}

	g := e.guide.Clone()
	slide := &g.Slides[e.activeSlide]

	now := time.Now().UTC()
	content := styles.DefaultContent(t)
	block := models.ContentBlock{
		ID:        uuid.New(),
		SlideID:   slide.ID,
		Type:      t,
		Content:   &content,
		Styles:    styles.Defaults(t),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if t == models.BlockTwoColumn {
		left, right := models.BlockParagraph, models.BlockParagraph
		empty := ""
		block.LeftType, block.RightType = &left, &right
		block.LeftContent, block.RightContent = &empty, cloneString(empty)
	}

	insertAt := len(slide.Blocks)
	if e.selected != uuid.Nil {
		for i := range slide.Blocks {
			if slide.Blocks[i].ID == e.selected {
				insertAt = i + 1
				break
			}
		}
	}

	slide.Blocks = append(slide.Blocks[:insertAt], append([]models.ContentBlock{block}, slide.Blocks[insertAt:]...)...)
	g.Renumber()

	e.guide = g
	e.selected = block.ID
	e.markDirty()

	return block.ID, nil
}

// DeleteBlock удаляет блок из любого слайда. Выделение снимается,
// если удален выделенный блок.
func (e *EditorSession) DeleteBlock(blockID uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.deleteBlockLocked(blockID)
}

func (e *EditorSession) deleteBlockLocked(blockID uuid.UUID) error {
	si, bi, ok := e.guide.FindBlock(blockID)
	if !ok {
		return models.ErrBlockNotFound
	}

	g := e.guide.Clone()
	blocks := g.Slides[si].Blocks
	g.Slides[si].Blocks = append(blocks[:bi], blocks[bi+1:]...)
	g.Renumber()
	e.guide = g

	if e.selected == blockID {
		e.selected = uuid.Nil
	}

	e.markDirty()
	return nil
}

// KeyDelete обрабатывает нажатие Delete: удаляет выделенный блок,
// если фокус не находится в текстовом поле и не включен превью-режим
func (e *EditorSession) KeyDelete(editingText, previewMode bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if editingText || previewMode || e.selected == uuid.Nil {
		return nil
	}

	return e.deleteBlockLocked(e.selected)
}

func (e *EditorSession) SelectBlock(blockID uuid.UUID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selected = blockID
}

// UpdateBlock заменяет поля блока по идентификатору. Ссылки embed-блока
// нормализуются к embed-виду, вложенные two-column отклоняются.
func (e *EditorSession) UpdateBlock(blockID uuid.UUID, patch BlockPatch) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	si, bi, ok := e.guide.FindBlock(blockID)
	if !ok {
		return models.ErrBlockNotFound
	}

	g := e.guide.Clone()
	b := &g.Slides[si].Blocks[bi]

	if patch.Type != nil {
		if !patch.Type.Valid() {
			return fmt.Errorf("%w: %q", models.ErrUnknownBlockType, *patch.Type)
		}
		b.Type = *patch.Type
	}
	if patch.Content != nil {
		content := *patch.Content
		if b.Type == models.BlockEmbed {
			content = sanitize.ConvertToEmbedURL(content)
		}
		b.Content = &content
	}
	if patch.LeftContent != nil {
		b.LeftContent = cloneString(*patch.LeftContent)
	}
	if patch.RightContent != nil {
		b.RightContent = cloneString(*patch.RightContent)
	}
	if patch.LeftType != nil {
		b.LeftType = patch.LeftType
	}
	if patch.RightType != nil {
		b.RightType = patch.RightType
	}

	if err := b.ValidateColumns(); err != nil {
		return err
	}

	b.UpdatedAt = time.Now().UTC()
	e.guide = g
	e.markDirty()
	return nil
}

// UpdateBlockStyle выставляет одно значение стиля. Непригодные значения
// отбрасываются с диагностикой, операция при этом не падает.
func (e *EditorSession) UpdateBlockStyle(blockID uuid.UUID, key string, value any) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	si, bi, ok := e.guide.FindBlock(blockID)
	if !ok {
		return models.ErrBlockNotFound
	}

	safe, usable := e.svc.styles.Coerce(key, value)
	if !usable {
		return nil
	}

	g := e.guide.Clone()
	b := &g.Slides[si].Blocks[bi]
	if b.Styles == nil {
		b.Styles = models.StyleMap{}
	}
	b.Styles[key] = safe
	b.UpdatedAt = time.Now().UTC()

	e.guide = g
	e.markDirty()
	return nil
}

// ResetBlockStyles заменяет карту стилей блока типовой. Пользовательские
// переопределения при этом теряются безвозвратно.
func (e *EditorSession) ResetBlockStyles(blockID uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	si, bi, ok := e.guide.FindBlock(blockID)
	if !ok {
		return models.ErrBlockNotFound
	}

	g := e.guide.Clone()
	b := &g.Slides[si].Blocks[bi]
	b.Styles = styles.Defaults(b.Type)
	b.UpdatedAt = time.Now().UTC()

	e.guide = g
	e.markDirty()
	return nil
}

// DragStart фиксирует перетаскиваемый блок
func (e *EditorSession) DragStart(blockID uuid.UUID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dragged = blockID
}

// DragOver вычисляет положение указателя относительно середины блока-кандидата
func (e *EditorSession) DragOver(blockID uuid.UUID, pointerY, targetTop, targetHeight float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.dragged == uuid.Nil || e.dragged == blockID {
		e.dragOver = uuid.Nil
		e.dragPos = ""
		return
	}

	midY := targetTop + targetHeight/2
	if pointerY < midY {
		e.dragPos = DragAbove
	} else {
		e.dragPos = DragBelow
	}
	e.dragOver = blockID
}

func (e *EditorSession) DragLeave() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dragOver = uuid.Nil
	e.dragPos = ""
}

// DragState возвращает текущий блок-кандидат и положение индикатора вставки
func (e *EditorSession) DragState() (over uuid.UUID, pos DragPosition) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dragOver, e.dragPos
}

// Drop завершает перетаскивание: блок извлекается с прежнего места и
// вставляется по таблице разрешения (позиция above/below + направление
// перетаскивания). Сброс на себя — no-op. Перетаскивание между слайдами
// не поддерживается. Перетащенный блок остается выделенным.
func (e *EditorSession) Drop(targetID uuid.UUID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	defer e.resetDragLocked()

	if e.dragged == uuid.Nil || e.dragged == targetID {
		return
	}

	g := e.guide.Clone()
	blocks := g.Slides[e.activeSlide].Blocks

	draggedIndex, targetIndex := -1, -1
	for i := range blocks {
		switch blocks[i].ID {
		case e.dragged:
			draggedIndex = i
		case targetID:
			targetIndex = i
		}
	}
	if draggedIndex == -1 || targetIndex == -1 {
		return
	}

	draggedItem := blocks[draggedIndex]
	rest := append(append([]models.ContentBlock{}, blocks[:draggedIndex]...), blocks[draggedIndex+1:]...)

	insertIndex := targetIndex
	if e.dragPos == DragBelow && draggedIndex > targetIndex {
		insertIndex = targetIndex + 1
	}

	reordered := append(rest[:insertIndex], append([]models.ContentBlock{draggedItem}, rest[insertIndex:]...)...)
	g.Slides[e.activeSlide].Blocks = reordered
	g.Renumber()

	e.guide = g
	e.selected = draggedItem.ID
	e.markDirty()
}

// DragEnd сбрасывает состояние перетаскивания независимо от исхода жеста
func (e *EditorSession) DragEnd() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetDragLocked()
}

func (e *EditorSession) resetDragLocked() {
	e.dragged = uuid.Nil
	e.dragOver = uuid.Nil
	e.dragPos = ""
}

// markDirty помечает документ несохраненным и планирует отложенную запись
// черновика. Записи внутри окна тишины коалесцируются: в стор попадает
// только последний снимок.
func (e *EditorSession) markDirty() {
	e.unsaved = true
	e.debounced(e.autosave)
}

func (e *EditorSession) autosave() {
	e.mu.Lock()
	if !e.unsaved {
		e.mu.Unlock()
		return
	}
	snapshot := models.SnapshotDraft(e.guide)
	e.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := e.svc.drafts.SaveDraft(ctx, *snapshot, e.svc.draftTTL); err != nil {
		// Неудавшееся автосохранение не трогает рабочий документ
		e.log.Warn("editor draft autosave failed", sl.Err(err),
			slog.String("guide_id", snapshot.GuideID.String()),
		)
		return
	}

	metrics.DraftAutosavesTotal.Inc()
}

// Save персиcтит рабочий документ: позиции уплотняются, осиротевшие
// слайды и блоки вычищаются стором, черновик удаляется
func (e *EditorSession) Save(ctx context.Context) error {
	const op = "editor_service.Save"

	e.mu.Lock()
	defer e.mu.Unlock()

	g := e.guide.Clone()
	g.Renumber()

	if err := g.Validate(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := e.svc.guides.SaveGuide(ctx, *g); err != nil {
		// Рабочее состояние сохраняется, пользователь может повторить
		return fmt.Errorf("%s: %w", op, err)
	}

	e.guide = g
	e.unsaved = false

	if err := e.svc.drafts.DeleteDraft(ctx, g.ID); err != nil {
		e.log.Warn("failed to delete editor draft after save", sl.Err(err))
	}

	return nil
}

// Leave обрабатывает уход из редактора. При несохраненных изменениях
// без подтверждения уход отклоняется. Подтвержденный уход не трогает
// несохраненный черновик — он будет восстановлен при следующем входе.
func (e *EditorSession) Leave(ctx context.Context, confirmed bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.unsaved && !confirmed {
		return false
	}

	if !e.unsaved {
		if err := e.svc.drafts.DeleteDraft(ctx, e.guide.ID); err != nil {
			e.log.Warn("failed to clear editor draft on leave", sl.Err(err))
		}
	}

	return true
}

func cloneString(s string) *string {
	return &s
}
