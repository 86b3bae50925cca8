package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

type BlockType string

const (
	BlockHeading    BlockType = "heading"
	BlockParagraph  BlockType = "paragraph"
	BlockImage      BlockType = "image"
	BlockVideo      BlockType = "video"
	BlockGif        BlockType = "gif"
	BlockEmbed      BlockType = "embed"
	BlockTwoColumn  BlockType = "two-column"
	BlockInputField BlockType = "input-field"
	BlockFileUpload BlockType = "file-upload"
)

type GuideStatus string

const (
	StatusDraft     GuideStatus = "draft"
	StatusPublished GuideStatus = "published"
)

const MaxTags = 10

var (
	ErrLastSlide        = errors.New("guide must keep at least one slide")
	ErrNestedTwoColumn  = errors.New("two-column blocks cannot nest two-column sub-blocks")
	ErrUnknownBlockType = errors.New("unknown block type")
	ErrSlideNotFound    = errors.New("slide not found")
	ErrBlockNotFound    = errors.New("block not found")
	ErrTagLimit         = errors.New("guide cannot carry more than 10 tags")
	ErrDuplicateTag     = errors.New("tag already present")
)

// StyleMap хранит визуальные настройки блока в JSONB.
// Значения всегда скалярные (string, число, bool) — см. styles.Coerce.
type StyleMap map[string]any

func (m StyleMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *StyleMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("unsupported styles value of type %T", value)
		}
		b = []byte(s)
	}
	return json.Unmarshal(b, m)
}

// Clone возвращает независимую копию карты стилей.
func (m StyleMap) Clone() StyleMap {
	if m == nil {
		return nil
	}
	out := make(StyleMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ContentBlock представляет один типизированный блок внутри слайда
type ContentBlock struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	SlideID      uuid.UUID  `json:"slide_id" db:"slide_id"`
	Type         BlockType  `json:"type" db:"type"`
	Content      *string    `json:"content" db:"content"`
	LeftContent  *string    `json:"left_content,omitempty" db:"left_content"`
	RightContent *string    `json:"right_content,omitempty" db:"right_content"`
	LeftType     *BlockType `json:"left_type,omitempty" db:"left_type"`
	RightType    *BlockType `json:"right_type,omitempty" db:"right_type"`
	Styles       StyleMap   `json:"styles" db:"styles"`
	Position     int        `json:"position" db:"position"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// Slide представляет один слайд гайда с упорядоченным списком блоков
type Slide struct {
	ID        uuid.UUID      `json:"id" db:"id"`
	GuideID   uuid.UUID      `json:"guide_id" db:"guide_id"`
	Title     string         `json:"title" db:"title"`
	Position  int            `json:"position" db:"position"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" db:"updated_at"`
	Blocks    []ContentBlock `json:"blocks"`
}

// Guide представляет многослайдовый гайд целиком
type Guide struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	UserID      uuid.UUID   `json:"user_id" db:"user_id"`
	Title       string      `json:"title" db:"title"`
	Description string      `json:"description" db:"description"`
	Type        string      `json:"type" db:"type"`
	Tags        []string    `json:"tags" db:"tags"`
	Status      GuideStatus `json:"status" db:"status"`
	CustomURL   *string     `json:"custom_url,omitempty" db:"custom_url"`
	Views       int         `json:"views" db:"views"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
	Slides      []Slide     `json:"slides"`
}

// GuideSummary элемент списка гайдов: сам гайд плюс количество слайдов
type GuideSummary struct {
	Guide
	SlideCount int `json:"slide_count" db:"slide_count"`
}

func (t BlockType) Valid() bool {
	switch t {
	case BlockHeading, BlockParagraph, BlockImage, BlockVideo, BlockGif,
		BlockEmbed, BlockTwoColumn, BlockInputField, BlockFileUpload:
		return true
	}
	return false
}

// Interactive сообщает, собирает ли блок ответ зрителя
func (t BlockType) Interactive() bool {
	return t == BlockInputField || t == BlockFileUpload
}

// ColumnCompatible сообщает, может ли тип жить внутри колонки two-column
func (t BlockType) ColumnCompatible() bool {
	return t.Valid() && t != BlockTwoColumn
}

func (b *ContentBlock) Interactive() bool {
	return b.Type.Interactive()
}

// Question возвращает текст вопроса интерактивного блока
func (b *ContentBlock) Question() string {
	if b.Content != nil && *b.Content != "" {
		return *b.Content
	}
	if b.Type == BlockFileUpload {
		return "File upload"
	}
	return "Question"
}

// ValidateColumns проверяет запрет на вложенные two-column подблоки
func (b *ContentBlock) ValidateColumns() error {
	if b.Type != BlockTwoColumn {
		return nil
	}
	for _, sub := range []*BlockType{b.LeftType, b.RightType} {
		if sub == nil {
			continue
		}
		if !sub.ColumnCompatible() {
			return ErrNestedTwoColumn
		}
	}
	return nil
}

func (b *ContentBlock) Clone() ContentBlock {
	out := *b
	out.Content = cloneStringPtr(b.Content)
	out.LeftContent = cloneStringPtr(b.LeftContent)
	out.RightContent = cloneStringPtr(b.RightContent)
	out.LeftType = cloneTypePtr(b.LeftType)
	out.RightType = cloneTypePtr(b.RightType)
	out.Styles = b.Styles.Clone()
	return out
}

func (s *Slide) Clone() Slide {
	out := *s
	out.Blocks = make([]ContentBlock, len(s.Blocks))
	for i := range s.Blocks {
		out.Blocks[i] = s.Blocks[i].Clone()
	}
	return out
}

func (g *Guide) Clone() *Guide {
	out := *g
	out.Tags = append([]string(nil), g.Tags...)
	out.CustomURL = cloneStringPtr(g.CustomURL)
	out.Slides = make([]Slide, len(g.Slides))
	for i := range g.Slides {
		out.Slides[i] = g.Slides[i].Clone()
	}
	return &out
}

// SlideAt возвращает слайд по индексу (0-based)
func (g *Guide) SlideAt(index int) (*Slide, bool) {
	if index < 0 || index >= len(g.Slides) {
		return nil, false
	}
	return &g.Slides[index], true
}

// FindBlock ищет блок по идентификатору во всех слайдах
func (g *Guide) FindBlock(blockID uuid.UUID) (slideIndex, blockIndex int, ok bool) {
	for si := range g.Slides {
		for bi := range g.Slides[si].Blocks {
			if g.Slides[si].Blocks[bi].ID == blockID {
				return si, bi, true
			}
		}
	}
	return 0, 0, false
}

// Renumber выставляет плотные позиции 1..n слайдам и блокам.
// Вызывается при каждом сохранении и после структурных мутаций.
func (g *Guide) Renumber() {
	for si := range g.Slides {
		g.Slides[si].Position = si + 1
		g.Slides[si].GuideID = g.ID
		for bi := range g.Slides[si].Blocks {
			g.Slides[si].Blocks[bi].Position = bi + 1
			g.Slides[si].Blocks[bi].SlideID = g.Slides[si].ID
		}
	}
}

// AddTag добавляет тег с сохранением порядка. Максимум 10, без дублей,
// сравнение регистрозависимое.
func (g *Guide) AddTag(tag string) error {
	if len(g.Tags) >= MaxTags {
		return ErrTagLimit
	}
	for _, t := range g.Tags {
		if t == tag {
			return ErrDuplicateTag
		}
	}
	g.Tags = append(g.Tags, tag)
	return nil
}

func (g *Guide) RemoveTag(tag string) {
	out := g.Tags[:0]
	for _, t := range g.Tags {
		if t != tag {
			out = append(out, t)
		}
	}
	g.Tags = out
}

// InteractiveBlocks возвращает интерактивные блоки слайда в порядке позиций
func (s *Slide) InteractiveBlocks() []ContentBlock {
	var out []ContentBlock
	for _, b := range s.Blocks {
		if b.Interactive() {
			out = append(out, b)
		}
	}
	return out
}

func (g *Guide) Validate() error {
	if err := validation.ValidateStruct(g,
		validation.Field(&g.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&g.Type, validation.Required, validation.Length(1, 50)),
		validation.Field(&g.Status, validation.In(StatusDraft, StatusPublished)),
		validation.Field(&g.Tags, validation.Length(0, MaxTags)),
	); err != nil {
		return err
	}
	if len(g.Slides) == 0 {
		return ErrLastSlide
	}
	for si := range g.Slides {
		for bi := range g.Slides[si].Blocks {
			b := &g.Slides[si].Blocks[bi]
			if !b.Type.Valid() {
				return fmt.Errorf("%w: %q", ErrUnknownBlockType, b.Type)
			}
			if err := b.ValidateColumns(); err != nil {
				return err
			}
		}
	}
	return nil
}

// NewSlide создает пустой слайд с сгенерированным идентификатором
func NewSlide(guideID uuid.UUID, title string, position int) Slide {
	now := time.Now().UTC()
	return Slide{
		ID:        uuid.New(),
		GuideID:   guideID,
		Title:     title,
		Position:  position,
		CreatedAt: now,
		UpdatedAt: now,
		Blocks:    []ContentBlock{},
	}
}

// NewDefaultGuide строит документ по умолчанию: один слайд "Introduction"
// с приветственным заголовком и абзацем.
func NewDefaultGuide(id, userID uuid.UUID, title string) *Guide {
	now := time.Now().UTC()
	slide := NewSlide(id, "Introduction", 1)

	heading := "Welcome to Your Guide"
	paragraph := "This is your first slide. Start editing to create amazing content!"

	slide.Blocks = []ContentBlock{
		{
			ID:        uuid.New(),
			SlideID:   slide.ID,
			Type:      BlockHeading,
			Content:   &heading,
			Styles:    StyleMap{"fontSize": 32, "color": "#1f2937", "textAlign": "center"},
			Position:  1,
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:        uuid.New(),
			SlideID:   slide.ID,
			Type:      BlockParagraph,
			Content:   &paragraph,
			Styles:    StyleMap{"fontSize": 16, "color": "#6b7280", "textAlign": "center"},
			Position:  2,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	return &Guide{
		ID:        id,
		UserID:    userID,
		Title:     title,
		Type:      "Tutorial",
		Tags:      []string{},
		Status:    StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
		Slides:    []Slide{slide},
	}
}

func cloneStringPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTypePtr(t *BlockType) *BlockType {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
