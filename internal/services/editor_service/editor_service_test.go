package services_test

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"guidebolt/internal/domain/models"
	services "guidebolt/internal/services/editor_service"
	"guidebolt/internal/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockGuideRepository struct {
	mock.Mock
}

func (m *MockGuideRepository) CreateGuide(ctx context.Context, guide models.Guide) (uuid.UUID, error) {
	args := m.Called(ctx, guide)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockGuideRepository) SaveGuide(ctx context.Context, guide models.Guide) error {
	args := m.Called(ctx, guide)
	return args.Error(0)
}

func (m *MockGuideRepository) GetGuide(ctx context.Context, guideID uuid.UUID) (*models.Guide, error) {
	args := m.Called(ctx, guideID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Guide), args.Error(1)
}

func (m *MockGuideRepository) GetGuideByCustomURL(ctx context.Context, customURL string) (*models.Guide, error) {
	args := m.Called(ctx, customURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Guide), args.Error(1)
}

func (m *MockGuideRepository) GetAllGuides(ctx context.Context, userID uuid.UUID) ([]models.GuideSummary, error) {
	args := m.Called(ctx, userID)
	return nil, args.Error(1)
}

func (m *MockGuideRepository) DeleteGuide(ctx context.Context, guideID uuid.UUID) error {
	args := m.Called(ctx, guideID)
	return args.Error(0)
}

func (m *MockGuideRepository) UpdateGuideFields(ctx context.Context, guideID uuid.UUID, updates map[string]interface{}) error {
	args := m.Called(ctx, guideID, updates)
	return args.Error(0)
}

func (m *MockGuideRepository) IncrementViews(ctx context.Context, guideID uuid.UUID) (int64, error) {
	args := m.Called(ctx, guideID)
	return args.Get(0).(int64), args.Error(1)
}

// RecordingDraftRepo потокобезопасно считает записи черновика
type RecordingDraftRepo struct {
	mu      sync.Mutex
	saves   int
	deletes int
	drafts  map[uuid.UUID]*models.EditorDraft
}

func NewRecordingDraftRepo() *RecordingDraftRepo {
	return &RecordingDraftRepo{drafts: map[uuid.UUID]*models.EditorDraft{}}
}

func (r *RecordingDraftRepo) SaveDraft(_ context.Context, draft models.EditorDraft, _ time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	r.drafts[draft.GuideID] = &draft
	return nil
}

func (r *RecordingDraftRepo) GetDraft(_ context.Context, guideID uuid.UUID) (*models.EditorDraft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.drafts[guideID]
	if !ok {
		return nil, storage.ErrorNoSuchKey
	}
	return d, nil
}

func (r *RecordingDraftRepo) DeleteDraft(_ context.Context, guideID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deletes++
	delete(r.drafts, guideID)
	return nil
}

func (r *RecordingDraftRepo) Saves() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

func (r *RecordingDraftRepo) Has(guideID uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.drafts[guideID]
	return ok
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{}))
}

func threeBlockGuide(t *testing.T) *models.Guide {
	t.Helper()

	guide := models.NewDefaultGuide(uuid.New(), uuid.New(), "Reorder")
	a, b, c := "A", "B", "C"
	guide.Slides[0].Blocks = []models.ContentBlock{
		{ID: uuid.New(), Type: models.BlockParagraph, Content: &a},
		{ID: uuid.New(), Type: models.BlockParagraph, Content: &b},
		{ID: uuid.New(), Type: models.BlockParagraph, Content: &c},
	}
	guide.Renumber()
	return guide
}

func openSession(t *testing.T, guide *models.Guide, drafts *RecordingDraftRepo, debounceAfter time.Duration) (*services.EditorSession, *MockGuideRepository) {
	t.Helper()

	repo := new(MockGuideRepository)
	repo.On("GetGuide", mock.Anything, guide.ID).Return(guide, nil).Once()

	svc := services.NewEditorService(testLogger(), repo, drafts, debounceAfter, time.Hour)
	session, err := svc.Open(context.Background(), guide.ID)
	require.NoError(t, err)

	return session, repo
}

func contents(g *models.Guide, slide int) []string {
	out := make([]string, 0, len(g.Slides[slide].Blocks))
	for _, b := range g.Slides[slide].Blocks {
		out = append(out, *b.Content)
	}
	return out
}

func TestDrop_ReorderBelow(t *testing.T) {
	guide := threeBlockGuide(t)
	session, _ := openSession(t, guide, NewRecordingDraftRepo(), time.Hour)

	blocks := guide.Slides[0].Blocks
	session.DragStart(blocks[0].ID)
	// Указатель в нижней половине блока B
	session.DragOver(blocks[1].ID, 90, 50, 60)
	session.Drop(blocks[1].ID)

	assert.Equal(t, []string{"B", "A", "C"}, contents(session.Guide(), 0))
	assert.Equal(t, blocks[0].ID, session.SelectedBlock())
}

func TestDrop_ReorderAbove(t *testing.T) {
	guide := threeBlockGuide(t)
	session, _ := openSession(t, guide, NewRecordingDraftRepo(), time.Hour)

	blocks := guide.Slides[0].Blocks
	session.DragStart(blocks[2].ID)
	// Указатель в верхней половине блока A
	session.DragOver(blocks[0].ID, 10, 0, 60)
	session.Drop(blocks[0].ID)

	assert.Equal(t, []string{"C", "A", "B"}, contents(session.Guide(), 0))
}

func TestDrop_OnSelfIsNoop(t *testing.T) {
	guide := threeBlockGuide(t)
	session, _ := openSession(t, guide, NewRecordingDraftRepo(), time.Hour)

	blocks := guide.Slides[0].Blocks
	session.DragStart(blocks[1].ID)
	session.DragOver(blocks[1].ID, 90, 50, 60)
	session.Drop(blocks[1].ID)

	assert.Equal(t, []string{"A", "B", "C"}, contents(session.Guide(), 0))
	assert.False(t, session.Unsaved())

	over, pos := session.DragState()
	assert.Equal(t, uuid.Nil, over)
	assert.Equal(t, services.DragPosition(""), pos)
}

func TestDragEnd_ClearsStateAtomically(t *testing.T) {
	guide := threeBlockGuide(t)
	session, _ := openSession(t, guide, NewRecordingDraftRepo(), time.Hour)

	blocks := guide.Slides[0].Blocks
	session.DragStart(blocks[0].ID)
	session.DragOver(blocks[2].ID, 200, 120, 60)
	session.DragEnd()

	over, pos := session.DragState()
	assert.Equal(t, uuid.Nil, over)
	assert.Equal(t, services.DragPosition(""), pos)

	// После сброса жеста drop ничего не переставляет
	session.Drop(blocks[2].ID)
	assert.Equal(t, []string{"A", "B", "C"}, contents(session.Guide(), 0))
}

func TestOpen_DraftWins(t *testing.T) {
	guide := threeBlockGuide(t)
	drafts := NewRecordingDraftRepo()

	draft := models.SnapshotDraft(guide)
	draft.Title = "Draft title wins"
	require.NoError(t, drafts.SaveDraft(context.Background(), *draft, time.Hour))

	session, _ := openSession(t, guide, drafts, time.Hour)

	assert.Equal(t, "Draft title wins", session.Guide().Title)
	assert.True(t, session.Unsaved())
}

func TestOpen_NoDraftMountsPersisted(t *testing.T) {
	guide := threeBlockGuide(t)
	session, _ := openSession(t, guide, NewRecordingDraftRepo(), time.Hour)

	assert.Equal(t, "Reorder", session.Guide().Title)
	assert.False(t, session.Unsaved())
}

func TestSave_RenumbersAndClearsDraft(t *testing.T) {
	guide := threeBlockGuide(t)
	drafts := NewRecordingDraftRepo()
	session, repo := openSession(t, guide, drafts, 10*time.Millisecond)

	session.SetTitle("Edited")
	time.Sleep(50 * time.Millisecond)
	require.True(t, drafts.Has(guide.ID))

	repo.On("SaveGuide", mock.Anything, mock.MatchedBy(func(g models.Guide) bool {
		return g.Title == "Edited" && g.Slides[0].Blocks[0].Position == 1
	})).Return(nil).Once()

	require.NoError(t, session.Save(context.Background()))

	assert.False(t, session.Unsaved())
	assert.False(t, drafts.Has(guide.ID))
	repo.AssertExpectations(t)
}

func TestAutosave_CoalescesWithinQuiescenceWindow(t *testing.T) {
	guide := threeBlockGuide(t)
	drafts := NewRecordingDraftRepo()
	session, _ := openSession(t, guide, drafts, 30*time.Millisecond)

	session.SetTitle("One")
	session.SetTitle("Two")
	session.SetTitle("Three")

	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, 1, drafts.Saves())
	d, err := drafts.GetDraft(context.Background(), guide.ID)
	require.NoError(t, err)
	assert.Equal(t, "Three", d.Title)
}

func TestLeave_UnsavedRequiresConfirmation(t *testing.T) {
	guide := threeBlockGuide(t)
	drafts := NewRecordingDraftRepo()
	session, _ := openSession(t, guide, drafts, 10*time.Millisecond)

	session.SetTitle("Unsaved edit")
	time.Sleep(50 * time.Millisecond)

	assert.False(t, session.Leave(context.Background(), false))

	// Подтвержденный уход сохраняет черновик для восстановления
	assert.True(t, session.Leave(context.Background(), true))
	assert.True(t, drafts.Has(guide.ID))
}

func TestDeleteSlide_LastSlideRefused(t *testing.T) {
	guide := threeBlockGuide(t)
	session, _ := openSession(t, guide, NewRecordingDraftRepo(), time.Hour)

	assert.ErrorIs(t, session.DeleteSlide(0), models.ErrLastSlide)
}

func TestDeleteSlide_ActiveIndexStaysValid(t *testing.T) {
	guide := threeBlockGuide(t)
	session, _ := openSession(t, guide, NewRecordingDraftRepo(), time.Hour)

	session.AddSlide("Second")
	session.AddSlide("Third")
	assert.Equal(t, 2, session.ActiveSlide())

	require.NoError(t, session.DeleteSlide(1))
	assert.Equal(t, 1, session.ActiveSlide())

	g := session.Guide()
	require.Len(t, g.Slides, 2)
	assert.Equal(t, "Third", g.Slides[1].Title)
	assert.Equal(t, 2, g.Slides[1].Position)
}

func TestAddBlock_InsertsAfterSelection(t *testing.T) {
	guide := threeBlockGuide(t)
	session, _ := openSession(t, guide, NewRecordingDraftRepo(), time.Hour)

	blocks := guide.Slides[0].Blocks
	session.SelectBlock(blocks[0].ID)

	id, err := session.AddBlock(models.BlockImage)
	require.NoError(t, err)

	g := session.Guide()
	require.Len(t, g.Slides[0].Blocks, 4)
	assert.Equal(t, id, g.Slides[0].Blocks[1].ID)
	assert.Equal(t, models.BlockImage, g.Slides[0].Blocks[1].Type)
	assert.Equal(t, 8, g.Slides[0].Blocks[1].Styles["borderRadius"])
	assert.Equal(t, id, session.SelectedBlock())

	// Позиции остаются плотными
	for i, b := range g.Slides[0].Blocks {
		assert.Equal(t, i+1, b.Position)
	}
}

func TestDeleteBlock_ClearsSelection(t *testing.T) {
	guide := threeBlockGuide(t)
	session, _ := openSession(t, guide, NewRecordingDraftRepo(), time.Hour)

	blocks := guide.Slides[0].Blocks
	session.SelectBlock(blocks[1].ID)

	require.NoError(t, session.DeleteBlock(blocks[1].ID))
	assert.Equal(t, uuid.Nil, session.SelectedBlock())
	assert.Equal(t, []string{"A", "C"}, contents(session.Guide(), 0))
}

func TestKeyDelete(t *testing.T) {
	guide := threeBlockGuide(t)
	session, _ := openSession(t, guide, NewRecordingDraftRepo(), time.Hour)

	blocks := guide.Slides[0].Blocks
	session.SelectBlock(blocks[0].ID)

	// Внутри текстового поля Delete не трогает блок
	require.NoError(t, session.KeyDelete(true, false))
	assert.Len(t, session.Guide().Slides[0].Blocks, 3)

	// В превью-режиме тоже
	require.NoError(t, session.KeyDelete(false, true))
	assert.Len(t, session.Guide().Slides[0].Blocks, 3)

	require.NoError(t, session.KeyDelete(false, false))
	assert.Len(t, session.Guide().Slides[0].Blocks, 2)
}

func TestUpdateBlock_EmbedURLNormalized(t *testing.T) {
	guide := threeBlockGuide(t)
	session, _ := openSession(t, guide, NewRecordingDraftRepo(), time.Hour)

	id, err := session.AddBlock(models.BlockEmbed)
	require.NoError(t, err)

	url := "https://www.youtube.com/watch?v=abc123"
	require.NoError(t, session.UpdateBlock(id, services.BlockPatch{Content: &url}))

	g := session.Guide()
	_, bi, ok := g.FindBlock(id)
	require.True(t, ok)
	assert.Equal(t, "https://www.youtube.com/embed/abc123", *g.Slides[0].Blocks[bi].Content)
}

func TestUpdateBlock_RejectsNestedTwoColumn(t *testing.T) {
	guide := threeBlockGuide(t)
	session, _ := openSession(t, guide, NewRecordingDraftRepo(), time.Hour)

	id, err := session.AddBlock(models.BlockTwoColumn)
	require.NoError(t, err)

	nested := models.BlockTwoColumn
	err = session.UpdateBlock(id, services.BlockPatch{LeftType: &nested})
	assert.ErrorIs(t, err, models.ErrNestedTwoColumn)
}

func TestUpdateBlockStyle_CoercesValues(t *testing.T) {
	guide := threeBlockGuide(t)
	session, _ := openSession(t, guide, NewRecordingDraftRepo(), time.Hour)

	blocks := guide.Slides[0].Blocks

	require.NoError(t, session.UpdateBlockStyle(blocks[0].ID, "fontSize", []any{float64(42)}))
	require.NoError(t, session.UpdateBlockStyle(blocks[0].ID, "margin", map[string]any{}))

	g := session.Guide()
	_, bi, ok := g.FindBlock(blocks[0].ID)
	require.True(t, ok)
	styles := g.Slides[0].Blocks[bi].Styles
	assert.Equal(t, float64(42), styles["fontSize"])
	_, present := styles["margin"]
	assert.False(t, present)
}

func TestResetBlockStyles(t *testing.T) {
	guide := threeBlockGuide(t)
	session, _ := openSession(t, guide, NewRecordingDraftRepo(), time.Hour)

	blocks := guide.Slides[0].Blocks
	require.NoError(t, session.UpdateBlockStyle(blocks[0].ID, "fontSize", 99))
	require.NoError(t, session.ResetBlockStyles(blocks[0].ID))

	g := session.Guide()
	_, bi, ok := g.FindBlock(blocks[0].ID)
	require.True(t, ok)
	assert.Equal(t, 16, g.Slides[0].Blocks[bi].Styles["fontSize"])
}

func TestTags(t *testing.T) {
	guide := threeBlockGuide(t)
	session, _ := openSession(t, guide, NewRecordingDraftRepo(), time.Hour)

	require.NoError(t, session.AddTag("go"))
	assert.ErrorIs(t, session.AddTag("go"), models.ErrDuplicateTag)

	// Регистрозависимое сравнение: "Go" — другой тег
	require.NoError(t, session.AddTag("Go"))

	session.RemoveTag("go")
	assert.Equal(t, []string{"Go"}, session.Guide().Tags)
}
