package models_test

import (
	"testing"

	"guidebolt/internal/domain/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultGuide(t *testing.T) {
	id := uuid.New()
	userID := uuid.New()

	guide := models.NewDefaultGuide(id, userID, "My Guide")

	assert.Equal(t, id, guide.ID)
	assert.Equal(t, models.StatusDraft, guide.Status)
	require.Len(t, guide.Slides, 1)
	assert.Equal(t, "Introduction", guide.Slides[0].Title)

	require.Len(t, guide.Slides[0].Blocks, 2)
	assert.Equal(t, models.BlockHeading, guide.Slides[0].Blocks[0].Type)
	assert.Equal(t, models.BlockParagraph, guide.Slides[0].Blocks[1].Type)
	assert.NoError(t, guide.Validate())
}

func TestRenumber_DensePositions(t *testing.T) {
	guide := models.NewDefaultGuide(uuid.New(), uuid.New(), "G")

	second := models.NewSlide(guide.ID, "Second", 99)
	second.Blocks = append(second.Blocks, models.ContentBlock{ID: uuid.New(), Type: models.BlockParagraph, Position: 7})
	guide.Slides = append(guide.Slides, second)

	guide.Renumber()

	for i, s := range guide.Slides {
		assert.Equal(t, i+1, s.Position)
		assert.Equal(t, guide.ID, s.GuideID)
		for j, b := range s.Blocks {
			assert.Equal(t, j+1, b.Position)
			assert.Equal(t, s.ID, b.SlideID)
		}
	}
}

func TestAddTag_LimitAndDuplicates(t *testing.T) {
	guide := models.NewDefaultGuide(uuid.New(), uuid.New(), "G")

	require.NoError(t, guide.AddTag("golang"))
	assert.ErrorIs(t, guide.AddTag("golang"), models.ErrDuplicateTag)

	// Регистр различается, это другой тег
	require.NoError(t, guide.AddTag("Golang"))

	for i := len(guide.Tags); i < models.MaxTags; i++ {
		require.NoError(t, guide.AddTag(string(rune('a'+i))))
	}
	assert.ErrorIs(t, guide.AddTag("overflow"), models.ErrTagLimit)

	guide.RemoveTag("golang")
	assert.NotContains(t, guide.Tags, "golang")
	assert.Contains(t, guide.Tags, "Golang")
}

func TestValidate_RejectsNestedTwoColumn(t *testing.T) {
	guide := models.NewDefaultGuide(uuid.New(), uuid.New(), "G")

	nested := models.BlockTwoColumn
	guide.Slides[0].Blocks = append(guide.Slides[0].Blocks, models.ContentBlock{
		ID:       uuid.New(),
		Type:     models.BlockTwoColumn,
		LeftType: &nested,
		Position: 3,
	})

	assert.ErrorIs(t, guide.Validate(), models.ErrNestedTwoColumn)
}

func TestValidate_RejectsUnknownBlockType(t *testing.T) {
	guide := models.NewDefaultGuide(uuid.New(), uuid.New(), "G")
	guide.Slides[0].Blocks[0].Type = "carousel"

	assert.ErrorIs(t, guide.Validate(), models.ErrUnknownBlockType)
}

func TestValidate_RequiresSlides(t *testing.T) {
	guide := models.NewDefaultGuide(uuid.New(), uuid.New(), "G")
	guide.Slides = nil

	assert.ErrorIs(t, guide.Validate(), models.ErrLastSlide)
}

func TestClone_IsIndependent(t *testing.T) {
	guide := models.NewDefaultGuide(uuid.New(), uuid.New(), "Original")
	require.NoError(t, guide.AddTag("one"))

	clone := guide.Clone()
	clone.Title = "Changed"
	clone.Tags[0] = "two"
	*clone.Slides[0].Blocks[0].Content = "mutated"
	clone.Slides[0].Blocks[0].Styles["fontSize"] = 99

	assert.Equal(t, "Original", guide.Title)
	assert.Equal(t, "one", guide.Tags[0])
	assert.Equal(t, "Welcome to Your Guide", *guide.Slides[0].Blocks[0].Content)
	assert.Equal(t, 32, guide.Slides[0].Blocks[0].Styles["fontSize"])
}

func TestFindBlock(t *testing.T) {
	guide := models.NewDefaultGuide(uuid.New(), uuid.New(), "G")
	target := guide.Slides[0].Blocks[1].ID

	si, bi, ok := guide.FindBlock(target)
	require.True(t, ok)
	assert.Equal(t, 0, si)
	assert.Equal(t, 1, bi)

	_, _, ok = guide.FindBlock(uuid.New())
	assert.False(t, ok)
}

func TestStyleMap_ValueAndScan(t *testing.T) {
	m := models.StyleMap{"fontSize": 24, "color": "#fff", "visible": true}

	raw, err := m.Value()
	require.NoError(t, err)

	var decoded models.StyleMap
	require.NoError(t, decoded.Scan(raw))

	// Числа проходят через JSON и возвращаются как float64
	assert.Equal(t, float64(24), decoded["fontSize"])
	assert.Equal(t, "#fff", decoded["color"])
	assert.Equal(t, true, decoded["visible"])

	var nilMap models.StyleMap
	require.NoError(t, nilMap.Scan(nil))
	assert.Nil(t, nilMap)
}

func TestDraft_SnapshotAndApply(t *testing.T) {
	guide := models.NewDefaultGuide(uuid.New(), uuid.New(), "Persisted")
	guide.Description = "kept from persisted copy"

	draft := models.SnapshotDraft(guide)
	draft.Title = "Draft Title"
	draft.Slides = append(draft.Slides, models.NewSlide(guide.ID, "Draft Slide", 2))

	merged := draft.Apply(guide)

	assert.Equal(t, "Draft Title", merged.Title)
	assert.Len(t, merged.Slides, 2)
	assert.Equal(t, "kept from persisted copy", merged.Description)

	// Исходный документ не тронут
	assert.Equal(t, "Persisted", guide.Title)
	assert.Len(t, guide.Slides, 1)
}

func TestInteractiveBlocks_Order(t *testing.T) {
	slide := models.NewSlide(uuid.New(), "S", 1)
	q1 := "First?"
	slide.Blocks = []models.ContentBlock{
		{ID: uuid.New(), Type: models.BlockParagraph, Position: 1},
		{ID: uuid.New(), Type: models.BlockInputField, Content: &q1, Position: 2},
		{ID: uuid.New(), Type: models.BlockFileUpload, Position: 3},
	}

	interactive := slide.InteractiveBlocks()
	require.Len(t, interactive, 2)
	assert.Equal(t, "First?", interactive[0].Question())
	assert.Equal(t, "File upload", interactive[1].Question())
}
