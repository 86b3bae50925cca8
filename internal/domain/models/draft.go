package models

import (
	"time"

	"github.com/google/uuid"
)

// EditorDraft — эфемерный снимок рабочего документа редактора.
// Один слот на гайд, последняя запись побеждает.
type EditorDraft struct {
	GuideID      uuid.UUID `json:"guide_id"`
	Title        string    `json:"title"`
	Tags         []string  `json:"tags"`
	Slides       []Slide   `json:"slides"`
	LastModified time.Time `json:"last_modified"`
}

// SnapshotDraft снимает черновик с рабочего документа
func SnapshotDraft(g *Guide) *EditorDraft {
	c := g.Clone()
	return &EditorDraft{
		GuideID:      c.ID,
		Title:        c.Title,
		Tags:         c.Tags,
		Slides:       c.Slides,
		LastModified: time.Now().UTC(),
	}
}

// Apply накладывает черновик на загруженный документ: заголовок, теги и
// слайды берутся из черновика, остальные поля — из персистентной копии.
func (d *EditorDraft) Apply(g *Guide) *Guide {
	out := g.Clone()
	out.Title = d.Title
	if d.Tags != nil {
		out.Tags = append([]string(nil), d.Tags...)
	}
	out.Slides = make([]Slide, len(d.Slides))
	for i := range d.Slides {
		out.Slides[i] = d.Slides[i].Clone()
	}
	return out
}
