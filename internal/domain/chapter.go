package domain

import "time"

// Chapter is the durable snapshot of a document. Every persist overwrites
// the whole record; there are no partial-field updates.
type Chapter struct {
	UpdatedAt      time.Time        `json:"updated_at"`
	ID             string           `json:"id"`
	ProjectID      string           `json:"project_id"`
	Name           string           `json:"name"`
	Segments       []Segment        `json:"segments"`
	Params         GenerationParams `json:"params"`
	PaceMultiplier float64          `json:"pace_multiplier"`
}

// ChapterMeta is the lightweight listing form of a chapter, without the
// segment payload. Used for sidebar listings.
type ChapterMeta struct {
	UpdatedAt time.Time `json:"updated_at"`
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Name      string    `json:"name"`
}

// Meta returns the chapter's listing form.
func (c *Chapter) Meta() ChapterMeta {
	return ChapterMeta{
		ID:        c.ID,
		ProjectID: c.ProjectID,
		Name:      c.Name,
		UpdatedAt: c.UpdatedAt,
	}
}

// Document materializes the chapter's snapshot as an editable document.
func (c *Chapter) Document() *Document {
	doc := &Document{
		Segments:       make([]Segment, len(c.Segments)),
		Params:         c.Params,
		PaceMultiplier: c.PaceMultiplier,
	}
	copy(doc.Segments, c.Segments)
	return doc
}

// SetDocument replaces the chapter's snapshot with the document's current
// state and bumps the timestamp.
func (c *Chapter) SetDocument(doc *Document) {
	snapshot := doc.Clone()
	c.Segments = snapshot.Segments
	c.Params = snapshot.Params
	c.PaceMultiplier = snapshot.PaceMultiplier
	c.UpdatedAt = time.Now()
}
