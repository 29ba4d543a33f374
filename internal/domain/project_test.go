package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vorojar/Qwen3-TTS/internal/errors"
)

func TestProject_AddChapter_Appends(t *testing.T) {
	p := &Project{ID: "proj-1", Name: "novel", ChapterOrder: []string{"chap-1"}}

	added := p.AddChapter("chap-2")

	assert.True(t, added)
	assert.Equal(t, []string{"chap-1", "chap-2"}, p.ChapterOrder)
}

func TestProject_AddChapter_IgnoresDuplicates(t *testing.T) {
	p := &Project{ID: "proj-1", ChapterOrder: []string{"chap-1"}}
	originalUpdatedAt := p.UpdatedAt

	added := p.AddChapter("chap-1")

	assert.False(t, added)
	assert.Equal(t, []string{"chap-1"}, p.ChapterOrder)
	assert.Equal(t, originalUpdatedAt, p.UpdatedAt)
}

func TestProject_RemoveChapter_Works(t *testing.T) {
	p := &Project{ID: "proj-1", ChapterOrder: []string{"chap-1", "chap-2", "chap-3"}}

	require.NoError(t, p.RemoveChapter("chap-2"))

	assert.Equal(t, []string{"chap-1", "chap-3"}, p.ChapterOrder)
}

func TestProject_RemoveChapter_RejectsLastChapter(t *testing.T) {
	p := &Project{ID: "proj-1", ChapterOrder: []string{"chap-1"}}

	err := p.RemoveChapter("chap-1")

	assert.ErrorIs(t, err, errors.ErrInvariant)
	assert.Equal(t, []string{"chap-1"}, p.ChapterOrder)
}

func TestProject_RemoveChapter_NotFound(t *testing.T) {
	p := &Project{ID: "proj-1", ChapterOrder: []string{"chap-1", "chap-2"}}

	err := p.RemoveChapter("chap-9")

	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestProject_FirstChapter(t *testing.T) {
	p := &Project{ID: "proj-1", ChapterOrder: []string{"chap-2", "chap-1"}}

	id, ok := p.FirstChapter()
	assert.True(t, ok)
	assert.Equal(t, "chap-2", id)

	id, ok = (&Project{ID: "proj-2"}).FirstChapter()
	assert.False(t, ok)
	assert.Empty(t, id)
}

func TestProject_SetCharacterVoice_InitializesMap(t *testing.T) {
	p := &Project{ID: "proj-1"}
	voice := VoiceConfig{Mode: ModePreset, Speaker: "vivian"}

	p.SetCharacterVoice("旁白", voice)

	require.NotNil(t, p.CharacterVoices)
	assert.Equal(t, voice, p.CharacterVoices["旁白"])
}

func TestProject_SortKey_FallsBackToCreatedAt(t *testing.T) {
	created := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	p := &Project{CreatedAt: created}

	assert.Equal(t, created, p.SortKey())

	updated := created.Add(time.Hour)
	p.UpdatedAt = updated
	assert.Equal(t, updated, p.SortKey())
}

func TestChapter_DocumentRoundTrip(t *testing.T) {
	chapter := &Chapter{
		ID:        "chap-1",
		ProjectID: "proj-1",
		Name:      "Chapter 1",
		Segments: []Segment{
			{Text: "A", Audio: []byte{1}},
			{Text: "B", Audio: []byte{2}, Instruct: "calm"},
		},
		Params:         GenerationParams{Mode: ModePreset, Language: "Chinese"},
		PaceMultiplier: 0.5,
	}

	doc := chapter.Document()
	doc.Segments[0].Text = "A2"

	// The chapter snapshot is detached from the document.
	assert.Equal(t, "A", chapter.Segments[0].Text)

	chapter.SetDocument(doc)
	assert.Equal(t, "A2", chapter.Segments[0].Text)
	assert.Equal(t, 0.5, chapter.PaceMultiplier)
	assert.False(t, chapter.UpdatedAt.IsZero())
}

func TestLegacySession_Segments_AlignsParallelArrays(t *testing.T) {
	s := &LegacySession{
		SentenceAudios:    [][]byte{{1}, {2}, {3}},
		SentenceTexts:     []string{"A", "B", "C"},
		SentenceInstructs: []string{"x"},
		Params:            GenerationParams{Mode: ModePreset, Instruct: "default"},
	}

	segments := s.Segments()

	require.Len(t, segments, 3)
	assert.Equal(t, "x", segments[0].Instruct)
	// Instructs beyond the stored array fall back to the document instruct.
	assert.Equal(t, "default", segments[1].Instruct)
	assert.Equal(t, "default", segments[2].Instruct)
}

func TestLegacySession_Empty(t *testing.T) {
	var nilSession *LegacySession
	assert.True(t, nilSession.Empty())
	assert.True(t, (&LegacySession{}).Empty())
	assert.False(t, (&LegacySession{SentenceAudios: [][]byte{{1}}}).Empty())
}
