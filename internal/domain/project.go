package domain

import (
	"slices"
	"time"

	"github.com/vorojar/Qwen3-TTS/internal/errors"
)

// DefaultProjectName is used for projects created without an explicit name,
// including the project produced by legacy-session migration.
const DefaultProjectName = "untitled"

// DefaultChapterName is used for a project's first chapter.
const DefaultChapterName = "Chapter 1"

// Project groups chapters and carries the character-voice map shared by all
// of them. ChapterOrder defines sidebar ordering and holds at least one
// chapter for as long as the project exists.
type Project struct {
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
	ID              string                 `json:"id"`
	Name            string                 `json:"name"`
	CharacterVoices map[string]VoiceConfig `json:"character_voices,omitempty"`
	ChapterOrder    []string               `json:"chapter_order"`
}

// AddChapter appends a chapter ID to the ordering. No-op if already present.
func (p *Project) AddChapter(chapterID string) bool {
	if slices.Contains(p.ChapterOrder, chapterID) {
		return false
	}
	p.ChapterOrder = append(p.ChapterOrder, chapterID)
	p.UpdatedAt = time.Now()
	return true
}

// RemoveChapter removes a chapter ID from the ordering. Removing the last
// remaining chapter is rejected: a project always keeps at least one.
func (p *Project) RemoveChapter(chapterID string) error {
	idx := slices.Index(p.ChapterOrder, chapterID)
	if idx < 0 {
		return errors.NotFoundf("chapter %s not in project %s", chapterID, p.ID)
	}
	if len(p.ChapterOrder) <= 1 {
		return errors.Invariant("cannot delete the last chapter of a project")
	}
	p.ChapterOrder = append(p.ChapterOrder[:idx], p.ChapterOrder[idx+1:]...)
	p.UpdatedAt = time.Now()
	return nil
}

// ContainsChapter checks if a chapter ID belongs to this project's ordering.
func (p *Project) ContainsChapter(chapterID string) bool {
	return slices.Contains(p.ChapterOrder, chapterID)
}

// FirstChapter returns the first chapter ID in sidebar order. The ordering
// is empty only mid-construction; callers that hold a stored project can
// rely on the second return being true.
func (p *Project) FirstChapter() (string, bool) {
	if len(p.ChapterOrder) == 0 {
		return "", false
	}
	return p.ChapterOrder[0], true
}

// SetCharacterVoice binds a character label to a default voice, shared by
// every chapter in the project.
func (p *Project) SetCharacterVoice(character string, voice VoiceConfig) {
	if p.CharacterVoices == nil {
		p.CharacterVoices = make(map[string]VoiceConfig)
	}
	p.CharacterVoices[character] = voice
	p.UpdatedAt = time.Now()
}

// SortKey returns the timestamp projects are listed by: UpdatedAt when set,
// falling back to CreatedAt.
func (p *Project) SortKey() time.Time {
	if !p.UpdatedAt.IsZero() {
		return p.UpdatedAt
	}
	return p.CreatedAt
}
