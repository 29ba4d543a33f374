package store

import (
	"context"

	"github.com/dgraph-io/badger/v4"

	"github.com/vorojar/Qwen3-TTS/internal/errors"
)

const lastDocumentKey = "prefs:last_document"

// LastDocument remembers which chapter the editor had open, so a restart
// lands the user where they left off.
type LastDocument struct {
	ProjectID string `json:"project_id"`
	ChapterID string `json:"chapter_id"`
}

// SetLastDocument records the currently open project and chapter.
func (s *Store) SetLastDocument(_ context.Context, projectID, chapterID string) error {
	doc := LastDocument{ProjectID: projectID, ChapterID: chapterID}
	if err := s.set([]byte(lastDocumentKey), doc); err != nil {
		return errors.Wrap(err, errors.CodeStorage, "set last document")
	}
	return nil
}

// GetLastDocument returns the last open project and chapter, or nil when no
// preference has been recorded yet.
func (s *Store) GetLastDocument(_ context.Context) (*LastDocument, error) {
	var doc LastDocument
	if err := s.get([]byte(lastDocumentKey), &doc); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, errors.CodeStorage, "get last document")
	}
	return &doc, nil
}

// ClearLastDocument drops the preference, e.g. when its target was deleted.
func (s *Store) ClearLastDocument(_ context.Context) error {
	if err := s.delete([]byte(lastDocumentKey)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return errors.Wrap(err, errors.CodeStorage, "clear last document")
	}
	return nil
}
