package store

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/vorojar/Qwen3-TTS/internal/domain"
	"github.com/vorojar/Qwen3-TTS/internal/errors"
)

// Key prefixes for chapter storage.
const (
	chapterPrefix          = "chapter:"
	chaptersByProjectPrefix = "idx:chapters:project:"
)

// PutChapter writes a chapter record and its project index entry, creating
// or fully replacing the record. Chapter records carry the segment audio, so
// they dominate the database size; the index entry carries the listing
// metadata so sidebar queries never touch the heavy records.
func (s *Store) PutChapter(_ context.Context, chapter *domain.Chapter) error {
	key := []byte(chapterPrefix + chapter.ID)

	err := s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(chapter)
		if err != nil {
			return fmt.Errorf("marshal chapter: %w", err)
		}

		if err := txn.Set(key, data); err != nil {
			return err
		}

		meta, err := json.Marshal(chapter.Meta())
		if err != nil {
			return fmt.Errorf("marshal chapter meta: %w", err)
		}

		// Project index: idx:chapters:project:{projectID}:{chapterID}
		indexKey := fmt.Appendf(nil, "%s%s:%s", chaptersByProjectPrefix, chapter.ProjectID, chapter.ID)
		if err := txn.Set(indexKey, meta); err != nil {
			return fmt.Errorf("set project index: %w", err)
		}

		return nil
	})
	if err != nil {
		return errors.Wrapf(err, errors.CodeStorage, "put chapter %s", chapter.ID)
	}

	if s.logger != nil {
		s.logger.Debug("chapter saved",
			"id", chapter.ID,
			"project_id", chapter.ProjectID,
			"segments", len(chapter.Segments),
		)
	}
	return nil
}

// GetChapter retrieves a chapter by ID, segments included.
func (s *Store) GetChapter(_ context.Context, id string) (*domain.Chapter, error) {
	key := []byte(chapterPrefix + id)

	var chapter domain.Chapter
	if err := s.get(key, &chapter); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, errors.NotFoundf("chapter %s not found", id)
		}
		return nil, errors.Wrapf(err, errors.CodeStorage, "get chapter %s", id)
	}

	return &chapter, nil
}

// DeleteChapter removes a chapter record and its project index entry.
func (s *Store) DeleteChapter(ctx context.Context, id string) error {
	chapter, err := s.GetChapter(ctx, id)
	if err != nil {
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(chapterPrefix + id)); err != nil {
			return fmt.Errorf("delete chapter: %w", err)
		}

		indexKey := fmt.Appendf(nil, "%s%s:%s", chaptersByProjectPrefix, chapter.ProjectID, id)
		if err := txn.Delete(indexKey); err != nil {
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("delete project index: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return errors.Wrapf(err, errors.CodeStorage, "delete chapter %s", id)
	}

	if s.logger != nil {
		s.logger.Info("chapter deleted", "id", id, "project_id", chapter.ProjectID)
	}
	return nil
}

// ListChaptersByProject returns the listing metadata of every chapter in a
// project, read straight from the index values. Segment payloads are never
// deserialized; an index entry without decodable metadata falls back to the
// full record.
func (s *Store) ListChaptersByProject(ctx context.Context, projectID string) ([]domain.ChapterMeta, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		metas    []domain.ChapterMeta
		fallback []string
	)
	prefix := fmt.Appendf(nil, "%s%s:", chaptersByProjectPrefix, projectID)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			var meta domain.ChapterMeta
			err := item.Value(func(val []byte) error {
				if len(val) == 0 {
					return fmt.Errorf("empty index value")
				}
				return json.Unmarshal(val, &meta)
			})
			if err != nil {
				// Key format: idx:chapters:project:{projectID}:{chapterID}
				key := string(item.Key())
				if idx := strings.LastIndexByte(key, ':'); idx != -1 && idx < len(key)-1 {
					fallback = append(fallback, key[idx+1:])
				}
				continue
			}
			metas = append(metas, meta)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStorage, "scan chapter index")
	}

	for _, chapterID := range fallback {
		chapter, err := s.GetChapter(ctx, chapterID)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("failed to load chapter from index", "chapter_id", chapterID, "error", err)
			}
			continue
		}
		metas = append(metas, chapter.Meta())
	}

	return metas, nil
}
