package store

import (
	"context"
	"encoding/json/v2"
	"slices"

	"github.com/dgraph-io/badger/v4"

	"github.com/vorojar/Qwen3-TTS/internal/domain"
	"github.com/vorojar/Qwen3-TTS/internal/errors"
)

const projectPrefix = "project:"

// PutProject writes a project record, creating or fully replacing it.
func (s *Store) PutProject(_ context.Context, project *domain.Project) error {
	key := []byte(projectPrefix + project.ID)

	if err := s.set(key, project); err != nil {
		return errors.Wrapf(err, errors.CodeStorage, "put project %s", project.ID)
	}

	if s.logger != nil {
		s.logger.Debug("project saved", "id", project.ID, "name", project.Name)
	}
	return nil
}

// GetProject retrieves a project by ID.
func (s *Store) GetProject(_ context.Context, id string) (*domain.Project, error) {
	key := []byte(projectPrefix + id)

	var project domain.Project
	if err := s.get(key, &project); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, errors.NotFoundf("project %s not found", id)
		}
		return nil, errors.Wrapf(err, errors.CodeStorage, "get project %s", id)
	}

	return &project, nil
}

// GetAllProjects returns every project, most recently touched first.
func (s *Store) GetAllProjects(ctx context.Context) ([]*domain.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var projects []*domain.Project
	prefix := []byte(projectPrefix)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var project domain.Project
				if err := json.Unmarshal(val, &project); err != nil {
					return err
				}
				projects = append(projects, &project)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStorage, "list projects")
	}

	slices.SortFunc(projects, func(a, b *domain.Project) int {
		return b.SortKey().Compare(a.SortKey())
	})
	return projects, nil
}

// DeleteProject removes a project record. Chapters hanging off the project
// are the caller's responsibility; the session controller deletes them via
// ListChaptersByProject first.
func (s *Store) DeleteProject(_ context.Context, id string) error {
	key := []byte(projectPrefix + id)

	exists, err := s.exists(key)
	if err != nil {
		return errors.Wrapf(err, errors.CodeStorage, "check project %s", id)
	}
	if !exists {
		return errors.NotFoundf("project %s not found", id)
	}

	if err := s.delete(key); err != nil {
		return errors.Wrapf(err, errors.CodeStorage, "delete project %s", id)
	}

	if s.logger != nil {
		s.logger.Info("project deleted", "id", id)
	}
	return nil
}
