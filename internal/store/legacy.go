package store

import (
	"context"

	"github.com/dgraph-io/badger/v4"

	"github.com/vorojar/Qwen3-TTS/internal/domain"
	"github.com/vorojar/Qwen3-TTS/internal/errors"
)

// Keys of the retired flat-session schema. Read by the one-time migration,
// never written by current code.
const (
	legacySessionKey = "session:current"
	legacyHistoryKey = "session:history"
)

// GetLegacySession reads the old flat-session record if one exists. A store
// without one returns nil without error.
func (s *Store) GetLegacySession(_ context.Context) (*domain.LegacySession, error) {
	var session domain.LegacySession
	if err := s.get([]byte(legacySessionKey), &session); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, errors.CodeStorage, "get legacy session")
	}
	return &session, nil
}

// HasLegacySession reports whether an old flat-session record remains.
func (s *Store) HasLegacySession(_ context.Context) (bool, error) {
	exists, err := s.exists([]byte(legacySessionKey))
	if err != nil {
		return false, errors.Wrap(err, errors.CodeStorage, "check legacy session")
	}
	return exists, nil
}

// DeleteLegacySession removes the old flat-session record and its history
// sibling. Deleting keys that are already gone is not an error.
func (s *Store) DeleteLegacySession(_ context.Context) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(legacySessionKey)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.Delete([]byte(legacyHistoryKey)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, errors.CodeStorage, "delete legacy session")
	}

	if s.logger != nil {
		s.logger.Info("legacy session records removed")
	}
	return nil
}

// PutLegacySession writes a flat-session record. Only migration tests use
// this; production code never creates legacy data.
func (s *Store) PutLegacySession(_ context.Context, session *domain.LegacySession) error {
	if err := s.set([]byte(legacySessionKey), session); err != nil {
		return errors.Wrap(err, errors.CodeStorage, "put legacy session")
	}
	return nil
}
