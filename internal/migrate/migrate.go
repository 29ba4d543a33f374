// Package migrate moves data from the retired flat-session schema into the
// project/chapter model. It runs once at startup, before anything else
// touches the repositories.
package migrate

import (
	"context"
	"log/slog"
	"time"

	"github.com/vorojar/Qwen3-TTS/internal/domain"
	"github.com/vorojar/Qwen3-TTS/internal/errors"
	"github.com/vorojar/Qwen3-TTS/internal/id"
	"github.com/vorojar/Qwen3-TTS/internal/store"
)

// Report describes what a migration run did.
type Report struct {
	// Migrated is true when a legacy document was converted.
	Migrated bool
	// ProjectID and ChapterID identify the created records when Migrated.
	ProjectID string
	ChapterID string
}

// Service performs the one-time legacy migration.
type Service struct {
	store  *store.Store
	logger *slog.Logger
}

// New creates a migration service.
func New(st *store.Store, logger *slog.Logger) *Service {
	return &Service{store: st, logger: logger}
}

// Run executes detect, transform and commit. A failure at any stage aborts
// without touching the legacy record, so the next startup retries from
// scratch. After a successful commit the legacy record is gone and every
// later run is a no-op; running twice never produces two projects.
func (s *Service) Run(ctx context.Context) (*Report, error) {
	session, err := s.detect(ctx)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return &Report{}, nil
	}

	project, chapter := s.transform(session)

	if err := s.commit(ctx, project, chapter); err != nil {
		return nil, err
	}

	s.logger.Info("legacy session migrated",
		"project_id", project.ID,
		"chapter_id", chapter.ID,
		"segments", len(chapter.Segments),
	)
	return &Report{Migrated: true, ProjectID: project.ID, ChapterID: chapter.ID}, nil
}

// detect loads the legacy record. An empty record is a remnant with nothing
// to carry over; it is deleted on the spot.
func (s *Service) detect(ctx context.Context) (*domain.LegacySession, error) {
	session, err := s.store.GetLegacySession(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStorage, "detect legacy session")
	}
	if session == nil {
		return nil, nil
	}
	if session.Empty() {
		s.logger.Info("removing empty legacy session remnant")
		if err := s.store.DeleteLegacySession(ctx); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return session, nil
}

// transform wraps the flat document into one project with one chapter.
func (s *Service) transform(session *domain.LegacySession) (*domain.Project, *domain.Chapter) {
	now := time.Now()
	createdAt := now
	if session.Timestamp > 0 {
		createdAt = time.UnixMilli(session.Timestamp)
	}

	params := session.Params
	if params.ClonePromptID == "" {
		params.ClonePromptID = session.ClonePromptID
	}

	project := &domain.Project{
		ID:              id.MustGenerate(id.PrefixProject),
		Name:            domain.DefaultProjectName,
		CharacterVoices: session.CharacterVoices,
		CreatedAt:       createdAt,
		UpdatedAt:       now,
	}
	chapter := &domain.Chapter{
		ID:             id.MustGenerate(id.PrefixChapter),
		ProjectID:      project.ID,
		Name:           domain.DefaultChapterName,
		Segments:       session.Segments(),
		Params:         params,
		PaceMultiplier: session.PaceMultiplier,
		UpdatedAt:      now,
	}
	project.AddChapter(chapter.ID)

	return project, chapter
}

// commit writes the new records, then removes the legacy ones and verifies
// they are really gone before reporting success.
func (s *Service) commit(ctx context.Context, project *domain.Project, chapter *domain.Chapter) error {
	if err := s.store.PutChapter(ctx, chapter); err != nil {
		return err
	}
	if err := s.store.PutProject(ctx, project); err != nil {
		return err
	}

	if err := s.store.DeleteLegacySession(ctx); err != nil {
		return err
	}
	remains, err := s.store.HasLegacySession(ctx)
	if err != nil {
		return err
	}
	if remains {
		return errors.Storage("legacy session still present after delete")
	}
	return nil
}
