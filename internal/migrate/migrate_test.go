package migrate

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vorojar/Qwen3-TTS/internal/domain"
	"github.com/vorojar/Qwen3-TTS/internal/store"
)

func setupService(t *testing.T) (*Service, *store.Store) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "qwen3tts-migrate-*")
	require.NoError(t, err)

	st, err := store.New(filepath.Join(tmpDir, "test.db"), nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		st.Close()
		os.RemoveAll(tmpDir)
	})

	return New(st, slog.New(slog.DiscardHandler)), st
}

func legacySession() *domain.LegacySession {
	return &domain.LegacySession{
		SentenceAudios:    [][]byte{{1, 1}, {2, 2}, {3, 3}},
		SentenceTexts:     []string{"你好", "世界", "再见"},
		SentenceInstructs: []string{"calm", "calm", "sad"},
		Params:            domain.GenerationParams{Mode: domain.ModePreset, Speaker: "vivian", Language: "Chinese"},
		PaceMultiplier:    0.5,
		CharacterVoices: map[string]domain.VoiceConfig{
			"旁白": {Mode: domain.ModePreset, Speaker: "vivian"},
		},
		Timestamp: 1718000000000,
	}
}

func TestRun_NoLegacyData(t *testing.T) {
	svc, st := setupService(t)
	ctx := context.Background()

	report, err := svc.Run(ctx)
	require.NoError(t, err)

	assert.False(t, report.Migrated)
	projects, err := st.GetAllProjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestRun_EmptyRemnantIsDeleted(t *testing.T) {
	svc, st := setupService(t)
	ctx := context.Background()
	require.NoError(t, st.PutLegacySession(ctx, &domain.LegacySession{}))

	report, err := svc.Run(ctx)
	require.NoError(t, err)

	assert.False(t, report.Migrated)
	has, err := st.HasLegacySession(ctx)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestRun_MigratesLegacyDocument(t *testing.T) {
	svc, st := setupService(t)
	ctx := context.Background()
	require.NoError(t, st.PutLegacySession(ctx, legacySession()))

	report, err := svc.Run(ctx)
	require.NoError(t, err)
	require.True(t, report.Migrated)

	project, err := st.GetProject(ctx, report.ProjectID)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultProjectName, project.Name)
	assert.Equal(t, []string{report.ChapterID}, project.ChapterOrder)
	assert.Contains(t, project.CharacterVoices, "旁白")

	chapter, err := st.GetChapter(ctx, report.ChapterID)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultChapterName, chapter.Name)
	assert.Equal(t, report.ProjectID, chapter.ProjectID)
	assert.Equal(t, 0.5, chapter.PaceMultiplier)
	require.Len(t, chapter.Segments, 3)
	assert.Equal(t, "你好", chapter.Segments[0].Text)
	assert.Equal(t, []byte{2, 2}, chapter.Segments[1].Audio)
	assert.Equal(t, "sad", chapter.Segments[2].Instruct)

	// Legacy record is gone after commit.
	has, err := st.HasLegacySession(ctx)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestRun_SecondRunIsNoOp(t *testing.T) {
	svc, st := setupService(t)
	ctx := context.Background()
	require.NoError(t, st.PutLegacySession(ctx, legacySession()))

	first, err := svc.Run(ctx)
	require.NoError(t, err)
	require.True(t, first.Migrated)

	second, err := svc.Run(ctx)
	require.NoError(t, err)
	assert.False(t, second.Migrated)

	projects, err := st.GetAllProjects(ctx)
	require.NoError(t, err)
	assert.Len(t, projects, 1)

	metas, err := st.ListChaptersByProject(ctx, first.ProjectID)
	require.NoError(t, err)
	assert.Len(t, metas, 1)
}

func TestRun_CarriesClonePromptID(t *testing.T) {
	svc, st := setupService(t)
	ctx := context.Background()

	session := legacySession()
	session.Params.Mode = domain.ModeClone
	session.Params.Speaker = ""
	session.ClonePromptID = "prompt-9"
	require.NoError(t, st.PutLegacySession(ctx, session))

	report, err := svc.Run(ctx)
	require.NoError(t, err)

	chapter, err := st.GetChapter(ctx, report.ChapterID)
	require.NoError(t, err)
	assert.Equal(t, "prompt-9", chapter.Params.ClonePromptID)
}
