// Package session ties the pieces together: it restores the last open
// document at startup, switches between chapters with flush-before-load,
// and persists the document after every content mutation.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vorojar/Qwen3-TTS/internal/audio"
	"github.com/vorojar/Qwen3-TTS/internal/domain"
	"github.com/vorojar/Qwen3-TTS/internal/editor"
	"github.com/vorojar/Qwen3-TTS/internal/errors"
	"github.com/vorojar/Qwen3-TTS/internal/id"
	"github.com/vorojar/Qwen3-TTS/internal/migrate"
	"github.com/vorojar/Qwen3-TTS/internal/normalize"
	"github.com/vorojar/Qwen3-TTS/internal/store"
)

// Controller owns the single open document and its place in the
// project/chapter hierarchy. All content flows through the editor; the
// controller decides when state hits the store.
//
// Persistence failures after a mutation are logged and swallowed: the
// in-memory document stays the source of truth and the next successful
// persist catches the store up.
type Controller struct {
	store    *store.Store
	editor   *editor.Editor
	migrator *migrate.Service
	logger   *slog.Logger

	mu      sync.Mutex
	project *domain.Project
	chapter *domain.Chapter
}

// New creates a controller. Call Start before anything else.
func New(st *store.Store, ed *editor.Editor, migrator *migrate.Service, logger *slog.Logger) *Controller {
	return &Controller{
		store:    st,
		editor:   ed,
		migrator: migrator,
		logger:   logger,
	}
}

// Start runs the legacy migration, then restores the last open document.
// The recorded preference wins; a dangling preference or none at all falls
// back to the most recently updated project and its first chapter. An empty
// store gets a fresh default project so the editor always has a document.
func (c *Controller) Start(ctx context.Context) error {
	report, err := c.migrator.Run(ctx)
	if err != nil {
		return err
	}
	if report.Migrated {
		return c.Switch(ctx, report.ProjectID, report.ChapterID)
	}

	if last, err := c.store.GetLastDocument(ctx); err == nil && last != nil {
		if err := c.Switch(ctx, last.ProjectID, last.ChapterID); err == nil {
			return nil
		}
		c.logger.Warn("last document preference is dangling, falling back",
			"project_id", last.ProjectID,
			"chapter_id", last.ChapterID,
		)
		if err := c.store.ClearLastDocument(ctx); err != nil {
			c.logger.Warn("failed to clear dangling preference", "error", err)
		}
	}

	projects, err := c.store.GetAllProjects(ctx)
	if err != nil {
		return err
	}
	if len(projects) > 0 {
		target := projects[0]
		if chapterID, ok := target.FirstChapter(); ok {
			return c.Switch(ctx, target.ID, chapterID)
		}
	}

	project, err := c.CreateProject(ctx, domain.DefaultProjectName)
	if err != nil {
		return err
	}
	chapterID, _ := project.FirstChapter()
	return c.Switch(ctx, project.ID, chapterID)
}

// Switch flushes the outgoing chapter and loads the target one. The target
// chapter must belong to the target project. A chapter listed on the project
// but missing its record is initialized empty, which is how fresh chapters
// come to life.
func (c *Controller) Switch(ctx context.Context, projectID, chapterID string) error {
	project, err := c.store.GetProject(ctx, projectID)
	if err != nil {
		return err
	}
	if !project.ContainsChapter(chapterID) {
		return errors.NotFoundf("chapter %s not in project %s", chapterID, projectID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Flush before load. The outgoing document must not lose edits just
	// because the user moved on.
	c.flushLocked(ctx)

	chapter, err := c.store.GetChapter(ctx, chapterID)
	if errors.Is(err, errors.ErrNotFound) {
		chapter = &domain.Chapter{
			ID:             chapterID,
			ProjectID:      projectID,
			Name:           domain.DefaultChapterName,
			Segments:       []domain.Segment{},
			PaceMultiplier: 1.0,
			UpdatedAt:      time.Now(),
		}
		err = c.store.PutChapter(ctx, chapter)
	}
	if err != nil {
		return err
	}

	doc := chapter.Document()
	doc.ApplyCharacterVoices(project.CharacterVoices)

	c.project = project
	c.chapter = chapter
	c.editor.Load(doc)

	if err := c.store.SetLastDocument(ctx, projectID, chapterID); err != nil {
		c.logger.Warn("failed to record last document", "error", err)
	}

	c.logger.Info("document loaded",
		"project_id", projectID,
		"chapter_id", chapterID,
		"segments", doc.Len(),
	)
	return nil
}

// flushLocked persists the currently loaded document if there is one and it
// has content. Failures are logged; flush never blocks a switch.
func (c *Controller) flushLocked(ctx context.Context) {
	if c.chapter == nil {
		return
	}
	doc := c.editor.Document()
	if doc == nil || doc.Empty() {
		return
	}
	c.chapter.SetDocument(doc)
	if err := c.store.PutChapter(ctx, c.chapter); err != nil {
		c.logger.Error("flush failed, edits remain in memory only", "chapter_id", c.chapter.ID, "error", err)
		return
	}
	c.touchProjectLocked(ctx)
}

// persist writes the document through to its chapter record after a
// mutation. Storage trouble is logged, not returned; the document in memory
// is still correct.
func (c *Controller) persist(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.chapter == nil {
		return
	}
	doc := c.editor.Document()
	if doc == nil {
		return
	}
	c.chapter.SetDocument(doc)
	if err := c.store.PutChapter(ctx, c.chapter); err != nil {
		c.logger.Error("persist failed, edits remain in memory only", "chapter_id", c.chapter.ID, "error", err)
		return
	}
	c.touchProjectLocked(ctx)
}

// touchProjectLocked bumps the parent project's UpdatedAt so project
// listings order by real activity.
func (c *Controller) touchProjectLocked(ctx context.Context) {
	if c.project == nil {
		return
	}
	c.project.UpdatedAt = time.Now()
	if err := c.store.PutProject(ctx, c.project); err != nil {
		c.logger.Warn("failed to bump project timestamp", "project_id", c.project.ID, "error", err)
	}
}

// InsertSegment inserts and synthesizes a segment, then persists.
func (c *Controller) InsertSegment(ctx context.Context, index int, text, instruct string) (int, error) {
	idx, err := c.editor.Insert(ctx, index, text, instruct)
	if err != nil {
		return 0, err
	}
	c.persist(ctx)
	return idx, nil
}

// DeleteSegment removes a segment, then persists.
func (c *Controller) DeleteSegment(ctx context.Context, index int) error {
	if err := c.editor.Delete(index); err != nil {
		return err
	}
	c.persist(ctx)
	return nil
}

// EditSegmentText updates a segment's text. Persists only when the text
// actually changed.
func (c *Controller) EditSegmentText(ctx context.Context, index int, text string) error {
	changed, err := c.editor.EditText(index, text)
	if err != nil {
		return err
	}
	if changed {
		c.persist(ctx)
	}
	return nil
}

// EditSegmentInstruct updates a segment's style directive, then persists.
func (c *Controller) EditSegmentInstruct(ctx context.Context, index int, instruct string) error {
	if err := c.editor.EditInstruct(index, instruct); err != nil {
		return err
	}
	c.persist(ctx)
	return nil
}

// RegenerateSegment resynthesizes a segment with new text, then persists.
func (c *Controller) RegenerateSegment(ctx context.Context, index int, text, instruct string) error {
	if err := c.editor.Regenerate(ctx, index, text, instruct); err != nil {
		return err
	}
	c.persist(ctx)
	return nil
}

// Undo restores the last captured segment state, then persists.
func (c *Controller) Undo(ctx context.Context) (int, error) {
	idx, err := c.editor.Undo()
	if err != nil {
		return 0, err
	}
	c.persist(ctx)
	return idx, nil
}

// SetPace updates the pace multiplier, then persists.
func (c *Controller) SetPace(ctx context.Context, pace float64) error {
	if err := c.editor.SetPace(pace); err != nil {
		return err
	}
	c.persist(ctx)
	return nil
}

// SetParams replaces the document-level generation parameters, then
// persists. The language is folded onto the engine's supported set first; an
// unrecognized language is stored empty and the engine auto-detects.
func (c *Controller) SetParams(ctx context.Context, params domain.GenerationParams) error {
	params.Language = normalize.Language(params.Language)
	if err := c.editor.SetParams(params); err != nil {
		return err
	}
	c.persist(ctx)
	return nil
}

// Track reconstructs the full audio track of the open document.
func (c *Controller) Track() (*audio.Track, []audio.Subtitle, error) {
	return c.editor.Reconstruct()
}

// State is the session snapshot handed to clients.
type State struct {
	ProjectID string           `json:"project_id"`
	ChapterID string           `json:"chapter_id"`
	Document  *domain.Document `json:"document"`
	Stats     domain.Stats     `json:"stats"`
	CanUndo   bool             `json:"can_undo"`
}

// Snapshot returns the current session state.
func (c *Controller) Snapshot() (*State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.chapter == nil {
		return nil, errors.Conflict("no document loaded")
	}
	doc := c.editor.Document()
	return &State{
		ProjectID: c.project.ID,
		ChapterID: c.chapter.ID,
		Document:  doc,
		Stats:     doc.Stats(),
		CanUndo:   c.editor.CanUndo(),
	}, nil
}

// CurrentIDs returns the open project and chapter IDs, or empty strings
// before the first load.
func (c *Controller) CurrentIDs() (projectID, chapterID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.chapter == nil {
		return "", ""
	}
	return c.project.ID, c.chapter.ID
}

// Flush persists the open document immediately. Called on shutdown.
func (c *Controller) Flush(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flushLocked(ctx)
}

// CreateProject creates a project with one empty chapter.
func (c *Controller) CreateProject(ctx context.Context, name string) (*domain.Project, error) {
	if name == "" {
		name = domain.DefaultProjectName
	}
	now := time.Now()

	project := &domain.Project{
		ID:        id.MustGenerate(id.PrefixProject),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	chapter := &domain.Chapter{
		ID:             id.MustGenerate(id.PrefixChapter),
		ProjectID:      project.ID,
		Name:           domain.DefaultChapterName,
		Segments:       []domain.Segment{},
		PaceMultiplier: 1.0,
		UpdatedAt:      now,
	}
	project.AddChapter(chapter.ID)

	if err := c.store.PutChapter(ctx, chapter); err != nil {
		return nil, err
	}
	if err := c.store.PutProject(ctx, project); err != nil {
		return nil, err
	}

	c.logger.Info("project created", "id", project.ID, "name", project.Name)
	return project, nil
}

// CreateChapter appends an empty chapter to a project.
func (c *Controller) CreateChapter(ctx context.Context, projectID, name string) (*domain.Chapter, error) {
	project, err := c.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = domain.DefaultChapterName
	}

	chapter := &domain.Chapter{
		ID:             id.MustGenerate(id.PrefixChapter),
		ProjectID:      projectID,
		Name:           name,
		Segments:       []domain.Segment{},
		PaceMultiplier: 1.0,
		UpdatedAt:      time.Now(),
	}
	if err := c.store.PutChapter(ctx, chapter); err != nil {
		return nil, err
	}

	project.AddChapter(chapter.ID)
	project.UpdatedAt = time.Now()
	if err := c.store.PutProject(ctx, project); err != nil {
		return nil, err
	}

	c.syncCachedProject(project)
	return chapter, nil
}

// DeleteChapter removes a chapter. A project never loses its last chapter.
// Deleting the open chapter switches the session to the project's first
// remaining one.
func (c *Controller) DeleteChapter(ctx context.Context, chapterID string) error {
	chapter, err := c.store.GetChapter(ctx, chapterID)
	if err != nil {
		return err
	}
	project, err := c.store.GetProject(ctx, chapter.ProjectID)
	if err != nil {
		return err
	}

	if err := project.RemoveChapter(chapterID); err != nil {
		return err
	}
	project.UpdatedAt = time.Now()

	if err := c.store.DeleteChapter(ctx, chapterID); err != nil {
		return err
	}
	if err := c.store.PutProject(ctx, project); err != nil {
		return err
	}
	c.syncCachedProject(project)

	_, currentChapter := c.CurrentIDs()
	if currentChapter == chapterID {
		if nextID, ok := project.FirstChapter(); ok {
			c.dropCurrent()
			return c.Switch(ctx, project.ID, nextID)
		}
	}
	return nil
}

// DeleteProject removes a project and all its chapters. Deleting the open
// project re-runs startup restore to land on another document.
func (c *Controller) DeleteProject(ctx context.Context, projectID string) error {
	metas, err := c.store.ListChaptersByProject(ctx, projectID)
	if err != nil {
		return err
	}
	for _, meta := range metas {
		if err := c.store.DeleteChapter(ctx, meta.ID); err != nil {
			return err
		}
	}
	if err := c.store.DeleteProject(ctx, projectID); err != nil {
		return err
	}

	currentProject, _ := c.CurrentIDs()
	if currentProject == projectID {
		c.dropCurrent()
		if err := c.store.ClearLastDocument(ctx); err != nil {
			c.logger.Warn("failed to clear last document preference", "error", err)
		}
		return c.Start(ctx)
	}
	return nil
}

// RenameProject updates a project's name.
func (c *Controller) RenameProject(ctx context.Context, projectID, name string) (*domain.Project, error) {
	if name == "" {
		return nil, errors.Validation("project name cannot be empty")
	}
	project, err := c.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	project.Name = name
	project.UpdatedAt = time.Now()
	if err := c.store.PutProject(ctx, project); err != nil {
		return nil, err
	}
	c.syncCachedProject(project)
	return project, nil
}

// SetCharacterVoice assigns a voice to a character name on a project. The
// open document picks it up for untagged segments immediately.
func (c *Controller) SetCharacterVoice(ctx context.Context, projectID, character string, voice domain.VoiceConfig) error {
	project, err := c.store.GetProject(ctx, projectID)
	if err != nil {
		return err
	}
	project.SetCharacterVoice(character, voice)
	project.UpdatedAt = time.Now()
	if err := c.store.PutProject(ctx, project); err != nil {
		return err
	}
	c.syncCachedProject(project)

	c.mu.Lock()
	current := c.project != nil && c.project.ID == projectID
	c.mu.Unlock()
	if current {
		doc := c.editor.Document()
		if doc != nil {
			doc.ApplyCharacterVoices(project.CharacterVoices)
			c.editor.Load(doc)
			c.persist(ctx)
		}
	}
	return nil
}

// syncCachedProject refreshes the in-memory project if it is the one that
// changed.
func (c *Controller) syncCachedProject(project *domain.Project) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.project != nil && c.project.ID == project.ID {
		c.project = project
	}
}

func (c *Controller) dropCurrent() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.project = nil
	c.chapter = nil
}
