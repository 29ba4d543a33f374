package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vorojar/Qwen3-TTS/internal/domain"
	"github.com/vorojar/Qwen3-TTS/internal/http/response"
)

// CreateProjectRequest creates a project. An empty name gets the default.
type CreateProjectRequest struct {
	Name string `json:"name" validate:"max=200"`
}

// RenameProjectRequest renames a project.
type RenameProjectRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

// CreateChapterRequest adds a chapter to a project.
type CreateChapterRequest struct {
	Name string `json:"name" validate:"max=200"`
}

// SetCharacterVoiceRequest binds a character label to a voice.
type SetCharacterVoiceRequest struct {
	Voice domain.VoiceConfig `json:"voice"`
}

// handleListProjects returns all projects, most recently updated first.
func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.store.GetAllProjects(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]any{
		"projects": projects,
	}, s.logger)
}

// handleCreateProject creates a project with one empty chapter.
func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validate.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	project, err := s.session.CreateProject(r.Context(), req.Name)
	if err != nil {
		s.logger.Error("Failed to create project", "error", err)
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, project, s.logger)
}

// handleGetProject returns a single project with its chapter metadata.
func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	project, err := s.store.GetProject(ctx, id)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	chapters, err := s.store.ListChaptersByProject(ctx, id)
	if err != nil {
		s.logger.Error("Failed to list chapters", "error", err, "project_id", id)
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]any{
		"project":  project,
		"chapters": chapters,
	}, s.logger)
}

// handleRenameProject renames a project.
func (s *Server) handleRenameProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req RenameProjectRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validate.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	project, err := s.session.RenameProject(r.Context(), id, req.Name)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, project, s.logger)
}

// handleDeleteProject deletes a project and all its chapters. Deleting the
// open project switches the session elsewhere.
func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.session.DeleteProject(r.Context(), id); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// handleSetCharacterVoice binds a character label to a default voice for
// every chapter of the project.
func (s *Server) handleSetCharacterVoice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	character := chi.URLParam(r, "character")

	if character == "" {
		response.BadRequest(w, "Character name is required", s.logger)
		return
	}

	var req SetCharacterVoiceRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	if err := s.session.SetCharacterVoice(r.Context(), id, character, req.Voice); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// handleCreateChapter adds an empty chapter to a project.
func (s *Server) handleCreateChapter(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req CreateChapterRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validate.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	chapter, err := s.session.CreateChapter(r.Context(), id, req.Name)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, chapter.Meta(), s.logger)
}

// handleListChapters returns chapter metadata for a project. Sidebar order
// is the project's chapter_order; the listing itself is unordered.
func (s *Server) handleListChapters(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	// Existence check first so an unknown project reads as 404, not an
	// empty list.
	if _, err := s.store.GetProject(ctx, id); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	chapters, err := s.store.ListChaptersByProject(ctx, id)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]any{
		"chapters": chapters,
	}, s.logger)
}

// handleDeleteChapter removes a chapter. The last chapter of a project
// cannot be deleted; deleting the open chapter switches the session to the
// project's first remaining one.
func (s *Server) handleDeleteChapter(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.session.DeleteChapter(r.Context(), id); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}
