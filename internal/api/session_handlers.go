package api

import (
	"encoding/json/v2"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vorojar/Qwen3-TTS/internal/domain"
	"github.com/vorojar/Qwen3-TTS/internal/http/response"
	"github.com/vorojar/Qwen3-TTS/internal/util"
)

// SwitchSessionRequest opens a chapter as the session document.
type SwitchSessionRequest struct {
	ProjectID string `json:"project_id" validate:"required"`
	ChapterID string `json:"chapter_id" validate:"required"`
}

// SetPaceRequest updates the reconstruction pace multiplier. Zero joins
// segments without gaps.
type SetPaceRequest struct {
	Pace float64 `json:"pace" validate:"gte=0"`
}

// SetParamsRequest replaces the document-level generation parameters.
type SetParamsRequest struct {
	Mode          domain.GenerationMode `json:"mode" validate:"required,oneof=preset clone design"`
	Language      string                `json:"language"`
	Speaker       string                `json:"speaker"`
	Instruct      string                `json:"instruct"`
	VoiceID       string                `json:"voice_id"`
	ClonePromptID string                `json:"clone_prompt_id"`
}

// InsertSegmentRequest inserts and synthesizes a segment at a position.
type InsertSegmentRequest struct {
	Index    int    `json:"index" validate:"gte=0"`
	Text     string `json:"text" validate:"required"`
	Instruct string `json:"instruct"`
}

// EditSegmentRequest updates a segment's text and/or style directive without
// resynthesizing. Omitted fields are left alone.
type EditSegmentRequest struct {
	Text     *string `json:"text"`
	Instruct *string `json:"instruct"`
}

// RegenerateSegmentRequest resynthesizes a segment with new text.
type RegenerateSegmentRequest struct {
	Text     string `json:"text" validate:"required"`
	Instruct string `json:"instruct"`
}

// handleGetSession returns the current session state.
func (s *Server) handleGetSession(w http.ResponseWriter, _ *http.Request) {
	state, err := s.session.Snapshot()
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, state, s.logger)
}

// handleSwitchSession flushes the open document and loads another chapter.
func (s *Server) handleSwitchSession(w http.ResponseWriter, r *http.Request) {
	var req SwitchSessionRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validate.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	if err := s.session.Switch(r.Context(), req.ProjectID, req.ChapterID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	state, err := s.session.Snapshot()
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, state, s.logger)
}

// handleSetPace updates the pace multiplier of the open document.
func (s *Server) handleSetPace(w http.ResponseWriter, r *http.Request) {
	var req SetPaceRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validate.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	if err := s.session.SetPace(r.Context(), req.Pace); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// handleSetParams replaces the document-level generation parameters.
func (s *Server) handleSetParams(w http.ResponseWriter, r *http.Request) {
	var req SetParamsRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validate.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	params := domain.GenerationParams{
		Mode:          req.Mode,
		Language:      req.Language,
		Speaker:       req.Speaker,
		Instruct:      req.Instruct,
		VoiceID:       req.VoiceID,
		ClonePromptID: req.ClonePromptID,
	}
	if err := s.session.SetParams(r.Context(), params); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// handleInsertSegment inserts a segment and synthesizes its audio. Responds
// with the index the segment landed at.
func (s *Server) handleInsertSegment(w http.ResponseWriter, r *http.Request) {
	var req InsertSegmentRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validate.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	idx, err := s.session.InsertSegment(r.Context(), req.Index, req.Text, req.Instruct)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, map[string]int{"index": idx}, s.logger)
}

// handleEditSegment updates a segment's text or style directive in place.
func (s *Server) handleEditSegment(w http.ResponseWriter, r *http.Request) {
	index, ok := s.segmentIndex(w, r)
	if !ok {
		return
	}

	var req EditSegmentRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if req.Text == nil && req.Instruct == nil {
		response.BadRequest(w, "Nothing to update", s.logger)
		return
	}

	ctx := r.Context()
	if req.Text != nil {
		if err := s.session.EditSegmentText(ctx, index, *req.Text); err != nil {
			response.HandleError(w, err, s.logger)
			return
		}
	}
	if req.Instruct != nil {
		if err := s.session.EditSegmentInstruct(ctx, index, *req.Instruct); err != nil {
			response.HandleError(w, err, s.logger)
			return
		}
	}

	response.NoContent(w)
}

// handleDeleteSegment removes a segment. The sole remaining segment of a
// document cannot be deleted.
func (s *Server) handleDeleteSegment(w http.ResponseWriter, r *http.Request) {
	index, ok := s.segmentIndex(w, r)
	if !ok {
		return
	}

	if err := s.session.DeleteSegment(r.Context(), index); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// handleRegenerateSegment resynthesizes a segment with new text, capturing
// the prior state for undo.
func (s *Server) handleRegenerateSegment(w http.ResponseWriter, r *http.Request) {
	index, ok := s.segmentIndex(w, r)
	if !ok {
		return
	}

	var req RegenerateSegmentRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validate.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	if err := s.session.RegenerateSegment(r.Context(), index, req.Text, req.Instruct); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// handleUndo restores the last regenerated segment. Responds with the index
// that was restored.
func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	idx, err := s.session.Undo(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]int{"index": idx}, s.logger)
}

// handleGetTrack reconstructs the open document into a single WAV download.
// Fails with 422 while any segment still awaits synthesis.
func (s *Server) handleGetTrack(w http.ResponseWriter, r *http.Request) {
	track, _, err := s.session.Track()
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	wav, err := track.WAV()
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Length", strconv.Itoa(len(wav)))
	w.Header().Set("Content-Disposition", `attachment; filename="`+s.trackFilename(r)+`"`)
	if _, err := w.Write(wav); err != nil {
		s.logger.Error("Failed to write track response", "error", err)
	}
}

// trackFilename derives the download name from the open chapter. Names that
// slug to nothing (for example fully CJK titles) fall back to "track".
func (s *Server) trackFilename(r *http.Request) string {
	name := "track"
	_, chapterID := s.session.CurrentIDs()
	if chapter, err := s.store.GetChapter(r.Context(), chapterID); err == nil {
		if slug := util.Slug(chapter.Name); slug != "" {
			name = slug
		}
	}
	return name + ".wav"
}

// handleGetSubtitles returns the per-segment subtitle windows of the
// reconstructed track.
func (s *Server) handleGetSubtitles(w http.ResponseWriter, r *http.Request) {
	track, subtitles, err := s.session.Track()
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]any{
		"duration":  track.Duration,
		"subtitles": subtitles,
	}, s.logger)
}

// segmentIndex parses the {index} URL parameter. Writes the error response
// itself when the parameter is malformed.
func (s *Server) segmentIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "index")
	index, err := strconv.Atoi(raw)
	if err != nil || index < 0 {
		response.BadRequest(w, "Segment index must be a non-negative integer", s.logger)
		return 0, false
	}
	return index, true
}
