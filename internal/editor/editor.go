package editor

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/vorojar/Qwen3-TTS/internal/audio"
	"github.com/vorojar/Qwen3-TTS/internal/domain"
	"github.com/vorojar/Qwen3-TTS/internal/errors"
	"github.com/vorojar/Qwen3-TTS/internal/synth"
)

// ErrSuperseded marks a synthesis result that arrived after the document
// moved on (chapter switched, segment deleted). The result is discarded and
// the caller should not retry.
var ErrSuperseded = errors.Conflict("operation superseded by a newer edit")

// Editor owns one loaded document and serializes all mutations on it.
//
// Operations that call the synthesizer release the lock for the duration of
// the upstream call and revalidate with an epoch token before applying the
// result. The epoch bumps on every structural change and on every document
// load, so a slow synthesis that straddles either is dropped instead of
// writing into the wrong segment.
type Editor struct {
	mu        sync.Mutex
	doc       *domain.Document
	undo      UndoManager
	assembler *audio.Assembler
	decoder   *audio.Decoder
	synth     synth.Synthesizer
	logger    *slog.Logger
	epoch     uint64
}

// New creates an editor with no document loaded.
func New(synthesizer synth.Synthesizer, assembler *audio.Assembler, logger *slog.Logger) *Editor {
	return &Editor{
		assembler: assembler,
		decoder:   assembler.Decoder(),
		synth:     synthesizer,
		logger:    logger,
	}
}

// Load replaces the edited document. Undo state and the decode cache belong
// to the outgoing document and are dropped with it.
func (e *Editor) Load(doc *domain.Document) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.doc = doc
	e.undo.Clear()
	e.decoder.Reset()
	e.epoch++
}

// Loaded reports whether a document is currently loaded.
func (e *Editor) Loaded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc != nil
}

// Document returns a deep copy of the current document for persistence, or
// nil when nothing is loaded.
func (e *Editor) Document() *domain.Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.doc == nil {
		return nil
	}
	return e.doc.Clone()
}

// Stats returns the loaded document's derived statistics.
func (e *Editor) Stats() domain.Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.doc == nil {
		return domain.Stats{}
	}
	return e.doc.Stats()
}

// SetPace updates the pace multiplier used for reconstruction gaps.
func (e *Editor) SetPace(pace float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireDoc(); err != nil {
		return err
	}
	if pace < 0 {
		return errors.Validationf("pace multiplier %v cannot be negative", pace)
	}
	e.doc.PaceMultiplier = pace
	return nil
}

// SetParams replaces the document-level generation parameters. Segments keep
// their existing audio; the new params apply to subsequent synthesis.
func (e *Editor) SetParams(params domain.GenerationParams) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireDoc(); err != nil {
		return err
	}
	e.doc.Params = params
	return nil
}

// Insert creates a segment at the given position, synthesizes its audio and
// returns its index. The segment exists as an audio-pending placeholder for
// the duration of the upstream call; synthesis failure removes it again and
// reports a SYNTHESIS error. A result that arrives after a structural change
// is discarded with ErrSuperseded.
func (e *Editor) Insert(ctx context.Context, index int, text, instruct string) (int, error) {
	e.mu.Lock()
	if err := e.requireDoc(); err != nil {
		e.mu.Unlock()
		return 0, err
	}

	idx, err := e.doc.InsertAt(index, text, instruct)
	if err != nil {
		e.mu.Unlock()
		return 0, err
	}
	e.decoder.Reset()
	e.epoch++
	token := e.epoch
	docRef := e.doc
	seg := e.doc.Segments[idx]
	params := e.synthParams(&seg)
	e.mu.Unlock()

	result, synthErr := e.synth.Synthesize(ctx, seg.Text, params)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.epoch != token {
		e.logger.Debug("discarding stale synthesis result", "index", idx)
		e.dropPendingLocked(docRef, seg.Text, seg.Instruct)
		return 0, ErrSuperseded
	}
	if synthErr != nil {
		// Roll the placeholder back so the document never keeps a
		// segment nobody asked to stay.
		if delErr := e.doc.DeleteAt(idx); delErr != nil && !errors.Is(delErr, errors.ErrInvariant) {
			e.logger.Error("placeholder rollback failed", "index", idx, "error", delErr)
		}
		e.decoder.Reset()
		e.epoch++
		return 0, errors.Wrapf(synthErr, errors.CodeSynthesis, "synthesize inserted segment")
	}

	e.doc.Segments[idx].Audio = result.Audio
	return idx, nil
}

// Regenerate resynthesizes the segment at index with new text and instruct,
// capturing the prior state for undo. Failure leaves the segment and the
// undo slot exactly as they were.
func (e *Editor) Regenerate(ctx context.Context, index int, text, instruct string) error {
	e.mu.Lock()
	if err := e.requireDoc(); err != nil {
		e.mu.Unlock()
		return err
	}
	if index < 0 || index >= e.doc.Len() {
		e.mu.Unlock()
		return errors.Validationf("segment index %d out of range [0,%d)", index, e.doc.Len())
	}
	text = strings.TrimSpace(text)
	if text == "" {
		e.mu.Unlock()
		return errors.Validation("segment text cannot be empty")
	}

	token := e.epoch
	seg := e.doc.Segments[index]
	seg.Text = text
	seg.Instruct = instruct
	params := e.synthParams(&seg)
	e.mu.Unlock()

	result, synthErr := e.synth.Synthesize(ctx, text, params)

	e.mu.Lock()
	defer e.mu.Unlock()

	if synthErr != nil {
		return errors.Wrapf(synthErr, errors.CodeSynthesis, "regenerate segment %d", index)
	}
	if e.epoch != token {
		e.logger.Debug("discarding stale synthesis result", "index", index)
		return ErrSuperseded
	}

	prev, err := e.doc.ReplaceAudioAndText(index, result.Audio, text, instruct)
	if err != nil {
		return err
	}
	e.undo.Capture(Entry{
		Index:    index,
		Text:     prev.Text,
		Audio:    prev.Audio,
		Instruct: prev.Instruct,
	})
	e.decoder.Invalidate(index)
	return nil
}

// Delete removes the segment at index. The sole remaining segment cannot be
// deleted. The undo slot is left alone; its positional index is
// bounds-checked when undo fires.
func (e *Editor) Delete(index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireDoc(); err != nil {
		return err
	}
	if err := e.doc.DeleteAt(index); err != nil {
		return err
	}
	e.decoder.Reset()
	e.epoch++
	return nil
}

// EditText updates a segment's text without resynthesizing. Returns whether
// the text actually changed.
func (e *Editor) EditText(index int, text string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireDoc(); err != nil {
		return false, err
	}
	return e.doc.EditText(index, text)
}

// EditInstruct updates a segment's style directive.
func (e *Editor) EditInstruct(index int, instruct string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireDoc(); err != nil {
		return err
	}
	return e.doc.EditInstruct(index, instruct)
}

// Undo restores the captured pre-regenerate state and clears the slot.
// Returns the restored index. With nothing captured, or a captured index no
// longer inside the document, there is nothing to restore.
func (e *Editor) Undo() (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireDoc(); err != nil {
		return 0, err
	}

	entry, ok := e.undo.Undo()
	if !ok {
		return 0, errors.NotFound("nothing to undo")
	}
	if entry.Index < 0 || entry.Index >= e.doc.Len() {
		return 0, errors.NotFoundf("undo target %d no longer exists", entry.Index)
	}

	seg := &e.doc.Segments[entry.Index]
	seg.Text = entry.Text
	seg.Audio = entry.Audio
	seg.Instruct = entry.Instruct
	e.decoder.Invalidate(entry.Index)
	return entry.Index, nil
}

// CanUndo reports whether an undo entry is available.
func (e *Editor) CanUndo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.undo.CanUndo()
}

// Reconstruct assembles the full track and subtitles from the loaded
// document at its current pace multiplier.
func (e *Editor) Reconstruct() (*audio.Track, []audio.Subtitle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireDoc(); err != nil {
		return nil, nil, err
	}
	return e.assembler.Reconstruct(e.doc.Segments, e.doc.PaceMultiplier)
}

// dropPendingLocked removes the audio-pending placeholder a superseded
// insert left behind. The structural change that superseded it may have
// shifted indices, so the placeholder is matched by its pending content
// rather than position. A Load swapped the whole document out; then the
// placeholder went with it and there is nothing to clean up.
func (e *Editor) dropPendingLocked(docRef *domain.Document, text, instruct string) {
	if e.doc != docRef {
		return
	}
	for i := range e.doc.Segments {
		seg := &e.doc.Segments[i]
		if seg.HasAudio() || seg.Text != text || seg.Instruct != instruct {
			continue
		}
		if err := e.doc.DeleteAt(i); err != nil && !errors.Is(err, errors.ErrInvariant) {
			e.logger.Error("placeholder rollback failed", "index", i, "error", err)
		}
		e.decoder.Reset()
		e.epoch++
		return
	}
}

func (e *Editor) requireDoc() error {
	if e.doc == nil {
		return errors.Conflict("no document loaded")
	}
	return nil
}

// synthParams resolves the voice the segment should be synthesized with.
func (e *Editor) synthParams(seg *domain.Segment) synth.Params {
	return synth.Params{
		Language: e.doc.Params.Language,
		Instruct: seg.Instruct,
		Voice:    seg.EffectiveVoice(e.doc.Params),
	}
}
