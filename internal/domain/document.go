package domain

import (
	"strings"
	"unicode/utf8"

	"github.com/vorojar/Qwen3-TTS/internal/errors"
)

// Document is the in-memory editing model: an ordered list of segments plus
// the document-level generation parameters and pace multiplier.
//
// A document with segments never drops below one segment; DeleteAt rejects
// the removal that would empty it. A freshly created chapter starts with an
// empty document until the first synthesis populates it.
type Document struct {
	Segments       []Segment        `json:"segments"`
	Params         GenerationParams `json:"params"`
	PaceMultiplier float64          `json:"pace_multiplier"`
}

// Stats are derived text statistics, recomputed from the current segments.
type Stats struct {
	CharCount    int `json:"char_count"`
	SegmentCount int `json:"segment_count"`
}

// NewDocument creates a document with the given parameters and no segments.
func NewDocument(params GenerationParams, pace float64) *Document {
	return &Document{
		Segments:       []Segment{},
		Params:         params,
		PaceMultiplier: pace,
	}
}

// Len returns the number of segments.
func (d *Document) Len() int {
	return len(d.Segments)
}

// Empty reports whether the document has no segments yet.
func (d *Document) Empty() bool {
	return len(d.Segments) == 0
}

// InsertAt inserts a new segment at the given position with audio pending.
// Position may range from 0 (before the first segment) to Len() (after the
// last). Returns the index of the new segment.
//
// The caller is responsible for resolving the segment's audio via synthesis
// and for removing the placeholder again if synthesis fails.
func (d *Document) InsertAt(index int, text, instruct string) (int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, errors.Validation("segment text cannot be empty")
	}
	if index < 0 || index > len(d.Segments) {
		return 0, errors.Validationf("insert position %d out of range [0,%d]", index, len(d.Segments))
	}

	seg := Segment{Text: text, Instruct: instruct}
	d.Segments = append(d.Segments, Segment{})
	copy(d.Segments[index+1:], d.Segments[index:])
	d.Segments[index] = seg

	return index, nil
}

// DeleteAt removes the segment at index. Removing the sole remaining segment
// is rejected with an invariant violation and leaves the document unchanged.
func (d *Document) DeleteAt(index int) error {
	if err := d.checkIndex(index); err != nil {
		return err
	}
	if len(d.Segments) <= 1 {
		return errors.Invariant("cannot delete the last segment of a document")
	}

	d.Segments = append(d.Segments[:index], d.Segments[index+1:]...)
	return nil
}

// EditText replaces the text of the segment at index. The new text must be
// non-empty after trimming. Returns true when the text actually changed, so
// callers know whether to persist.
func (d *Document) EditText(index int, newText string) (bool, error) {
	if err := d.checkIndex(index); err != nil {
		return false, err
	}
	newText = strings.TrimSpace(newText)
	if newText == "" {
		return false, errors.Validation("segment text cannot be empty")
	}
	if newText == d.Segments[index].Text {
		return false, nil
	}

	d.Segments[index].Text = newText
	return true, nil
}

// EditInstruct replaces the emotion/style directive of the segment at index.
// An empty string clears it.
func (d *Document) EditInstruct(index int, newInstruct string) error {
	if err := d.checkIndex(index); err != nil {
		return err
	}
	d.Segments[index].Instruct = strings.TrimSpace(newInstruct)
	return nil
}

// Replaced holds the prior state of a segment overwritten by
// ReplaceAudioAndText, for undo capture.
type Replaced struct {
	Text     string
	Audio    []byte
	Instruct string
}

// ReplaceAudioAndText overwrites the segment at index with newly synthesized
// audio, returning the previous text, audio and instruct. Callers must hand
// the returned state to the undo manager before discarding it.
func (d *Document) ReplaceAudioAndText(index int, audio []byte, text, instruct string) (Replaced, error) {
	if err := d.checkIndex(index); err != nil {
		return Replaced{}, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Replaced{}, errors.Validation("segment text cannot be empty")
	}

	seg := &d.Segments[index]
	prev := Replaced{
		Text:     seg.Text,
		Audio:    seg.Audio,
		Instruct: seg.Instruct,
	}

	seg.Text = text
	seg.Audio = audio
	seg.Instruct = instruct

	return prev, nil
}

// Stats derives character and segment counts from the current segments.
// Characters are counted as runes of the joined text, matching what the
// editor displays.
func (d *Document) Stats() Stats {
	chars := 0
	for i := range d.Segments {
		chars += utf8.RuneCountInString(d.Segments[i].Text)
	}
	return Stats{
		CharCount:    chars,
		SegmentCount: len(d.Segments),
	}
}

// JoinedText returns the full document text in segment order.
func (d *Document) JoinedText() string {
	var b strings.Builder
	for i := range d.Segments {
		b.WriteString(d.Segments[i].Text)
	}
	return b.String()
}

// FirstIncomplete returns the index of the first segment without audio, or
// -1 when every segment has been synthesized.
func (d *Document) FirstIncomplete() int {
	for i := range d.Segments {
		if !d.Segments[i].HasAudio() {
			return i
		}
	}
	return -1
}

// Complete reports whether the document is reconstructable: it has at least
// one segment and none of them await synthesis.
func (d *Document) Complete() bool {
	return len(d.Segments) > 0 && d.FirstIncomplete() == -1
}

// ApplyCharacterVoices assigns voice overrides from a project's
// character-voice map to segments that carry a character tag but no explicit
// override. Existing overrides are never replaced.
func (d *Document) ApplyCharacterVoices(voices map[string]VoiceConfig) {
	if len(voices) == 0 {
		return
	}
	for i := range d.Segments {
		seg := &d.Segments[i]
		if seg.Character == "" || seg.VoiceOverride != nil {
			continue
		}
		if v, ok := voices[seg.Character]; ok {
			voice := v
			seg.VoiceOverride = &voice
		}
	}
}

// Clone returns a deep copy of the document, safe to persist while the
// original keeps being edited.
func (d *Document) Clone() *Document {
	segments := make([]Segment, len(d.Segments))
	copy(segments, d.Segments)
	for i := range segments {
		if segments[i].Audio != nil {
			audio := make([]byte, len(segments[i].Audio))
			copy(audio, segments[i].Audio)
			segments[i].Audio = audio
		}
		if segments[i].VoiceOverride != nil {
			voice := *segments[i].VoiceOverride
			segments[i].VoiceOverride = &voice
		}
	}
	return &Document{
		Segments:       segments,
		Params:         d.Params,
		PaceMultiplier: d.PaceMultiplier,
	}
}

func (d *Document) checkIndex(index int) error {
	if index < 0 || index >= len(d.Segments) {
		return errors.Validationf("segment index %d out of range [0,%d)", index, len(d.Segments))
	}
	return nil
}
