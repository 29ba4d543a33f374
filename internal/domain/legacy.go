package domain

// LegacySession is the old flat single-document persisted schema, kept only
// as the read-only source of the one-time migration into projects and
// chapters. It mirrors the original parallel-array layout: audios, texts and
// instructs are index-aligned.
type LegacySession struct {
	SentenceAudios    [][]byte               `json:"sentence_audios"`
	SentenceTexts     []string               `json:"sentence_texts"`
	SentenceInstructs []string               `json:"sentence_instructs,omitempty"`
	Params            GenerationParams       `json:"last_generate_params"`
	ClonePromptID     string                 `json:"clone_prompt_id,omitempty"`
	PaceMultiplier    float64                `json:"pause_pace_multiplier"`
	InputText         string                 `json:"input_text,omitempty"`
	CharacterVoices   map[string]VoiceConfig `json:"character_voices,omitempty"`
	Timestamp         int64                  `json:"timestamp"`
}

// Empty reports whether the legacy session holds nothing worth migrating.
func (s *LegacySession) Empty() bool {
	return s == nil || len(s.SentenceAudios) == 0
}

// Segments converts the parallel arrays into ordered segments. Instructs
// missing from old records fall back to the document-level instruct, the
// same way the original editor rehydrated them.
func (s *LegacySession) Segments() []Segment {
	segments := make([]Segment, len(s.SentenceAudios))
	for i := range s.SentenceAudios {
		seg := Segment{Audio: s.SentenceAudios[i]}
		if i < len(s.SentenceTexts) {
			seg.Text = s.SentenceTexts[i]
		}
		if i < len(s.SentenceInstructs) {
			seg.Instruct = s.SentenceInstructs[i]
		} else {
			seg.Instruct = s.Params.Instruct
		}
		segments[i] = seg
	}
	return segments
}
