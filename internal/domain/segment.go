// Package domain contains the core types of the segmented TTS editor:
// documents made of synthesized segments, and the project/chapter hierarchy
// they are persisted into.
package domain

// GenerationMode selects how segment audio is synthesized.
type GenerationMode string

// Generation modes. Instruct directives are only meaningful in preset mode.
const (
	ModePreset GenerationMode = "preset"
	ModeClone  GenerationMode = "clone"
	ModeDesign GenerationMode = "design"
)

// VoiceConfig identifies a voice for synthesis. Exactly one of Speaker,
// VoiceID or ClonePromptID is set depending on the mode.
type VoiceConfig struct {
	Mode          GenerationMode `json:"mode"`
	Speaker       string         `json:"speaker,omitempty"`
	VoiceID       string         `json:"voice_id,omitempty"`
	ClonePromptID string         `json:"clone_prompt_id,omitempty"`
}

// GenerationParams are the document-level synthesis parameters. A segment
// without a voice override inherits these.
type GenerationParams struct {
	Mode          GenerationMode `json:"mode"`
	Language      string         `json:"language"`
	Speaker       string         `json:"speaker,omitempty"`
	Instruct      string         `json:"instruct,omitempty"`
	VoiceID       string         `json:"voice_id,omitempty"`
	ClonePromptID string         `json:"clone_prompt_id,omitempty"`
}

// Voice returns the voice portion of the params as a VoiceConfig.
func (p GenerationParams) Voice() VoiceConfig {
	return VoiceConfig{
		Mode:          p.Mode,
		Speaker:       p.Speaker,
		VoiceID:       p.VoiceID,
		ClonePromptID: p.ClonePromptID,
	}
}

// Segment is one sentence-sized unit of a document.
//
// Audio holds the encoded clip (gzip-compressed PCM; base64 in JSON). It is
// nil only while the segment awaits synthesis; a document with a nil-audio
// segment cannot be reconstructed into a track yet.
type Segment struct {
	Text             string       `json:"text"`
	Audio            []byte       `json:"audio,omitempty"`
	Instruct         string       `json:"instruct,omitempty"`
	VoiceOverride    *VoiceConfig `json:"voice_override,omitempty"`
	Character        string       `json:"character,omitempty"`
	IsParagraphStart bool         `json:"is_paragraph_start,omitempty"`
}

// HasAudio reports whether the segment's synthesis has completed.
func (s *Segment) HasAudio() bool {
	return len(s.Audio) > 0
}

// EffectiveVoice returns the voice the segment should be synthesized with:
// its own override when set, otherwise the document-level voice.
func (s *Segment) EffectiveVoice(docParams GenerationParams) VoiceConfig {
	if s.VoiceOverride != nil {
		return *s.VoiceOverride
	}
	return docParams.Voice()
}
