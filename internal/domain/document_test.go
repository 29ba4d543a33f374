package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vorojar/Qwen3-TTS/internal/errors"
)

func testDoc(texts ...string) *Document {
	doc := NewDocument(GenerationParams{Mode: ModePreset, Language: "Chinese"}, 1.0)
	for _, text := range texts {
		doc.Segments = append(doc.Segments, Segment{Text: text, Audio: []byte{1, 2, 3}})
	}
	return doc
}

func TestDocument_InsertAt_Middle(t *testing.T) {
	doc := testDoc("A", "B", "C")

	idx, err := doc.InsertAt(1, "X", "calm")
	require.NoError(t, err)

	assert.Equal(t, 1, idx)
	assert.Equal(t, 4, doc.Len())
	assert.Equal(t, "A", doc.Segments[0].Text)
	assert.Equal(t, "X", doc.Segments[1].Text)
	assert.Equal(t, "calm", doc.Segments[1].Instruct)
	assert.Equal(t, "B", doc.Segments[2].Text)
	assert.Equal(t, "C", doc.Segments[3].Text)
}

func TestDocument_InsertAt_PendingAudio(t *testing.T) {
	doc := testDoc("A")

	idx, err := doc.InsertAt(1, "B", "")
	require.NoError(t, err)

	assert.False(t, doc.Segments[idx].HasAudio())
	assert.Equal(t, idx, doc.FirstIncomplete())
	assert.False(t, doc.Complete())
}

func TestDocument_InsertAt_Bounds(t *testing.T) {
	doc := testDoc("A", "B")

	_, err := doc.InsertAt(-1, "X", "")
	assert.ErrorIs(t, err, errors.ErrValidation)

	_, err = doc.InsertAt(3, "X", "")
	assert.ErrorIs(t, err, errors.ErrValidation)

	// Position == length appends.
	idx, err := doc.InsertAt(2, "X", "")
	require.NoError(t, err)
	assert.Equal(t, 2, idx)
}

func TestDocument_InsertAt_RejectsBlankText(t *testing.T) {
	doc := testDoc("A")

	_, err := doc.InsertAt(0, "   ", "")
	assert.ErrorIs(t, err, errors.ErrValidation)
	assert.Equal(t, 1, doc.Len())
}

func TestDocument_DeleteAt_Works(t *testing.T) {
	doc := testDoc("A", "B", "C")

	require.NoError(t, doc.DeleteAt(1))

	assert.Equal(t, 2, doc.Len())
	assert.Equal(t, "A", doc.Segments[0].Text)
	assert.Equal(t, "C", doc.Segments[1].Text)
}

func TestDocument_DeleteAt_RejectsLastSegment(t *testing.T) {
	doc := testDoc("A")

	err := doc.DeleteAt(0)

	assert.ErrorIs(t, err, errors.ErrInvariant)
	assert.Equal(t, 1, doc.Len())
	assert.Equal(t, "A", doc.Segments[0].Text)
}

func TestDocument_LengthNeverDropsBelowOne(t *testing.T) {
	doc := testDoc("A")

	for i := range 5 {
		_, err := doc.InsertAt(doc.Len(), "extra", "")
		require.NoError(t, err)
		require.Equal(t, i+2, doc.Len())
	}
	for doc.Len() > 1 {
		require.NoError(t, doc.DeleteAt(0))
	}

	assert.ErrorIs(t, doc.DeleteAt(0), errors.ErrInvariant)
	assert.Equal(t, 1, doc.Len())
}

func TestDocument_EditText_Changed(t *testing.T) {
	doc := testDoc("A", "B")

	changed, err := doc.EditText(1, "  B2  ")
	require.NoError(t, err)

	assert.True(t, changed)
	assert.Equal(t, "B2", doc.Segments[1].Text)
}

func TestDocument_EditText_NoOpWhenUnchanged(t *testing.T) {
	doc := testDoc("A", "B")

	changed, err := doc.EditText(1, "B")
	require.NoError(t, err)

	assert.False(t, changed)
}

func TestDocument_EditText_RejectsBlank(t *testing.T) {
	doc := testDoc("A")

	_, err := doc.EditText(0, "  ")

	assert.ErrorIs(t, err, errors.ErrValidation)
	assert.Equal(t, "A", doc.Segments[0].Text)
}

func TestDocument_EditInstruct_EmptyClears(t *testing.T) {
	doc := testDoc("A")
	doc.Segments[0].Instruct = "angry"

	require.NoError(t, doc.EditInstruct(0, ""))

	assert.Empty(t, doc.Segments[0].Instruct)
}

func TestDocument_ReplaceAudioAndText_ReturnsPriorState(t *testing.T) {
	doc := testDoc("A", "B", "C")
	doc.Segments[1].Instruct = "soft"

	prev, err := doc.ReplaceAudioAndText(1, []byte{9, 9}, "B2", "loud")
	require.NoError(t, err)

	assert.Equal(t, "B", prev.Text)
	assert.Equal(t, []byte{1, 2, 3}, prev.Audio)
	assert.Equal(t, "soft", prev.Instruct)
	assert.Equal(t, "B2", doc.Segments[1].Text)
	assert.Equal(t, []byte{9, 9}, doc.Segments[1].Audio)
	assert.Equal(t, "loud", doc.Segments[1].Instruct)
}

func TestDocument_Stats_CountsRunes(t *testing.T) {
	doc := testDoc("你好世界", "ab")

	stats := doc.Stats()

	assert.Equal(t, 6, stats.CharCount)
	assert.Equal(t, 2, stats.SegmentCount)
}

func TestDocument_ApplyCharacterVoices(t *testing.T) {
	narrator := VoiceConfig{Mode: ModePreset, Speaker: "vivian"}
	explicit := VoiceConfig{Mode: ModeClone, VoiceID: "voice-7"}

	doc := testDoc("A", "B", "C")
	doc.Segments[1].Character = "旁白"
	doc.Segments[2].Character = "旁白"
	doc.Segments[2].VoiceOverride = &explicit

	doc.ApplyCharacterVoices(map[string]VoiceConfig{"旁白": narrator})

	assert.Nil(t, doc.Segments[0].VoiceOverride)
	require.NotNil(t, doc.Segments[1].VoiceOverride)
	assert.Equal(t, narrator, *doc.Segments[1].VoiceOverride)
	// Explicit override wins over the map.
	assert.Equal(t, explicit, *doc.Segments[2].VoiceOverride)
}

func TestDocument_Clone_IsDeep(t *testing.T) {
	doc := testDoc("A")
	doc.Segments[0].VoiceOverride = &VoiceConfig{Mode: ModePreset, Speaker: "vivian"}

	clone := doc.Clone()
	clone.Segments[0].Text = "mutated"
	clone.Segments[0].Audio[0] = 99
	clone.Segments[0].VoiceOverride.Speaker = "other"

	assert.Equal(t, "A", doc.Segments[0].Text)
	assert.Equal(t, byte(1), doc.Segments[0].Audio[0])
	assert.Equal(t, "vivian", doc.Segments[0].VoiceOverride.Speaker)
}

func TestSegment_EffectiveVoice(t *testing.T) {
	params := GenerationParams{Mode: ModePreset, Speaker: "vivian"}

	seg := Segment{Text: "A"}
	assert.Equal(t, VoiceConfig{Mode: ModePreset, Speaker: "vivian"}, seg.EffectiveVoice(params))

	seg.VoiceOverride = &VoiceConfig{Mode: ModeClone, VoiceID: "voice-1"}
	assert.Equal(t, *seg.VoiceOverride, seg.EffectiveVoice(params))
}
