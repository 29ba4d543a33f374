package audio

import (
	"math"
	"time"

	"github.com/vorojar/Qwen3-TTS/internal/domain"
	"github.com/vorojar/Qwen3-TTS/internal/errors"
)

// DefaultBaseGap is the silence inserted between segments at pace 1.0.
const DefaultBaseGap = 300 * time.Millisecond

// Subtitle is the timing span of one segment within the assembled track.
// Start is inclusive, End exclusive, both in seconds from track start.
type Subtitle struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Track is the assembled output: one continuous PCM16LE mono buffer holding
// every segment in order with pace-scaled silence between them.
type Track struct {
	PCM        []byte
	SampleRate int
	Duration   float64
}

// WAV returns the track wrapped in a WAV container.
func (t *Track) WAV() ([]byte, error) {
	return EncodeWAV(t.PCM, t.SampleRate)
}

// Assembler rebuilds the full track and its subtitle spans from a document's
// segments. Reconstruction is derived state: it never mutates segments, and
// the same segments with the same pace always yield identical output.
type Assembler struct {
	decoder *Decoder
	baseGap time.Duration
}

// NewAssembler creates an assembler that decodes clips through the given
// decoder and spaces segments by baseGap scaled with the pace multiplier.
func NewAssembler(decoder *Decoder, baseGap time.Duration) *Assembler {
	if baseGap <= 0 {
		baseGap = DefaultBaseGap
	}
	return &Assembler{decoder: decoder, baseGap: baseGap}
}

// Decoder exposes the assembler's clip decoder so callers can invalidate
// cache entries when segment audio changes.
func (a *Assembler) Decoder() *Decoder {
	return a.decoder
}

// Reconstruct concatenates every segment's audio into one track, separated
// by baseGap * pace of silence. Pace 0 disables gaps entirely. The subtitle
// span of each segment covers exactly its own audio; gaps belong to no span.
//
// Every segment must have audio. A segment still awaiting synthesis fails
// reconstruction with the index of the first incomplete segment.
func (a *Assembler) Reconstruct(segments []domain.Segment, pace float64) (*Track, []Subtitle, error) {
	if len(segments) == 0 {
		return nil, nil, errors.Validation("cannot reconstruct an empty document")
	}
	for i := range segments {
		if !segments[i].HasAudio() {
			return nil, nil, errors.IncompleteSegment(i)
		}
	}
	if pace < 0 {
		return nil, nil, errors.Validationf("pace multiplier %v cannot be negative", pace)
	}

	rate := a.decoder.SampleRate()
	gapSamples := int(math.Round(a.baseGap.Seconds() * pace * float64(rate)))
	gapSeconds := float64(gapSamples) / float64(rate)
	gapBytes := gapSamples * bytesPerSample

	pcms := make([][]byte, len(segments))
	total := 0
	for i := range segments {
		pcm, err := a.decoder.Decode(i, segments[i].Audio)
		if err != nil {
			return nil, nil, errors.Wrapf(err, errors.CodeInternal, "decode segment %d", i)
		}
		pcms[i] = pcm
		total += len(pcm)
	}
	total += gapBytes * (len(segments) - 1)

	track := make([]byte, 0, total)
	subtitles := make([]Subtitle, len(segments))
	cursor := 0.0
	for i, pcm := range pcms {
		if i > 0 {
			track = append(track, make([]byte, gapBytes)...)
			cursor += gapSeconds
		}
		d := Duration(pcm, rate)
		subtitles[i] = Subtitle{Start: cursor, End: cursor + d, Text: segments[i].Text}
		track = append(track, pcm...)
		cursor += d
	}

	return &Track{PCM: track, SampleRate: rate, Duration: cursor}, subtitles, nil
}
